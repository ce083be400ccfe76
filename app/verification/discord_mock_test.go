package verification

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockDiscord is a mock implementation of the Discord interface
type MockDiscord struct {
	mock.Mock
}

func (m *MockDiscord) ChannelMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	args := m.Called(ctx, channelID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *MockDiscord) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	args := m.Called(ctx, channelID, embed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *MockDiscord) EditEmbed(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed) error {
	args := m.Called(ctx, channelID, messageID, embed)
	return args.Error(0)
}

func (m *MockDiscord) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Channel), args.Error(1)
}

func (m *MockDiscord) User(ctx context.Context, userID string) (*discordgo.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.User), args.Error(1)
}

func (m *MockDiscord) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Member), args.Error(1)
}

func (m *MockDiscord) GuildRole(ctx context.Context, guildID, roleID string) (*discordgo.Role, error) {
	args := m.Called(ctx, guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Role), args.Error(1)
}

func (m *MockDiscord) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockDiscord) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	args := m.Called(ctx, channelID, messageID, emoji, userID)
	return args.Error(0)
}
