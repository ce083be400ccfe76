package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayEmoji(t *testing.T) {
	assert.Equal(t, "✅", displayEmoji("✅"))
	assert.Equal(t, "<:verify:9001>", displayEmoji("verify:9001"))
	assert.Equal(t, "<a:wave:9002>", displayEmoji("a:wave:9002"))
	assert.Equal(t, "<:a:9003>", displayEmoji("a:9003"))
}

func TestVerificationEmbed_RendersCustomEmoji(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	embed := verificationEmbed("verify:9001", "ReactVerify", now)

	assert.Contains(t, embed.Description, "<:verify:9001>")
	assert.Contains(t, embed.Fields[0].Value, "<:verify:9001>")
	assert.NotContains(t, embed.Description, " verify:9001")
	assert.Equal(t, "Powered by ReactVerify", embed.Footer.Text)
	assert.Equal(t, "2024-01-02T03:04:05Z", embed.Timestamp)
}
