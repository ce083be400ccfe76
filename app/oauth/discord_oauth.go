// Package oauth wraps the Discord OAuth2 authorization code flow.
package oauth

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
)

const (
	DiscordAuthorizeURL = "https://discord.com/oauth2/authorize"
	DiscordTokenURL     = "https://discord.com/api/v10/oauth2/token"
)

// Scopes requested at login.
var Scopes = []string{"identify", "guilds"}

// TokenError is returned when the provider answers the exchange with a
// non-success status.
type TokenError struct {
	StatusCode int
	Body       string
}

func (e *TokenError) Error() string {
	return "token exchange rejected: " + e.Body
}

type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
}

type Client struct {
	config *oauth2.Config
}

func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return NewClientWithEndpoint(clientID, clientSecret, redirectURI, oauth2.Endpoint{
		AuthURL:   DiscordAuthorizeURL,
		TokenURL:  DiscordTokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	})
}

func NewClientWithEndpoint(clientID, clientSecret, redirectURI string, endpoint oauth2.Endpoint) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
	}
}

// AuthorizeURL is where /auth/discord sends the browser. Scopes are joined
// with %20 the way Discord documents them.
func (c *Client) AuthorizeURL() string {
	return strings.ReplaceAll(c.config.AuthCodeURL(""), "+", "%20")
}

func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			return nil, &TokenError{StatusCode: rErr.Response.StatusCode, Body: string(rErr.Body)}
		}
		return nil, goerr.Wrap(err, "failed to exchange authorization code")
	}

	scope, _ := tok.Extra("scope").(string)
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Scope:        scope,
	}, nil
}
