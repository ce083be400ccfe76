package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imAETHER/ReactVerify/app/oauth"
)

const testAuthorizeURL = "https://discord.com/oauth2/authorize?client_id=test-client-id&redirect_uri=https%3A%2F%2Fexample.com%2Fauth%2Fdiscord%2Fcallback&response_type=code&scope=identify%20guilds"

type fakeExchanger struct {
	token *oauth.Token
	err   error
	codes []string
}

func (f *fakeExchanger) AuthorizeURL() string {
	return testAuthorizeURL
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) (*oauth.Token, error) {
	f.codes = append(f.codes, code)
	return f.token, f.err
}

func newTestWebApp(exchanger TokenExchanger) *fiber.App {
	app := fiber.New()
	NewWebController(exchanger, "/dashboard.html").Register(app)
	return app
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHandleDiscordLogin_RedirectsToAuthorize(t *testing.T) {
	app := newTestWebApp(&fakeExchanger{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/discord", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, testAuthorizeURL, resp.Header.Get("Location"))
}

func TestHandleDiscordCallback_MissingCode(t *testing.T) {
	exchanger := &fakeExchanger{}
	app := newTestWebApp(exchanger)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/discord/callback", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Authorization failed: No code received.", readBody(t, resp))
	assert.Empty(t, exchanger.codes)
}

func TestHandleDiscordCallback_ProviderRejects(t *testing.T) {
	app := newTestWebApp(&fakeExchanger{
		err: &oauth.TokenError{StatusCode: http.StatusUnauthorized, Body: `{"error": "invalid_client"}`},
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=abc", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "invalid_client")
}

func TestHandleDiscordCallback_UnexpectedFailure(t *testing.T) {
	app := newTestWebApp(&fakeExchanger{err: errors.New("dial tcp: connection refused")})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=abc", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "An internal server error occurred during authentication.", readBody(t, resp))
}

func TestHandleDiscordCallback_Success(t *testing.T) {
	exchanger := &fakeExchanger{token: &oauth.Token{AccessToken: "tok", Scope: "identify guilds"}}
	app := newTestWebApp(exchanger)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=abc", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard.html", resp.Header.Get("Location"))
	assert.Equal(t, []string{"abc"}, exchanger.codes)
}

func TestDashboardApp_ServesIndexAndStaticPages(t *testing.T) {
	publicDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(publicDir, "views"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "views", "index.html"), []byte(`<a href="{{.LoginURL}}">Login</a>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "dashboard.html"), []byte("dashboard"), 0o644))

	app := NewDashboardApp(NewWebController(&fakeExchanger{}, "/dashboard.html"), publicDir)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `href="/auth/discord"`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/dashboard.html", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dashboard", readBody(t, resp))
}

func TestLivenessApp(t *testing.T) {
	app := NewLivenessApp()

	for _, path := range []string{"/", "/healthz", "/anything/else"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Bot is alive!", readBody(t, resp))
	}
}
