package controllers

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html"

	"github.com/imAETHER/ReactVerify/app/oauth"
)

const oauthTimeout = 10 * time.Second

// TokenExchanger is the OAuth2 side of the dashboard.
type TokenExchanger interface {
	AuthorizeURL() string
	Exchange(ctx context.Context, code string) (*oauth.Token, error)
}

// WebController serves the dashboard login flow. It keeps no per-user state:
// every callback stands on its own.
type WebController struct {
	oauth         TokenExchanger
	postLoginPath string
}

func NewWebController(exchanger TokenExchanger, postLoginPath string) *WebController {
	return &WebController{
		oauth:         exchanger,
		postLoginPath: postLoginPath,
	}
}

func (w *WebController) Register(app *fiber.App) {
	app.Get("/", w.HandleIndex)
	app.Get("/auth/discord", w.HandleDiscordLogin)
	app.Get("/auth/discord/callback", w.HandleDiscordCallback)
}

func (w *WebController) HandleIndex(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).Render("index", fiber.Map{
		"LoginURL": "/auth/discord",
	})
}

func (w *WebController) HandleDiscordLogin(ctx *fiber.Ctx) error {
	return ctx.Redirect(w.oauth.AuthorizeURL(), fiber.StatusFound)
}

func (w *WebController) HandleDiscordCallback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		slog.Warn("No code provided in Discord OAuth callback")
		return ctx.Status(fiber.StatusBadRequest).SendString("Authorization failed: No code received.")
	}

	exchangeCtx, cancel := context.WithTimeout(ctx.UserContext(), oauthTimeout)
	defer cancel()

	token, err := w.oauth.Exchange(exchangeCtx, code)
	var tokenErr *oauth.TokenError
	if errors.As(err, &tokenErr) {
		slog.Error("Error exchanging code for token", slog.Int("status", tokenErr.StatusCode), slog.String("body", tokenErr.Body))
		return ctx.Status(tokenErr.StatusCode).SendString("Failed to get access token: " + tokenErr.Body)
	}
	if err != nil {
		slog.Error("Error during Discord OAuth2 callback", slog.Any("err", err))
		return ctx.Status(fiber.StatusInternalServerError).SendString("An internal server error occurred during authentication.")
	}

	slog.Info("Successfully obtained access token for user", slog.String("scope", token.Scope))
	return ctx.Redirect(w.postLoginPath, fiber.StatusFound)
}

// NewDashboardApp wires the dashboard routes, the landing view and the static
// pages under publicDir.
func NewDashboardApp(controller *WebController, publicDir string) *fiber.App {
	engine := html.New(filepath.Join(publicDir, "views"), ".html")
	engine.Delims("{{", "}}")

	app := fiber.New(fiber.Config{
		Views:                 engine,
		AppName:               "ReactVerify Dashboard",
		DisableStartupMessage: true,
	})

	controller.Register(app)

	// Static pages last so they never shadow the auth routes.
	app.Static("/", publicDir)

	return app
}

// NewLivenessApp answers every request with 200, nothing else.
func NewLivenessApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ReactVerify Bot",
		DisableStartupMessage: true,
	})

	app.Use(func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).SendString("Bot is alive!")
	})

	return app
}
