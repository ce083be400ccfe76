package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type Dashboard struct {
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	Port          string
	PostLoginPath string
	PublicDir     string
}

func (d *Dashboard) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "client-id",
			Usage:       "Discord OAuth2 client ID",
			Category:    "Discord OAuth2",
			Sources:     cli.EnvVars("DISCORD_CLIENT_ID"),
			Destination: &d.ClientID,
		},
		&cli.StringFlag{
			Name:        "client-secret",
			Usage:       "Discord OAuth2 client secret",
			Category:    "Discord OAuth2",
			Sources:     cli.EnvVars("DISCORD_CLIENT_SECRET"),
			Destination: &d.ClientSecret,
		},
		&cli.StringFlag{
			Name:        "redirect-uri",
			Usage:       "OAuth2 redirect URI, must match the Discord Developer Portal",
			Category:    "Discord OAuth2",
			Sources:     cli.EnvVars("DASHBOARD_REDIRECT_URI"),
			Destination: &d.RedirectURI,
		},
		&cli.StringFlag{
			Name:        "port",
			Usage:       "Dashboard listen port",
			Category:    "Dashboard",
			Value:       "3000",
			Sources:     cli.EnvVars("PORT"),
			Destination: &d.Port,
		},
		&cli.StringFlag{
			Name:        "post-login-path",
			Usage:       "Page the browser is sent to after a successful login",
			Category:    "Dashboard",
			Value:       "/dashboard.html",
			Sources:     cli.EnvVars("DASHBOARD_POST_LOGIN_PATH"),
			Destination: &d.PostLoginPath,
		},
		&cli.StringFlag{
			Name:        "public-dir",
			Usage:       "Directory holding the static pages and views",
			Category:    "Dashboard",
			Value:       "./public",
			Sources:     cli.EnvVars("DASHBOARD_PUBLIC_DIR"),
			Destination: &d.PublicDir,
		},
	}
}

func (d *Dashboard) Validate() error {
	if d.ClientID == "" {
		return goerr.New("DISCORD_CLIENT_ID is required")
	}
	if d.ClientSecret == "" {
		return goerr.New("DISCORD_CLIENT_SECRET is required")
	}
	if d.RedirectURI == "" {
		return goerr.New("DASHBOARD_REDIRECT_URI is required")
	}
	return nil
}

// LogValue keeps the client secret out of logs.
func (d Dashboard) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", d.ClientID),
		slog.String("redirect_uri", d.RedirectURI),
		slog.String("port", d.Port),
		slog.String("post_login_path", d.PostLoginPath),
	)
}
