package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/imAETHER/ReactVerify/app/config"
	"github.com/imAETHER/ReactVerify/app/controllers"
	"github.com/imAETHER/ReactVerify/app/oauth"
	"github.com/imAETHER/ReactVerify/app/verification"
)

// Run parses args and starts either the bot or the dashboard.
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger

	cmd := &cli.Command{
		Name:  "reactverify",
		Usage: "Reaction based Discord verification bot and login dashboard",
		Flags: loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			slog.SetDefault(logger)
			return ctxlog.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			cmdBot(),
			cmdDashboard(),
		},
	}

	// Flags read the environment, so .env has to be loaded before parsing.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		color.Yellow("[!] Failed to load .env file: %v", err)
	}

	if err := cmd.Run(ctx, args); err != nil {
		return goerr.Wrap(err, "reactverify failed")
	}
	return nil
}

func cmdBot() *cli.Command {
	var (
		botCfg    config.Bot
		verifyCfg config.Verification
		storeCfg  config.Store
	)

	var flags []cli.Flag
	flags = append(flags, botCfg.Flags()...)
	flags = append(flags, verifyCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)

	return &cli.Command{
		Name:  "bot",
		Usage: "Run the verification bot",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			color.Cyan("[i] Setting up bot..")

			if err := botCfg.Validate(); err != nil {
				return err
			}
			panels, err := verifyCfg.Panels()
			if err != nil {
				return err
			}

			store, err := storeCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			logger.Info("Starting bot", slog.Any("bot", botCfg), slog.Any("store", storeCfg), slog.Int("panels", len(panels)))

			session, err := controllers.NewDiscordSession(botCfg.Token)
			if err != nil {
				return err
			}

			discord := verification.NewSession(session)
			verifiers := make([]*verification.Verifier, 0, len(panels))
			for _, p := range panels {
				verifiers = append(verifiers, verification.New(discord, store, p))
			}
			controllers.NewDiscordController(logger, verifiers, botCfg.EventTimeout).Register(session)

			if err := session.Open(); err != nil {
				return goerr.Wrap(err, "couldn't create websocket to Discord")
			}
			defer session.Close()

			liveness := controllers.NewLivenessApp()
			go func() {
				color.Cyan("[i] Liveness probe listening on port %s", botCfg.LivenessPort)
				if err := liveness.Listen(":" + botCfg.LivenessPort); err != nil {
					logger.Error("Liveness listener stopped", slog.Any("err", err))
				}
			}()

			waitForSignal(ctx)
			logger.Info("Shutting down bot")
			return liveness.Shutdown()
		},
	}
}

func cmdDashboard() *cli.Command {
	var dashboardCfg config.Dashboard

	return &cli.Command{
		Name:  "dashboard",
		Usage: "Run the OAuth2 login dashboard",
		Flags: dashboardCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			color.Cyan("[i] Setting up dashboard..")

			if err := dashboardCfg.Validate(); err != nil {
				return err
			}
			logger.Info("Starting dashboard", slog.Any("dashboard", dashboardCfg))

			client := oauth.NewClient(dashboardCfg.ClientID, dashboardCfg.ClientSecret, dashboardCfg.RedirectURI)
			web := controllers.NewDashboardApp(
				controllers.NewWebController(client, dashboardCfg.PostLoginPath),
				dashboardCfg.PublicDir,
			)

			errCh := make(chan error, 1)
			go func() {
				color.Cyan("[i] Starting WebServer on port %s", dashboardCfg.Port)
				color.Cyan("[i] Make sure your Discord Redirect URI is set to: %s", dashboardCfg.RedirectURI)
				errCh <- web.Listen("0.0.0.0:" + dashboardCfg.Port)
			}()

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				return goerr.Wrap(err, "dashboard listener stopped")
			case <-sigCtx.Done():
				logger.Info("Shutting down dashboard")
				return web.Shutdown()
			}
		},
	}
}

func waitForSignal(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}
