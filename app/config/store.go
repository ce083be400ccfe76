package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/imAETHER/ReactVerify/app/database"
)

type Store struct {
	Driver      string
	DatabaseURL string
	BoltPath    string
}

func (s *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Storage driver (memory, bolt, postgres), picked from the other store flags when empty",
			Category:    "Storage",
			Sources:     cli.EnvVars("STORE_DRIVER"),
			Destination: &s.Driver,
		},
		&cli.StringFlag{
			Name:        "database-url",
			Usage:       "Postgres connection string",
			Category:    "Storage",
			Sources:     cli.EnvVars("DATABASE_URL"),
			Destination: &s.DatabaseURL,
		},
		&cli.StringFlag{
			Name:        "bolt-path",
			Usage:       "Path of the bolt database file",
			Category:    "Storage",
			Sources:     cli.EnvVars("BOLT_PATH"),
			Destination: &s.BoltPath,
		},
	}
}

func (s *Store) driver() string {
	if s.Driver != "" {
		return s.Driver
	}
	switch {
	case s.DatabaseURL != "":
		return "postgres"
	case s.BoltPath != "":
		return "bolt"
	default:
		return "memory"
	}
}

func (s *Store) Configure(ctx context.Context) (database.Store, error) {
	switch driver := s.driver(); driver {
	case "memory":
		return database.NewMemory(), nil
	case "bolt":
		if s.BoltPath == "" {
			return nil, goerr.New("BOLT_PATH is required for the bolt store")
		}
		return database.OpenBolt(s.BoltPath)
	case "postgres":
		if s.DatabaseURL == "" {
			return nil, goerr.New("DATABASE_URL is required for the postgres store")
		}
		return database.ConnectPostgres(ctx, s.DatabaseURL)
	default:
		return nil, goerr.New("unknown store driver", goerr.V("driver", driver))
	}
}

func (s Store) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("driver", s.driver()),
		slog.String("bolt_path", s.BoltPath),
	)
}
