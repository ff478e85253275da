package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	dbfs "github.com/garnizeh/assessboard/db"
	"github.com/garnizeh/assessboard/internal/config"
)

// Applies the embedded postgres migrations. Usage:
//
//	migrate [-config file] [-dsn url] up|down|steps N|version|drop
func main() {
	var (
		configPath = flag.String("config", "", "Path to config YAML file")
		dsnFlag    = flag.String("dsn", "", "Postgres URL; overrides store.postgres_dsn")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	dsn := cfg.Store.PostgresDSN
	if *dsnFlag != "" {
		dsn = *dsnFlag
	}
	if dsn == "" {
		logger.Error("no postgres dsn: set -dsn or ASSESS_POSTGRES_DSN")
		os.Exit(1)
	}

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	if err := run(logger, action, flag.Args(), dsn); err != nil {
		logger.Error("migration failed", slog.String("action", action), slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("migration completed", slog.String("action", action))
}

func run(logger *slog.Logger, action string, args []string, dsn string) error {
	src, err := iofs.New(dbfs.PostgresMigrations, "postgres")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		if len(args) < 2 {
			return errors.New("steps needs a count")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[1], err)
		}
		return ignoreNoChange(m.Steps(n))
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migration applied")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("current version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
