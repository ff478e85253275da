package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/assessboard/api"
	dbfs "github.com/garnizeh/assessboard/db"
	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/config"
	"github.com/garnizeh/assessboard/internal/db"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
	mongorepo "github.com/garnizeh/assessboard/internal/repository/mongo"
	"github.com/garnizeh/assessboard/internal/repository/postgres"
	"github.com/garnizeh/assessboard/internal/repository/sqlite"
	"github.com/garnizeh/assessboard/internal/seed"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// store is an opened Record Store backend.
type store struct {
	employees repository.EmployeeRepo
	users     repository.UserRepo
	close     func(context.Context) error
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to config YAML file")
		demo       = flag.Bool("seed", false, "Load the demo employees on startup")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("starting assessboard", slog.String("version", version), slog.String("build_time", buildTime),
		slog.String("store", cfg.Store.Driver))

	ctx := context.Background()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.Any("err", err))
		os.Exit(1)
	}

	if err := bootstrapAdmin(ctx, st.users, cfg.Admin); err != nil {
		logger.Error("admin bootstrap failed", slog.Any("err", err))
		os.Exit(1)
	}
	if *demo {
		drafts, err := seed.Drafts(dbfs.SeedFiles)
		if err == nil {
			var n int
			n, err = seed.Employees(ctx, st.employees, drafts)
			logger.Info("demo employees loaded", slog.Int("created", n))
		}
		if err != nil {
			logger.Error("seed failed", slog.Any("err", err))
			os.Exit(1)
		}
	}

	schemas, err := assessment.LoadSchemas()
	if err != nil {
		logger.Error("failed to load payload schemas", slog.Any("err", err))
		os.Exit(1)
	}

	handler := api.SetupRoutes(cfg, version, buildTime, st.employees, st.users, schemas)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	if err := st.close(shutdownCtx); err != nil {
		logger.Error("error closing store", slog.Any("err", err))
	}

	logger.Info("server exited")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Store.PostgresDSN, cfg.Store.MaxConns)
		if err != nil {
			return nil, err
		}
		repo := postgres.New(pool, logger)
		return &store{employees: repo, users: repo, close: func(context.Context) error {
			pool.Close()
			return nil
		}}, nil

	case config.DriverMongo:
		client, err := mongorepo.Connect(ctx, cfg.Store.MongoURI)
		if err != nil {
			return nil, err
		}
		repo := mongorepo.New(client.Database(cfg.Store.MongoDatabase), logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &store{employees: repo, users: repo, close: client.Disconnect}, nil

	default:
		conn, err := db.New(ctx, cfg.DatabasePath, logger)
		if err != nil {
			return nil, err
		}
		if cfg.MigrateOnStart {
			if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
				conn.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		repo := sqlite.New(conn, logger)
		return &store{employees: repo, users: repo, close: func(context.Context) error { return conn.Close() }}, nil
	}
}

// bootstrapAdmin creates the configured account with its admin or HR role
// unless the email is already registered.
func bootstrapAdmin(ctx context.Context, users repository.UserRepo, admin config.AdminConfig) error {
	if admin.Email == "" {
		return nil
	}
	if _, err := users.GetUserByEmail(ctx, admin.Email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	role := admin.Role
	if role == "" {
		role = models.RoleAdmin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = users.CreateUser(ctx, &models.User{
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil
	}
	return err
}
