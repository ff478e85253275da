package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/garnizeh/assessboard/internal/models"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	Store          StoreConfig   `yaml:"store"`
	Admin          AdminConfig   `yaml:"admin"`
}

// StoreConfig selects and configures the Record Store backend.
type StoreConfig struct {
	Driver        string `yaml:"driver"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	MaxConns      int    `yaml:"max_conns"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// AdminConfig bootstraps a dashboard account on startup when Email is set.
// Role is admin or HR.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// ClientConfig configures the dashboard CLI and its HTTP client.
type ClientConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
	SessionFile             string        `yaml:"session_file"`
	StorageFile             string        `yaml:"storage_file"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour

	cfg := &Config{
		Addr:           getEnv("ASSESS_ADDR", ":8080"),
		JWTSecret:      getEnv("ASSESS_JWT_SECRET", insecureJWTSecret),
		APITimeout:     apiTimeout,
		DatabasePath:   getEnv("ASSESS_DATABASE_PATH", "assessboard.db"),
		TokenDuration:  tokenDuration,
		MigrateOnStart: true,
		Store: StoreConfig{
			Driver:        getEnv("ASSESS_STORE_DRIVER", DriverSQLite),
			PostgresDSN:   os.Getenv("ASSESS_POSTGRES_DSN"),
			MongoURI:      os.Getenv("ASSESS_MONGO_URI"),
			MongoDatabase: getEnv("ASSESS_MONGO_DATABASE", "assessboard"),
		},
		Admin: AdminConfig{
			Name:     getEnv("ASSESS_ADMIN_NAME", "Administrator"),
			Email:    os.Getenv("ASSESS_ADMIN_EMAIL"),
			Password: os.Getenv("ASSESS_ADMIN_PASSWORD"),
			Role:     getEnv("ASSESS_ADMIN_ROLE", models.RoleAdmin),
		},
	}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects unsafe or incomplete settings and fills defaults.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == insecureJWTSecret && os.Getenv("ASSESS_ENV") != "development" {
		return errors.New("jwt_secret uses the built-in default; set ASSESS_JWT_SECRET or ASSESS_ENV=development")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}

	switch c.Store.Driver {
	case "", DriverSQLite:
		c.Store.Driver = DriverSQLite
		if c.DatabasePath == "" {
			return errors.New("database_path is required for the sqlite store")
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn is required for the postgres store")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("store.mongo_uri is required for the mongo store")
		}
		if c.Store.MongoDatabase == "" {
			c.Store.MongoDatabase = "assessboard"
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Admin.Email != "" && c.Admin.Password == "" {
		return errors.New("admin.password is required when admin.email is set")
	}
	switch c.Admin.Role {
	case "":
		c.Admin.Role = models.RoleAdmin
	case models.RoleAdmin, models.RoleHR:
	default:
		return fmt.Errorf("admin.role must be %q or %q, got %q", models.RoleAdmin, models.RoleHR, c.Admin.Role)
	}
	return nil
}

// DefaultClientConfig returns the CLI defaults. Session and preset files live
// in the user config directory.
func DefaultClientConfig() ClientConfig {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "assessboard")

	return ClientConfig{
		BaseURL:                 getEnv("ASSESS_API_URL", "http://localhost:8080"),
		Timeout:                 10 * time.Second,
		Retries:                 2,
		Backoff:                 300 * time.Millisecond,
		CircuitFailureThreshold: 5,
		CircuitReset:            30 * time.Second,
		SessionFile:             filepath.Join(dir, "session.json"),
		StorageFile:             filepath.Join(dir, "storage.json"),
	}
}

// LoadClientConfig overlays the YAML file at path on DefaultClientConfig.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.CircuitFailureThreshold <= 0 {
		cfg.CircuitFailureThreshold = 5
	}
	return &cfg, nil
}

func decodeFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
