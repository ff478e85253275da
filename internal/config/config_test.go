package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/garnizeh/assessboard/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Addr:          ":8080",
		JWTSecret:     "strongsecret",
		APITimeout:    5 * time.Second,
		DatabasePath:  "assessboard.db",
		TokenDuration: 1 * time.Hour,
		Store:         config.StoreConfig{Driver: config.DriverSQLite},
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	t.Setenv("ASSESS_ENV", "production")

	cfg := validConfig()
	cfg.JWTSecret = "supersecretkey"

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	t.Setenv("ASSESS_ENV", "development")

	cfg := validConfig()
	cfg.JWTSecret = "supersecretkey"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_Store(t *testing.T) {
	t.Setenv("ASSESS_ENV", "production")

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
		check   func(t *testing.T, c *config.Config)
	}{
		{
			name:   "empty driver defaults to sqlite",
			mutate: func(c *config.Config) { c.Store.Driver = "" },
			check: func(t *testing.T, c *config.Config) {
				if c.Store.Driver != config.DriverSQLite {
					t.Fatalf("driver = %q", c.Store.Driver)
				}
			},
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *config.Config) { c.DatabasePath = "" },
			wantErr: true,
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *config.Config) { c.Store.Driver = config.DriverPostgres },
			wantErr: true,
		},
		{
			name: "postgres with dsn",
			mutate: func(c *config.Config) {
				c.Store.Driver = config.DriverPostgres
				c.Store.PostgresDSN = "postgres://localhost/assess"
			},
		},
		{
			name:    "mongo without uri",
			mutate:  func(c *config.Config) { c.Store.Driver = config.DriverMongo },
			wantErr: true,
		},
		{
			name: "mongo fills database name",
			mutate: func(c *config.Config) {
				c.Store.Driver = config.DriverMongo
				c.Store.MongoURI = "mongodb://localhost:27017"
			},
			check: func(t *testing.T, c *config.Config) {
				if c.Store.MongoDatabase != "assessboard" {
					t.Fatalf("mongo database = %q", c.Store.MongoDatabase)
				}
			},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *config.Config) { c.Store.Driver = "redis" },
			wantErr: true,
		},
		{
			name:    "admin email without password",
			mutate:  func(c *config.Config) { c.Admin.Email = "root@x.com" },
			wantErr: true,
		},
		{
			name: "admin role defaults to admin",
			mutate: func(c *config.Config) {
				c.Admin = config.AdminConfig{Email: "root@x.com", Password: "pw"}
			},
			check: func(t *testing.T, c *config.Config) {
				if c.Admin.Role != "admin" {
					t.Fatalf("admin role = %q", c.Admin.Role)
				}
			},
		},
		{
			name: "hr bootstrap role",
			mutate: func(c *config.Config) {
				c.Admin = config.AdminConfig{Email: "hr@x.com", Password: "pw", Role: "HR"}
			},
			check: func(t *testing.T, c *config.Config) {
				if c.Admin.Role != "HR" {
					t.Fatalf("admin role = %q", c.Admin.Role)
				}
			},
		},
		{
			name:    "employee bootstrap role rejected",
			mutate:  func(c *config.Config) { c.Admin = config.AdminConfig{Email: "e@x.com", Password: "pw", Role: "employee"} },
			wantErr: true,
		},
		{
			name: "zero durations get defaults",
			mutate: func(c *config.Config) {
				c.APITimeout = 0
				c.TokenDuration = 0
			},
			check: func(t *testing.T, c *config.Config) {
				if c.APITimeout != 15*time.Second || c.TokenDuration != time.Hour {
					t.Fatalf("defaults not applied: %v %v", c.APITimeout, c.TokenDuration)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ASSESS_ADDR", "")
	t.Setenv("ASSESS_JWT_SECRET", "")
	t.Setenv("ASSESS_DATABASE_PATH", "")
	t.Setenv("ASSESS_STORE_DRIVER", "")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.JWTSecret != "supersecretkey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "supersecretkey")
	}
	if cfg.DatabasePath != "assessboard.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "assessboard.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 1*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 1*time.Hour)
	}
	if cfg.Store.Driver != config.DriverSQLite {
		t.Fatalf("unexpected driver %q", cfg.Store.Driver)
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("migrations should run on start by default")
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("ASSESS_STORE_DRIVER", "mongo")
	t.Setenv("ASSESS_MONGO_URI", "mongodb://db:27017")
	t.Setenv("ASSESS_ADMIN_EMAIL", "root@x.com")
	t.Setenv("ASSESS_ADMIN_ROLE", "HR")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Driver != "mongo" || cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Fatalf("store env not applied: %+v", cfg.Store)
	}
	if cfg.Admin.Email != "root@x.com" || cfg.Admin.Role != "HR" {
		t.Fatalf("admin env not applied: %+v", cfg.Admin)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\n" +
		"store:\n  driver: postgres\n  postgres_dsn: \"postgres://u:p@localhost/assess\"\n  max_conns: 4\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if cfg.Store.Driver != config.DriverPostgres || cfg.Store.MaxConns != 4 {
		t.Fatalf("unexpected store: %+v", cfg.Store)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(path); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestLoadClientConfig(t *testing.T) {
	cfg, err := config.LoadClientConfig("")
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.BaseURL == "" || cfg.Timeout <= 0 || cfg.SessionFile == "" || cfg.StorageFile == "" {
		t.Fatalf("defaults not populated: %+v", cfg)
	}

	path := filepath.Join(t.TempDir(), "client.yaml")
	body := []byte("base_url: \"http://api:9000\"\nretries: -3\ntimeout: \"0s\"\nsession_file: \"/tmp/s.json\"\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = config.LoadClientConfig(path)
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.BaseURL != "http://api:9000" || cfg.SessionFile != "/tmp/s.json" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Retries != 0 || cfg.Timeout != 10*time.Second {
		t.Fatalf("bounds not enforced: retries=%d timeout=%v", cfg.Retries, cfg.Timeout)
	}
}
