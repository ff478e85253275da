package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/garnizeh/assessboard/internal/client"
	"github.com/garnizeh/assessboard/internal/config"
	"github.com/garnizeh/assessboard/internal/dashboard"
	"github.com/garnizeh/assessboard/internal/preset"
)

// app carries what every subcommand needs. Fields set before Execute win
// over the config file.
type app struct {
	cfg     *config.ClientConfig
	client  *client.Client
	session client.Session
	signed  bool
	now     func() time.Time

	configPath string
	baseURL    string
	verbose    bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Employee assessment dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.client.Close()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to client config YAML file")
	root.PersistentFlags().StringVar(&a.baseURL, "url", "", "Record Store base URL")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newOptionsCmd(a),
		newQuestionsCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newPresetCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	client.SetLogger(logger)
	dashboard.SetLogger(logger)

	if a.now == nil {
		a.now = time.Now
	}
	if a.cfg == nil {
		cfg, err := config.LoadClientConfig(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
	}
	if a.baseURL != "" {
		a.cfg.BaseURL = a.baseURL
	}

	c, err := client.NewDefaultClient(*a.cfg)
	if err != nil {
		return err
	}
	a.client = c

	a.session, a.signed, err = c.Init(a.cfg.SessionFile)
	return err
}

// view opens the dashboard for the signed-in role and loads the records.
func (a *app) view(ctx context.Context) (*dashboard.View, error) {
	if !a.signed {
		return nil, errors.New("not signed in; run dashboard login")
	}
	v, err := dashboard.New(a.client, a.session.Role)
	if err != nil {
		return nil, err
	}
	if err := v.Refresh(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func (a *app) presets(ctx context.Context) (*preset.Store, error) {
	return preset.Load(ctx, preset.NewFileStorage(a.cfg.StorageFile))
}

// forgetExpired drops a session the server no longer accepts.
func (a *app) forgetExpired(err error) error {
	if errors.Is(err, client.ErrUnauthenticated) {
		_ = client.ClearSession(a.cfg.SessionFile)
		return errors.New("session expired; run dashboard login")
	}
	return err
}
