package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garnizeh/assessboard/internal/client"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.SignIn(cmd.Context(), email, password)
			if errors.Is(err, client.ErrUnauthenticated) {
				return errors.New("invalid email or password")
			}
			if err != nil {
				return err
			}
			return a.remember(cmd, s)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an employee account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.SignUp(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			return a.remember(cmd, s)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	for _, f := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (a *app) remember(cmd *cobra.Command, s client.Session) error {
	if err := client.SaveSession(a.cfg.SessionFile, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.session, a.signed = s, true
	fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", s.Email, s.Role)
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.signed {
				// the token is dropped locally whatever the server says
				if err := a.client.SignOut(cmd.Context()); err != nil && !errors.Is(err, client.ErrUnauthenticated) {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: server sign out failed:", err)
				}
			}
			if err := client.ClearSession(a.cfg.SessionFile); err != nil {
				return err
			}
			a.session, a.signed = client.Session{}, false
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
