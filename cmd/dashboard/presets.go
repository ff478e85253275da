package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garnizeh/assessboard/internal/query"
)

func newPresetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Save, apply and remove named filter presets",
	}
	cmd.AddCommand(newPresetSaveCmd(a), newPresetApplyCmd(a), newPresetRemoveCmd(a), newPresetListCmd(a))
	return cmd
}

func newPresetSaveCmd(a *app) *cobra.Command {
	var spec query.Spec
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the given filters under name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.presets(cmd.Context())
			if err != nil {
				return err
			}
			p, err := store.Save(args[0], spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved preset %q\n", p.Name)
			return nil
		},
	}
	bindSpecFlags(cmd.Flags(), &spec)
	return cmd
}

func newPresetApplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <name>",
		Short: "List employees using a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.presets(cmd.Context())
			if err != nil {
				return err
			}
			p, ok := store.Find(args[0])
			if !ok {
				return fmt.Errorf("no preset named %q", args[0])
			}
			v, err := a.view(cmd.Context())
			if err != nil {
				return a.forgetExpired(err)
			}
			v.ApplyPreset(p)
			return printEmployees(cmd.OutOrStdout(), v.Visible())
		},
	}
}

func newPresetRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove every preset with this name",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.presets(cmd.Context())
			if err != nil {
				return err
			}
			n, err := store.Remove(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d preset(s)\n", n)
			return nil
		},
	}
}

func newPresetListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List saved presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.presets(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSEARCH\tROLE\tINTEREST\tGOALS\tCULTURE\tLEARNING\tSORT")
			for _, p := range store.List() {
				f := p.Filters
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					p.Name, f.Search, f.Role, f.Interest, f.Goals, f.Culture, f.Learning, f.SortOption)
			}
			return tw.Flush()
		},
	}
}
