package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/garnizeh/assessboard/internal/query"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		spec   query.Spec
		format string
		outDir string
		remote bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered view to a CSV or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unknown format %q", format)
			}
			v, err := a.view(cmd.Context())
			if err != nil {
				return a.forgetExpired(err)
			}
			v.SetSpec(spec)

			var (
				name string
				data []byte
				ok   bool
			)
			switch {
			case remote:
				name, data, ok, err = a.client.Export(cmd.Context(), format, v.Spec())
			case format == "xlsx":
				var buf bytes.Buffer
				name, ok, err = v.ExportXLSX(a.now(), &buf)
				data = buf.Bytes()
			default:
				var content string
				name, content, ok = v.ExportCSV(a.now())
				data = []byte(content)
			}
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to export")
				return nil
			}

			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	bindSpecFlags(cmd.Flags(), &spec)
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory to write into")
	cmd.Flags().BoolVar(&remote, "remote", false, "Let the server render the export")
	return cmd
}
