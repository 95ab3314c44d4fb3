// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-analyzer/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored analyses to YAML or JSON",
	Long: `Export writes a summary of every stored analysis to export.yaml or
export.json in the output directory.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	dir, _ := cmd.Flags().GetString("dir")

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = st.ExportYAML(cmd.Context(), dir)
	case "json":
		path, err = st.ExportJSON(cmd.Context(), dir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("dir", "output", "directory for the export file")

	rootCmd.AddCommand(exportCmd)
}
