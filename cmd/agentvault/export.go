// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/agentvault/internal/index"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index contents to YAML or JSON",
	Long: `Export writes every indexed unit (or one source's units) with full
provenance to a YAML or JSON file. The export, like the index itself,
is a derived artifact rebuildable from the vault.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	source, _ := cmd.Flags().GetString("source")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if out == "" {
			out = "data/export.yaml"
		}
		if err := store.ExportYAML(context.Background(), out, source); err != nil {
			return err
		}
	case "json":
		if out == "" {
			out = "data/export.json"
		}
		if err := store.ExportJSON(context.Background(), out, source); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Printf("Exported to %s\n", out)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output path (default data/export.yaml or data/export.json)")
	exportCmd.Flags().String("source", "", "restrict to one ingestion source")
	exportCmd.Flags().String("store", "", "path to the index store database")

	rootCmd.AddCommand(exportCmd)
}
