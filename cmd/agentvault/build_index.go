// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/agentvault/internal/index"
	"github.com/pdiddy/agentvault/internal/ingest"
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Ingest the vault into the full-text index",
	Long: `Build-index scans every per-source subfolder under the vault root,
parses each export file, and replaces the corresponding units in the
index store. Files whose content is unchanged since the last run are
skipped, so re-running against an unchanged vault is a no-op.

Files that fail to parse are logged and skipped; they do not fail the
run. Store failures abort immediately with a nonzero exit.`,
	RunE: runBuildIndex,
}

func runBuildIndex(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = ingest.Run(context.Background(), store, vaultRoot(cmd), os.Stdout)
	return err
}

func init() {
	buildIndexCmd.Flags().String("root", "", "vault root folder containing per-source subfolders")
	buildIndexCmd.Flags().String("store", "", "path to the index store database")

	rootCmd.AddCommand(buildIndexCmd)
}
