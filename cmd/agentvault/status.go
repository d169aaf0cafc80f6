// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/agentvault/internal/index"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-source document and unit counts",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if stats == nil {
			stats = []index.SourceStats{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	if len(stats) == 0 {
		fmt.Println("Index is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-16s  %10s  %10s\n", "Source", "Documents", "Units")
	for _, st := range stats {
		fmt.Fprintf(os.Stdout, "%-16s  %10d  %10d\n", st.Source, st.Documents, st.Units)
	}
	return nil
}

func init() {
	statusCmd.Flags().Bool("json", false, "output counts as JSON")
	statusCmd.Flags().String("store", "", "path to the index store database")

	rootCmd.AddCommand(statusCmd)
}
