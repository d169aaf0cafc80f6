// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/agentvault/internal/index"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a ranked full-text search against the index",
	Long: `Query searches the index and prints ranked results with provenance:
source, file path, conversation, and timestamp where known. An empty
query or a query with no matches prints no results and exits 0; only a
store-access failure exits nonzero.

Use --unit with a unit ID to show one unit in full instead of searching.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Unit mode: resolve one unit with provenance.
	if unitID, _ := cmd.Flags().GetString("unit"); unitID != "" {
		unit, err := store.GetUnit(context.Background(), unitID)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(unit)
		}
		fmt.Printf("%s  %s/%s #%d\n", unit.ID, unit.Source, unit.Path, unit.Seq)
		if unit.Conversation != "" {
			fmt.Printf("conversation: %s\n", unit.Conversation)
		}
		if unit.Role != "" {
			fmt.Printf("role: %s\n", unit.Role)
		}
		if !unit.Timestamp.IsZero() {
			fmt.Printf("timestamp: %s\n", unit.Timestamp.Format("2006-01-02 15:04"))
		}
		fmt.Printf("\n%s\n", unit.Text)
		return nil
	}

	text, _ := cmd.Flags().GetString("text")
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	source, _ := cmd.Flags().GetString("source")

	results, err := store.Search(context.Background(), index.SearchOptions{
		Query:  text,
		Source: source,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	return formatResults(results, jsonOutput)
}

func formatResults(results []index.Result, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []index.Result{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-7s  %-50s  %-12s  %-16s  %s\n",
		"Rank", "Score", "Snippet", "Source", "Date", "Unit")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		snippet := strings.Join(strings.Fields(r.Snippet), " ")
		if len(snippet) > 50 {
			snippet = snippet[:47] + "..."
		}
		date := ""
		if !r.Timestamp.IsZero() {
			date = r.Timestamp.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-7.2f  %-50s  %-12s  %-16s  %s\n",
			i+1, r.Score, snippet, r.Source, date, r.UnitID)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func init() {
	queryCmd.Flags().String("text", "", "free-text search query")
	queryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	queryCmd.Flags().String("source", "", "restrict to one ingestion source (e.g. chatgpt)")
	queryCmd.Flags().String("unit", "", "show one unit by ID instead of searching")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	queryCmd.Flags().String("store", "", "path to the index store database")

	rootCmd.AddCommand(queryCmd)
}
