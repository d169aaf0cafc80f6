// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest runs the batch ingestion pipeline: scan the vault,
// parse each export file through its format adapter, normalize the
// extracted units, and replace each document's unit set in the index
// store. Parse failures skip the file and the batch continues; store
// failures abort the run.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pdiddy/agentvault/internal/index"
	"github.com/pdiddy/agentvault/internal/logger"
	"github.com/pdiddy/agentvault/internal/vault"
	"github.com/pdiddy/agentvault/pkg/types"
)

// Summary holds counts from one ingestion run.
type Summary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Units   int
}

// Total returns the number of files processed.
func (s Summary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Run ingests every supported export file under root into the store.
// Re-running against unchanged content is idempotent: files whose
// content hash matches the stored hash are skipped without touching the
// index. Progress lines and a final summary are written to w.
func Run(ctx context.Context, store *index.Store, root string, w io.Writer) (Summary, error) {
	logger.Section("Ingesting vault")

	files, err := vault.Scan(root)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, f := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", f.Path, err)
			summary.Failed++
			continue
		}

		hash := ContentHash(content)
		stored, exists, err := store.DocumentHash(ctx, f.Source, f.Path)
		if err != nil {
			return summary, err
		}
		if exists && stored == hash {
			fmt.Fprintf(w, "skipped %s\n", f.Path)
			summary.Skipped++
			continue
		}

		parsed, err := f.Adapter.Parse(f.Path, content)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", f.Path, err)
			summary.Failed++
			continue
		}

		doc, units := buildDocument(f, parsed, hash)
		logger.Debug("replacing %d unit(s) for %s", len(units), f.Path)

		// Store failures abort the whole batch: downstream consistency
		// cannot be guaranteed once the store misbehaves.
		if err := store.UpsertDocument(ctx, doc, units); err != nil {
			return summary, fmt.Errorf("indexing %s: %w", f.Path, err)
		}

		summary.Units += len(units)
		if exists {
			fmt.Fprintf(w, "updated %s (%d units)\n", f.Path, len(units))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d units)\n", f.Path, len(units))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d, units: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.Units)

	return summary, nil
}

// buildDocument assigns stable unit ids and normalized text to the
// adapter output. Units whose text normalizes to nothing are dropped;
// they would be unreachable by any query.
func buildDocument(f vault.File, parsed *vault.Parsed, hash string) (types.SourceDocument, []types.ConversationUnit) {
	doc := types.SourceDocument{
		Source:     f.Source,
		Path:       f.Path,
		Title:      parsed.Title,
		Kind:       f.Adapter.Kind(),
		SHA256:     hash,
		ModTime:    f.ModTime,
		IngestedAt: time.Now().UTC(),
	}

	var units []types.ConversationUnit
	for _, raw := range parsed.Units {
		normalized := NormalizeText(raw.Text)
		if normalized == "" {
			continue
		}
		seq := len(units)
		units = append(units, types.ConversationUnit{
			ID:           UnitID(f.Source, f.Path, seq),
			Source:       f.Source,
			Path:         f.Path,
			Seq:          seq,
			Conversation: raw.Conversation,
			Role:         raw.Role,
			Timestamp:    raw.Timestamp,
			Text:         raw.Text,
			Normalized:   normalized,
		})
	}
	return doc, units
}
