// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/agentvault/internal/index"
	"github.com/pdiddy/agentvault/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*index.Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	store, err := index.NewStore(types.IndexConfig{
		StorePath: filepath.Join(tmpDir, "data", "agentvault.sqlite"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, filepath.Join(tmpDir, "vault")
}

func writeExport(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runIngest(t *testing.T, store *index.Store, root string) (Summary, string) {
	t.Helper()
	var buf strings.Builder
	summary, err := Run(context.Background(), store, root, &buf)
	if err != nil {
		t.Fatalf("Run: %v\noutput: %s", err, buf.String())
	}
	return summary, buf.String()
}

const markdownThread = `# Workflow notes

We decided to use a draft-first workflow for automated actions.

## Details

Proposals are reviewed by a human before execution.`

// --- pipeline tests ---

func TestRunIndexesVault(t *testing.T) {
	store, root := testSetup(t)
	writeExport(t, root, "perplexity/notes.md", markdownThread)
	writeExport(t, root, "chatgpt/export.html",
		`<html><head><title>Chat</title></head><body><p>Indexing question</p><p>Indexing answer</p></body></html>`)

	summary, out := runIngest(t, store, root)

	if summary.Indexed != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v\noutput: %s", summary, out)
	}
	if summary.Units != 4 {
		t.Errorf("Units = %d, want 4", summary.Units)
	}
	if !strings.Contains(out, "indexed perplexity/notes.md (2 units)") {
		t.Errorf("missing progress line in output:\n%s", out)
	}

	results, err := store.Search(context.Background(), index.SearchOptions{Query: "draft-first"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score <= 0 {
		t.Errorf("Score = %v, want > 0", results[0].Score)
	}
	if results[0].Source != "perplexity" || results[0].Path != "perplexity/notes.md" {
		t.Errorf("provenance = %s/%s", results[0].Source, results[0].Path)
	}
}

func TestRunIdempotent(t *testing.T) {
	store, root := testSetup(t)
	writeExport(t, root, "perplexity/notes.md", markdownThread)

	first, _ := runIngest(t, store, root)
	if first.Indexed != 1 {
		t.Fatalf("first run summary = %+v", first)
	}
	firstDocs, err := store.Documents(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	second, out := runIngest(t, store, root)
	if second.Skipped != 1 || second.Indexed != 0 || second.Updated != 0 {
		t.Errorf("second run summary = %+v\noutput: %s", second, out)
	}
	if !strings.Contains(out, "skipped perplexity/notes.md") {
		t.Errorf("missing skip line:\n%s", out)
	}

	// The skip is a true no-op: nothing in the index moved, including
	// the ingestion timestamp.
	secondDocs, err := store.Documents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(firstDocs) != 1 || len(secondDocs) != 1 {
		t.Fatalf("docs = %d then %d, want 1", len(firstDocs), len(secondDocs))
	}
	if !firstDocs[0].IngestedAt.Equal(secondDocs[0].IngestedAt) {
		t.Errorf("IngestedAt moved on a skipped document")
	}
}

func TestRunUpdatesChangedDocument(t *testing.T) {
	store, root := testSetup(t)
	writeExport(t, root, "perplexity/notes.md", markdownThread)
	runIngest(t, store, root)

	writeExport(t, root, "perplexity/notes.md", "# Rewritten\n\nEntirely new content.")
	summary, _ := runIngest(t, store, root)
	if summary.Updated != 1 {
		t.Fatalf("summary = %+v, want 1 updated", summary)
	}

	// Old units are gone; new content is searchable.
	results, err := store.Search(context.Background(), index.SearchOptions{Query: "draft-first"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("stale content still indexed")
	}
	results, err = store.Search(context.Background(), index.SearchOptions{Query: "rewritten"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results for new content, want 1", len(results))
	}
}

func TestRunSkipsUnparseableFiles(t *testing.T) {
	store, root := testSetup(t)
	writeExport(t, root, "chatgpt/broken.json", `{"conversations": [`)
	writeExport(t, root, "perplexity/good.md", markdownThread)

	summary, out := runIngest(t, store, root)

	// Parse failures never abort the batch.
	if summary.Failed != 1 || summary.Indexed != 1 {
		t.Fatalf("summary = %+v\noutput: %s", summary, out)
	}
	if !strings.Contains(out, "failed  chatgpt/broken.json") {
		t.Errorf("missing failure line:\n%s", out)
	}

	results, err := store.Search(context.Background(), index.SearchOptions{Query: "workflow"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Error("good file not indexed after a failed one")
	}
}

func TestRunIdenticalContentDifferentPaths(t *testing.T) {
	store, root := testSetup(t)

	// Hashes are keyed per (source, path): identical bytes under two
	// paths are two independent documents.
	writeExport(t, root, "perplexity/a.md", markdownThread)
	writeExport(t, root, "perplexity/b.md", markdownThread)

	summary, _ := runIngest(t, store, root)
	if summary.Indexed != 2 {
		t.Fatalf("summary = %+v, want 2 indexed", summary)
	}

	results, err := store.Search(context.Background(), index.SearchOptions{Query: "draft-first"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want one per path", len(results))
	}
	if results[0].Path == results[1].Path {
		t.Errorf("both results from %s", results[0].Path)
	}
	if results[0].UnitID == results[1].UnitID {
		t.Errorf("unit ids collide across paths")
	}
}

func TestRunStableUnitIDs(t *testing.T) {
	store, root := testSetup(t)
	writeExport(t, root, "perplexity/notes.md", markdownThread)
	runIngest(t, store, root)

	before, err := store.Search(context.Background(), index.SearchOptions{Query: "draft-first"})
	if err != nil {
		t.Fatal(err)
	}

	// Touch the file so the hash check runs again, content unchanged.
	writeExport(t, root, "perplexity/notes.md", markdownThread)
	runIngest(t, store, root)

	after, err := store.Search(context.Background(), index.SearchOptions{Query: "draft-first"})
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 1 || len(after) != 1 || before[0].UnitID != after[0].UnitID {
		t.Errorf("unit id not stable across re-ingestion: %v vs %v", before, after)
	}
}

func TestRunMissingRoot(t *testing.T) {
	store, _ := testSetup(t)
	var buf strings.Builder
	_, err := Run(context.Background(), store, filepath.Join(t.TempDir(), "nope"), &buf)
	if err == nil {
		t.Fatal("expected error for missing vault root")
	}
}

func TestRunContextCancelled(t *testing.T) {
	store, root := testSetup(t)
	writeExport(t, root, "perplexity/notes.md", markdownThread)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf strings.Builder
	_, err := Run(ctx, store, root, &buf)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunNormalizesUnits(t *testing.T) {
	store, root := testSetup(t)
	writeExport(t, root, "perplexity/notes.md", "# Title\n\nMiXeD   Case\tTEXT")
	runIngest(t, store, root)

	// Query terms are matched against the normalized projection.
	results, err := store.Search(context.Background(), index.SearchOptions{Query: "mixed"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !strings.Contains(results[0].Text, "MiXeD   Case\tTEXT") {
		t.Errorf("Text = %q, want the raw text preserved", results[0].Text)
	}
}
