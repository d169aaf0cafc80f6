// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/agentvault/internal/logger"
	"github.com/pdiddy/agentvault/pkg/types"
)

func writeVaultFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeVaultFile(t, root, "perplexity/thread.md", "# t")
	writeVaultFile(t, root, "chatgpt/export.html", "<p>x</p>")
	writeVaultFile(t, root, "chatgpt/nested/conversations.json", "[]")

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 3)

	// Sorted by (source, path) for deterministic ingestion order.
	assert.Equal(t, "chatgpt/export.html", files[0].Path)
	assert.Equal(t, "chatgpt/nested/conversations.json", files[1].Path)
	assert.Equal(t, "perplexity/thread.md", files[2].Path)

	assert.Equal(t, "chatgpt", files[0].Source)
	assert.Equal(t, types.KindHTML, files[0].Adapter.Kind())
	assert.Equal(t, types.KindChatJSON, files[1].Adapter.Kind())
	assert.Equal(t, types.KindMarkdown, files[2].Adapter.Kind())
	assert.Equal(t, filepath.Join(root, "chatgpt", "export.html"), files[0].AbsPath)
}

func TestScanSkipsUnsupportedWithWarning(t *testing.T) {
	root := t.TempDir()
	writeVaultFile(t, root, "chatgpt/archive.zip", "binary")
	writeVaultFile(t, root, "chatgpt/thread.md", "# t")

	var warnings strings.Builder
	logger.SetOutput(&warnings)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "chatgpt/thread.md", files[0].Path)
	assert.Contains(t, warnings.String(), "archive.zip")
	assert.Contains(t, warnings.String(), "unsupported extension")
}

func TestScanSkipsRootLevelFilesAndDotfiles(t *testing.T) {
	root := t.TempDir()
	writeVaultFile(t, root, "stray.md", "# not under a source")
	writeVaultFile(t, root, "chatgpt/.hidden.md", "# hidden")
	writeVaultFile(t, root, "chatgpt/kept.md", "# kept")

	var warnings strings.Builder
	logger.SetOutput(&warnings)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "chatgpt/kept.md", files[0].Path)
	assert.Contains(t, warnings.String(), "stray.md")
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want types.SourceKind
	}{
		{"a/b.HTML", types.KindHTML},
		{"a/b.htm", types.KindHTML},
		{"a/conversations.json", types.KindChatJSON},
		{"a/b.md", types.KindMarkdown},
		{"a/b.markdown", types.KindMarkdown},
		{"a/b.txt", types.KindMarkdown},
	}
	for _, tt := range tests {
		adapter := ForPath(tt.path)
		require.NotNil(t, adapter, "no adapter for %s", tt.path)
		assert.Equal(t, tt.want, adapter.Kind(), "adapter for %s", tt.path)
	}

	assert.Nil(t, ForPath("a/b.pdf"))
	assert.Nil(t, ForPath("a/noext"))
}
