// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/agentvault/internal/logger"
)

// File is one export file discovered under the vault root, paired with
// the adapter that will parse it.
type File struct {
	// Source is the per-origin subfolder the file sits under.
	Source string

	// Path is the file path relative to the vault root.
	Path string

	// AbsPath is the file's full path on disk.
	AbsPath string

	// ModTime is the file modification time at scan time.
	ModTime time.Time

	// Adapter parses this file's format.
	Adapter Adapter
}

// Scan walks the vault root and returns every supported export file,
// sorted by (source, path) so ingestion order is deterministic. The
// first directory level names the source; files directly under the root
// and files with unsupported extensions are skipped with a warning. An
// unreadable root is an error.
func Scan(root string) ([]File, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("reading vault root %s: %w", root, err)
	}

	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		source, _, found := strings.Cut(filepath.ToSlash(rel), "/")
		if !found {
			logger.Warn("skipping %s: files must sit under a per-source subfolder", rel)
			return nil
		}

		adapter := ForPath(path)
		if adapter == nil {
			logger.Warn("skipping %s: unsupported extension %q", rel, lowerExt(path))
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, File{
			Source:  source,
			Path:    filepath.ToSlash(rel),
			AbsPath: path,
			ModTime: info.ModTime().UTC(),
			Adapter: adapter,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning vault: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Source != files[j].Source {
			return files[i].Source < files[j].Source
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}
