// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/agentvault/pkg/types"
)

// ExportEntry is one unit with provenance as written to an export file.
type ExportEntry struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Path         string `json:"path" yaml:"path"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Conversation string `json:"conversation,omitempty" yaml:"conversation,omitempty"`
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	Timestamp    string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Text         string `json:"text" yaml:"text"`
}

// ExportYAML writes the index contents (optionally restricted to one
// source) to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path, source string) error {
	entries, err := s.exportEntries(ctx, source)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the index contents (optionally restricted to one
// source) to path as JSON.
func (s *Store) ExportJSON(ctx context.Context, path, source string) error {
	entries, err := s.exportEntries(ctx, source)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, source string) ([]ExportEntry, error) {
	q := `SELECT u.id, d.source, d.path, COALESCE(d.title,''),
			COALESCE(u.conversation,''), COALESCE(u.role,''), u.ts, u.content
		FROM units u
		JOIN documents d ON d.id = u.document_id`
	var args []any
	if source != "" {
		q += ` WHERE d.source = ?`
		args = append(args, source)
	}
	q += ` ORDER BY d.source, d.path, u.seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	entries := []ExportEntry{}
	for rows.Next() {
		var (
			e  ExportEntry
			ts sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Path, &e.Title,
			&e.Conversation, &e.Role, &ts, &e.Text); err != nil {
			return nil, fmt.Errorf("scanning export row: %w", err)
		}
		if ts.Valid {
			e.Timestamp = ts.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Documents lists every indexed SourceDocument, ordered by source and
// path.
func (s *Store) Documents(ctx context.Context) ([]types.SourceDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, path, COALESCE(title,''), kind, sha256, mod_time, ingested_at
		 FROM documents ORDER BY source, path`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []types.SourceDocument
	for rows.Next() {
		var (
			d          types.SourceDocument
			kind       string
			modTime    sql.NullString
			ingestedAt string
		)
		if err := rows.Scan(&d.Source, &d.Path, &d.Title, &kind, &d.SHA256, &modTime, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		d.Kind = types.SourceKind(kind)
		d.ModTime = parseStoredTime(modTime)
		d.IngestedAt = parseStoredTime(sql.NullString{String: ingestedAt, Valid: true})
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
