// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists normalized conversation units and serves
// full-text queries over them. The store is file-backed SQLite with an
// FTS5 virtual table kept in sync by triggers; binaries and tests must
// be built with the sqlite_fts5 tag or schema creation fails. The
// store is a derived artifact: deleting the database and re-running
// build-index rebuilds it from the vault.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/agentvault/pkg/types"
)

// ErrUnitNotFound is returned when a unit id resolves to nothing.
var ErrUnitNotFound = errors.New("unit not found")

const (
	defaultMaxResults    = 10
	defaultRecencyWindow = 180 * 24 * time.Hour
)

// Store manages the index SQLite database. A single writer at a time is
// assumed; SQLite serializes concurrent access via the immediate
// transaction lock and busy timeout set at open.
type Store struct {
	db            *sql.DB
	path          string
	maxResults    int
	recencyWindow time.Duration
}

// NewStore opens or creates the index database at cfg.StorePath and
// creates the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if cfg.StorePath == "" {
		return nil, fmt.Errorf("index store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	// WAL keeps readers off the writer's lock; _txlock=immediate makes
	// every write transaction take the write lock up front, so a
	// concurrently triggered ingestion serializes instead of failing
	// mid-transaction.
	dsn := cfg.StorePath + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	recencyWindow := cfg.RecencyWindow
	if recencyWindow <= 0 {
		recencyWindow = defaultRecencyWindow
	}

	s := &Store{
		db:            db,
		path:          cfg.StorePath,
		maxResults:    maxResults,
		recencyWindow: recencyWindow,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			path TEXT NOT NULL,
			title TEXT,
			kind TEXT NOT NULL,
			sha256 TEXT NOT NULL,
			mod_time TEXT,
			ingested_at TEXT NOT NULL,
			UNIQUE(source, path)
		)`,
		`CREATE TABLE IF NOT EXISTS units (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			conversation TEXT,
			role TEXT,
			ts TEXT,
			content TEXT NOT NULL,
			normalized TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_units_document_id ON units(document_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='units_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE units_fts USING fts5(normalized, content=units, content_rowid=rowid)`,
			`CREATE TRIGGER units_ai AFTER INSERT ON units BEGIN
				INSERT INTO units_fts(rowid, normalized) VALUES (new.rowid, new.normalized);
			END`,
			`CREATE TRIGGER units_ad AFTER DELETE ON units BEGIN
				INSERT INTO units_fts(units_fts, rowid, normalized) VALUES('delete', old.rowid, old.normalized);
			END`,
			`CREATE TRIGGER units_au AFTER UPDATE ON units BEGIN
				INSERT INTO units_fts(units_fts, rowid, normalized) VALUES('delete', old.rowid, old.normalized);
				INSERT INTO units_fts(rowid, normalized) VALUES (new.rowid, new.normalized);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// DocumentHash returns the stored content hash for a document identity,
// and whether the document has been indexed before. Hashes are keyed
// per (source, path): identical content under two paths is two
// documents.
func (s *Store) DocumentHash(ctx context.Context, source, path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT sha256 FROM documents WHERE source = ? AND path = ?`, source, path,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up document hash: %w", err)
	}
	return hash, true, nil
}

// UpsertDocument replaces the full unit set for one document as a
// single transaction: old units for the same document are deleted and
// new ones inserted atomically, never left partially applied. An
// interrupted run rolls back and leaves the previous version visible.
func (s *Store) UpsertDocument(ctx context.Context, doc types.SourceDocument, units []types.ConversationUnit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	modTime := ""
	if !doc.ModTime.IsZero() {
		modTime = doc.ModTime.UTC().Format(time.RFC3339Nano)
	}
	ingestedAt := doc.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (source, path, title, kind, sha256, mod_time, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source, path) DO UPDATE SET
			title=excluded.title, kind=excluded.kind, sha256=excluded.sha256,
			mod_time=excluded.mod_time, ingested_at=excluded.ingested_at`,
		doc.Source, doc.Path, doc.Title, string(doc.Kind), doc.SHA256,
		modTime, ingestedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	var docID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE source = ? AND path = ?`, doc.Source, doc.Path,
	).Scan(&docID); err != nil {
		return fmt.Errorf("resolving document id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("deleting old units: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO units (id, document_id, seq, conversation, role, ts, content, normalized)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, u := range units {
		ts := ""
		if !u.Timestamp.IsZero() {
			ts = u.Timestamp.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx,
			u.ID, docID, u.Seq, u.Conversation, u.Role, ts, u.Text, u.Normalized,
		); err != nil {
			return fmt.Errorf("inserting unit %s: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

// GetUnit resolves a unit id to the full unit with provenance.
func (s *Store) GetUnit(ctx context.Context, id string) (types.ConversationUnit, error) {
	var (
		u  types.ConversationUnit
		ts sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.seq, COALESCE(u.conversation,''), COALESCE(u.role,''), u.ts,
			u.content, u.normalized, d.source, d.path
		 FROM units u
		 JOIN documents d ON d.id = u.document_id
		 WHERE u.id = ?`, id,
	).Scan(&u.ID, &u.Seq, &u.Conversation, &u.Role, &ts,
		&u.Text, &u.Normalized, &u.Source, &u.Path)
	if err == sql.ErrNoRows {
		return types.ConversationUnit{}, fmt.Errorf("unit %s: %w", id, ErrUnitNotFound)
	}
	if err != nil {
		return types.ConversationUnit{}, fmt.Errorf("looking up unit: %w", err)
	}
	u.Timestamp = parseStoredTime(ts)
	return u, nil
}

// SourceStats holds per-source document and unit counts.
type SourceStats struct {
	Source    string `json:"source" yaml:"source"`
	Documents int    `json:"documents" yaml:"documents"`
	Units     int    `json:"units" yaml:"units"`
}

// Stats reports document and unit counts grouped by source.
func (s *Store) Stats(ctx context.Context) ([]SourceStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.source, COUNT(DISTINCT d.id), COUNT(u.rowid)
		 FROM documents d
		 LEFT JOIN units u ON u.document_id = d.id
		 GROUP BY d.source
		 ORDER BY d.source`)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var st SourceStats
		if err := rows.Scan(&st.Source, &st.Documents, &st.Units); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func parseStoredTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
