// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/agentvault/internal/logger"
)

// SearchOptions holds parameters for a full-text query.
type SearchOptions struct {
	// Query is the free-text search string. Empty or whitespace-only
	// queries return an empty result set, not an error.
	Query string

	// Source restricts results to one ingestion source (e.g. "chatgpt").
	Source string

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

// Result is one ranked search hit with provenance.
type Result struct {
	UnitID       string    `json:"unit_id" yaml:"unit_id"`
	Score        float64   `json:"score" yaml:"score"`
	Snippet      string    `json:"snippet" yaml:"snippet"`
	Text         string    `json:"text" yaml:"text"`
	Conversation string    `json:"conversation" yaml:"conversation"`
	Role         string    `json:"role,omitempty" yaml:"role,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Source       string    `json:"source" yaml:"source"`
	Path         string    `json:"path" yaml:"path"`
	Title        string    `json:"title" yaml:"title"`
	Seq          int       `json:"seq" yaml:"seq"`
}

// Search runs a read-only full-text query and returns ranked results.
// Ranking is bm25 relevance with a recency boost among near-equal
// scores; ties break on source path lexical order then unit sequence,
// so result order is stable across runs. No matches is an empty slice
// with a nil error.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]Result, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	// Fetch extra candidates so the recency boost can reorder
	// near-equal scores past the requested limit.
	candidates := limit * 5
	if candidates < 50 {
		candidates = 50
	}

	results, err := s.matchUnits(ctx, query, opts.Source, candidates)
	if err != nil {
		// FTS5 rejects queries with stray operators or unquoted
		// punctuation. Retry with the whole query as a quoted phrase;
		// if that also fails the query is unanswerable, which is an
		// empty result, not a failure.
		quoted := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
		results, err = s.matchUnits(ctx, quoted, opts.Source, candidates)
		if err != nil {
			logger.Debug("query %q not answerable: %v", query, err)
			return nil, nil
		}
	}

	s.rank(results)

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// matchUnits runs one FTS5 MATCH and returns unranked candidates in
// bm25 order.
func (s *Store) matchUnits(ctx context.Context, match, source string, limit int) ([]Result, error) {
	q := `SELECT u.id, u.seq, COALESCE(u.conversation,''), COALESCE(u.role,''), u.ts, u.content,
			d.source, d.path, COALESCE(d.title,''),
			bm25(units_fts),
			snippet(units_fts, 0, '[', ']', '…', 12)
		FROM units_fts
		JOIN units u ON u.rowid = units_fts.rowid
		JOIN documents d ON d.id = u.document_id
		WHERE units_fts MATCH ?`
	args := []any{match}

	if source != "" {
		q += ` AND d.source = ?`
		args = append(args, source)
	}
	q += ` ORDER BY bm25(units_fts) LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r    Result
			ts   sql.NullString
			rank float64
		)
		if err := rows.Scan(
			&r.UnitID, &r.Seq, &r.Conversation, &r.Role, &ts, &r.Text,
			&r.Source, &r.Path, &r.Title, &rank, &r.Snippet,
		); err != nil {
			return nil, err
		}
		// bm25 is lower-is-better; negate so callers see higher-is-better.
		r.Score = -rank
		r.Timestamp = parseStoredTime(ts)
		results = append(results, r)
	}
	return results, rows.Err()
}

// rank applies the recency boost and the deterministic ordering:
// score descending, then source path, then unit sequence.
func (s *Store) rank(results []Result) {
	if s.recencyWindow > 0 {
		now := time.Now()
		for i := range results {
			if results[i].Timestamp.IsZero() {
				continue
			}
			age := now.Sub(results[i].Timestamp)
			if age >= 0 && age <= s.recencyWindow {
				results[i].Score += 0.2 * (1.0 - float64(age)/float64(s.recencyWindow))
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Path != results[j].Path {
			return results[i].Path < results[j].Path
		}
		return results[i].Seq < results[j].Seq
	})
}
