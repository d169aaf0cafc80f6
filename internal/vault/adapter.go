// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault parses heterogeneous chat-export files into ordered
// conversation units. Each export format has an Adapter; adapters share
// a single capability: extract ordered text units with optional
// author/timestamp metadata. Missing metadata degrades ranking quality,
// never parsing.
package vault

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/agentvault/pkg/types"
)

// RawUnit is one message or thread segment as extracted by an adapter,
// before normalization and identifier assignment.
type RawUnit struct {
	// Conversation labels the conversation or thread the unit belongs to.
	Conversation string

	// Role is the author role when the export carries one.
	Role string

	// Timestamp is the message time when the export carries one.
	Timestamp time.Time

	// Text is the raw extracted text. Always non-empty.
	Text string
}

// Parsed is the result of running an adapter over one export file.
type Parsed struct {
	// Title is the document-level title.
	Title string

	// Units holds the ordered extracted units.
	Units []RawUnit
}

// Adapter extracts ordered units from one export format. Each adapter
// handles a fixed set of file extensions; selection is by declared
// extension, not content sniffing.
type Adapter interface {
	// Kind identifies the format this adapter handles.
	Kind() types.SourceKind

	// Extensions lists the lowercase file extensions (with dot) this
	// adapter claims.
	Extensions() []string

	// Parse extracts ordered units from the file contents. Malformed
	// structure, unsupported variants, and encoding failures return a
	// *ParseError.
	Parse(path string, content []byte) (*Parsed, error)
}

// ParseError reports a bad input file. Parse errors are recoverable:
// ingestion skips the file, logs the failure, and continues the batch.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(path, format string, args ...any) error {
	return &ParseError{Path: path, Err: fmt.Errorf(format, args...)}
}

// Adapters returns all registered format adapters.
func Adapters() []Adapter {
	return []Adapter{
		NewHTML(),
		NewChatJSON(),
		NewMarkdown(),
	}
}

// ForPath returns the adapter claiming the file's extension, or nil
// when the extension is unsupported.
func ForPath(path string) Adapter {
	ext := lowerExt(path)
	for _, a := range Adapters() {
		for _, e := range a.Extensions() {
			if e == ext {
				return a
			}
		}
	}
	return nil
}

func lowerExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// titleFromFilename derives a readable title from a file path: the base
// name without extension, with underscores and hyphens spaced out.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
