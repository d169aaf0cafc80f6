// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the agentvault pipeline.
package types

import "time"

// SourceKind identifies the export format of a vault file.
type SourceKind string

const (
	KindHTML     SourceKind = "html"
	KindChatJSON SourceKind = "chatjson"
	KindMarkdown SourceKind = "markdown"
	KindText     SourceKind = "text"
)

// SourceDocument is one exported artifact in the vault: a single HTML,
// JSON, Markdown, or text file under a per-origin subfolder. Documents
// are identified by (Source, Path); re-ingestion replaces all units
// belonging to the document when the content hash changes.
type SourceDocument struct {
	// Source is the origin subfolder name, e.g. "chatgpt" or "perplexity".
	Source string `json:"source" yaml:"source"`

	// Path is the document's path within the vault.
	Path string `json:"path" yaml:"path"`

	// Title is a human-readable label: the first heading, the <title>
	// tag, the conversation title, or a filename fallback.
	Title string `json:"title" yaml:"title"`

	// Kind is the declared export format.
	Kind SourceKind `json:"kind" yaml:"kind"`

	// SHA256 is the hex digest of the raw file contents. Re-running
	// ingestion against an unchanged digest is a no-op.
	SHA256 string `json:"sha256" yaml:"sha256"`

	// ModTime is the file modification time observed at scan time.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`

	// IngestedAt records when the document was last (re)indexed.
	IngestedAt time.Time `json:"ingested_at" yaml:"ingested_at"`
}

// ConversationUnit is the smallest indexable piece of a conversation: a
// message or thread segment extracted from a SourceDocument. Units are
// owned exclusively by their document and are rebuilt whenever the
// document is re-ingested.
type ConversationUnit struct {
	// ID is a stable identifier derived from the document identity and
	// the unit's sequence index. It is consistent across re-ingestions
	// of unchanged content.
	ID string `json:"id" yaml:"id"`

	// Source and Path identify the owning SourceDocument.
	Source string `json:"source" yaml:"source"`
	Path   string `json:"path" yaml:"path"`

	// Seq is the unit's position within the document, starting at 0.
	Seq int `json:"seq" yaml:"seq"`

	// Conversation labels the conversation or thread the unit belongs
	// to. For single-conversation documents this matches the title.
	Conversation string `json:"conversation" yaml:"conversation"`

	// Role is the message author role ("user", "assistant", ...) when
	// the export carries one. Empty when unknown.
	Role string `json:"role,omitempty" yaml:"role,omitempty"`

	// Timestamp is the message time when the export carries one. The
	// zero value means unknown; absence degrades ranking, not parsing.
	Timestamp time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`

	// Text is the unit's raw extracted text.
	Text string `json:"text" yaml:"text"`

	// Normalized is the lowercased, whitespace-collapsed, markup-free
	// projection of Text that the full-text index is built over.
	Normalized string `json:"normalized" yaml:"normalized"`
}
