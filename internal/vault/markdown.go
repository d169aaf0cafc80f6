// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/agentvault/pkg/types"
)

// MarkdownAdapter handles Markdown thread exports and plain-text files.
// Markdown threads split into one unit per heading section; plain text
// becomes a single unit.
type MarkdownAdapter struct{}

// NewMarkdown creates the Markdown thread adapter.
func NewMarkdown() *MarkdownAdapter {
	return &MarkdownAdapter{}
}

// Kind identifies the format this adapter handles.
func (a *MarkdownAdapter) Kind() types.SourceKind { return types.KindMarkdown }

// Extensions lists the file extensions this adapter claims.
func (a *MarkdownAdapter) Extensions() []string { return []string{".md", ".markdown", ".txt"} }

var firstHeading = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// headingLine matches level-1 and level-2 headings, the segment
// boundaries of a thread export.
var headingLine = regexp.MustCompile(`^#{1,2}\s+`)

// Parse splits a Markdown thread on top-level headings. Each section,
// including a preamble before the first heading, becomes one unit.
// Thread exports carry no author or timestamp metadata.
func (a *MarkdownAdapter) Parse(path string, content []byte) (*Parsed, error) {
	if !utf8.Valid(content) {
		return nil, parseErrorf(path, "content is not valid UTF-8")
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return nil, parseErrorf(path, "file is empty")
	}

	title := titleFromFilename(path)
	if m := firstHeading.FindStringSubmatch(text); len(m) > 1 {
		title = strings.TrimSpace(m[1])
	}

	if lowerExt(path) == ".txt" {
		return &Parsed{
			Title: title,
			Units: []RawUnit{{Conversation: title, Text: text}},
		}, nil
	}

	var units []RawUnit
	for _, segment := range splitSections(text) {
		units = append(units, RawUnit{Conversation: title, Text: segment})
	}
	return &Parsed{Title: title, Units: units}, nil
}

// splitSections breaks Markdown into segments at level-1/2 headings.
// The heading line stays with its section body.
func splitSections(text string) []string {
	var sections []string
	var current []string

	flush := func() {
		section := strings.TrimSpace(strings.Join(current, "\n"))
		if section != "" {
			sections = append(sections, section)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if headingLine.MatchString(line) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return sections
}
