// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/agentvault/pkg/types"
)

// HTMLAdapter handles HTML chat exports. Export markup changes between
// product versions, so parsing is best-effort: strip the markup, keep
// the readable text, and split it into block-level segments.
type HTMLAdapter struct{}

// NewHTML creates the HTML chat export adapter.
func NewHTML() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Kind identifies the format this adapter handles.
func (a *HTMLAdapter) Kind() types.SourceKind { return types.KindHTML }

// Extensions lists the file extensions this adapter claims.
func (a *HTMLAdapter) Extensions() []string { return []string{".html", ".htm"} }

// Pre-compiled regular expressions for HTML stripping.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	blockOpen     = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brHrTags      = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Parse strips the markup and emits one unit per block-level segment.
// HTML exports carry no per-message author or timestamp metadata.
func (a *HTMLAdapter) Parse(path string, content []byte) (*Parsed, error) {
	if !utf8.Valid(content) {
		return nil, parseErrorf(path, "content is not valid UTF-8")
	}

	raw := string(content)
	title := extractHTMLTitle(raw, path)
	text := stripHTML(raw)
	if text == "" {
		return nil, parseErrorf(path, "no readable text content")
	}

	var units []RawUnit
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		units = append(units, RawUnit{Conversation: title, Text: block})
	}

	return &Parsed{Title: title, Units: units}, nil
}

// extractHTMLTitle takes the <title> tag or falls back to the filename.
func extractHTMLTitle(content, path string) string {
	if m := titleTag.FindStringSubmatch(content); len(m) > 1 {
		if title := strings.TrimSpace(html.UnescapeString(m[1])); title != "" {
			return title
		}
	}
	return titleFromFilename(path)
}

// stripHTML removes markup and returns readable text with block
// boundaries preserved as blank lines.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become paragraph breaks, inline breaks single newlines.
	content = blockOpen.ReplaceAllString(content, "\n\n")
	content = blockClose.ReplaceAllString(content, "\n\n")
	content = brHrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	// Trim lines, then collapse runs of blank lines to one paragraph break.
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	content = strings.Join(lines, "\n")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
