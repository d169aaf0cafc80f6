// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var (
	mdLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdImage     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	markupChars = regexp.MustCompile("[#*_>`~|]")
)

// NormalizeText produces the indexable projection of a unit's raw text:
// lowercased, markup stripped, whitespace collapsed to single spaces.
func NormalizeText(s string) string {
	s = mdImage.ReplaceAllString(s, " ")
	s = mdLink.ReplaceAllString(s, "$1")
	s = markupChars.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// UnitID derives the stable unit identifier from the document identity
// and the unit's sequence index. The same (source, path, seq) always
// yields the same id, so re-ingesting unchanged content is
// id-preserving.
func UnitID(source, path string, seq int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d", source, path, seq)))
	return hex.EncodeToString(h[:8])
}

// ContentHash is the hex sha256 of a file's raw bytes.
func ContentHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
