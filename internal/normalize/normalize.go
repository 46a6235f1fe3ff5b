// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

//nolint:gochecknoglobals // Caser values are immutable and safe for concurrent use
var foldCaser = cases.Fold()

// TagName returns the canonical form of a tag name: trimmed, unicode
// NFKC-normalized, case-folded, with interior whitespace collapsed to
// single spaces. Two names that differ only in case or composition map
// to the same canonical name, which is what the tags table's unique
// constraint is declared over.
func TagName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = norm.NFKC.String(name)
	name = foldCaser.String(name)
	return strings.Join(strings.Fields(name), " ")
}

// SearchTerm lowercases and trims a free-text query for case-insensitive
// substring matching.
func SearchTerm(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
