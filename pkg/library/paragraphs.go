package library

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Page text is stored as a JSON array of paragraph strings.

// EncodeParagraphs serializes a paragraph list for storage.
func EncodeParagraphs(paragraphs []string) (string, error) {
	data, err := json.Marshal(paragraphs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeParagraphs parses stored page text. Malformed text is not an
// error: the raw string is returned as a single paragraph so display and
// search keep working on whatever was stored.
func DecodeParagraphs(text string) []string {
	var paragraphs []string
	if err := json.Unmarshal([]byte(text), &paragraphs); err != nil {
		return []string{text}
	}
	return paragraphs
}

// FlattenText joins a page's paragraphs with spaces for searching.
func FlattenText(text string) string {
	return strings.Join(DecodeParagraphs(text), " ")
}

// A paragraph opening with "number + dash" starts a new logical unit
// (a numbered hadith). Display-only; search ignores unit boundaries.
var logicalUnitRe = regexp.MustCompile(`^\s*[0-9٠-٩]+\s*[-–ـ]`)

// StartsLogicalUnit reports whether the paragraph begins a numbered unit.
func StartsLogicalUnit(paragraph string) bool {
	return logicalUnitRe.MatchString(paragraph)
}
