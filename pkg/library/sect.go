package library

import (
	"fmt"
	"strings"
)

// Sect is the static classification of a book id, used to narrow search
// and browse scope.
type Sect int

const (
	SectAny Sect = iota
	SectShia
	SectSunni
)

// ParseSect maps a preference/flag string to a Sect. Empty means no filter.
func ParseSect(s string) (Sect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return SectAny, nil
	case "shia":
		return SectShia, nil
	case "sunni":
		return SectSunni, nil
	}
	return SectAny, fmt.Errorf("unknown sect %q", s)
}

func (s Sect) String() string {
	switch s {
	case SectShia:
		return "shia"
	case SectSunni:
		return "sunni"
	}
	return "any"
}

// sunniBooks is the fixed denylist overriding the default classification.
// Everything not listed here is treated as a Shia collection.
var sunniBooks = map[string]struct{}{
	"bukhari":     {},
	"muslim":      {},
	"tirmidhi":    {},
	"abudawud":    {},
	"nasai":       {},
	"ibnmajah":    {},
	"musnadahmad": {},
	"muwatta":     {},
}

// Classify returns the sect for a book id. Translation ids classify the
// same as their source.
func Classify(bookID string) Sect {
	id := strings.TrimSuffix(bookID, TranslationSuffix)
	if _, ok := sunniBooks[id]; ok {
		return SectSunni
	}
	return SectShia
}

// Matches reports whether a book id passes this sect filter.
func (s Sect) Matches(bookID string) bool {
	return s == SectAny || Classify(bookID) == s
}
