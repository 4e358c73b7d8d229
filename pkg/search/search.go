// Package search scans the library mirror for substring matches, builds
// snippets around each hit, and shapes results for display (grouping,
// pagination, a small query cache, and an async runner).
package search

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hadithhub12/hadith-hub/pkg/arabic"
	"github.com/hadithhub12/hadith-hub/pkg/db"
	"github.com/hadithhub12/hadith-hub/pkg/library"
)

const (
	// MaxMatchesPerPage caps how many results a single page contributes,
	// so one page cannot dominate a query.
	MaxMatchesPerPage = 3
	// SnippetRadius is the number of original-text runes kept on each
	// side of a match.
	SnippetRadius = 50
)

// MatchMode selects how query and page text are compared.
type MatchMode int

const (
	// MatchRoot normalizes both sides: diacritics and letter variants
	// are ignored.
	MatchRoot MatchMode = iota
	// MatchExact requires a literal substring match.
	MatchExact
)

func (m MatchMode) String() string {
	if m == MatchExact {
		return "exact"
	}
	return "root"
}

// Script declares which script the query was typed in.
type Script int

const (
	ScriptArabic Script = iota
	ScriptLatin
)

// Request is one search invocation.
type Request struct {
	Query  string
	Mode   MatchMode
	Script Script
	Sect   library.Sect
	Books  []string // non-empty restricts the scan to these book ids
}

// Result is a single match on a single page.
type Result struct {
	BookID     string
	BookTitle  string
	Volume     int
	Page       int
	Snippet    string
	MatchIndex int // ordinal of this match within its page, 0-based
}

// Engine runs searches over a Library.
type Engine struct {
	lib   *library.Library
	cache *queryCache
}

// NewEngine creates an engine with the default query cache.
func NewEngine(lib *library.Library) *Engine {
	return &Engine{lib: lib, cache: newQueryCache(CacheSize, CacheTTL)}
}

// Search runs the scan inline. See SearchContext.
func (e *Engine) Search(req Request) ([]Result, error) {
	return e.SearchContext(context.Background(), req)
}

// SearchContext resolves the query (transliteration, normalization),
// consults the cache, and otherwise scans a mirror snapshot page by page
// in stable order. No relevance ranking: results appear in scan order.
func (e *Engine) SearchContext(ctx context.Context, req Request) ([]Result, error) {
	needle := req.Query
	if req.Script == ScriptLatin {
		needle = arabic.Transliterate(needle)
	}
	if req.Mode == MatchRoot {
		needle = arabic.Normalize(needle)
	}
	if strings.TrimSpace(needle) == "" {
		return nil, nil
	}

	key := cacheKey(req, needle)
	if cached, ok := e.cache.get(key); ok {
		return cached, nil
	}

	books, pages := e.lib.Snapshot()
	titles := make(map[string]string, len(books))
	for _, b := range books {
		titles[b.ID] = b.Title
	}

	var subset map[string]struct{}
	if len(req.Books) > 0 {
		subset = make(map[string]struct{}, len(req.Books))
		for _, id := range req.Books {
			subset[id] = struct{}{}
		}
	}

	var results []Result
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Filtering is a pre-pass: skip before any text work.
		if !req.Sect.Matches(p.BookID) {
			continue
		}
		if subset != nil {
			if _, ok := subset[p.BookID]; !ok {
				continue
			}
		}
		results = append(results, matchPage(p, needle, req.Mode, titles[p.BookID])...)
	}

	e.cache.put(key, results)
	return results, nil
}

// matchPage finds up to MaxMatchesPerPage occurrences of needle in one
// page and builds a snippet from the original (non-normalized) text for
// each.
func matchPage(p db.Page, needle string, mode MatchMode, title string) []Result {
	flat := library.FlattenText(p.Text)

	hay := flat
	var idx []int
	if mode == MatchRoot {
		hay, idx = arabic.NormalizeIndexed(flat)
	}

	origRunes := []rune(flat)
	needleRunes := utf8.RuneCountInString(needle)

	var out []Result
	offset := 0
	for len(out) < MaxMatchesPerPage {
		i := strings.Index(hay[offset:], needle)
		if i < 0 {
			break
		}
		matchStart := offset + i
		runeStart := utf8.RuneCountInString(hay[:matchStart])

		var origStart, origEnd int
		if mode == MatchRoot {
			origStart = idx[runeStart]
			origEnd = idx[runeStart+needleRunes-1] + 1
		} else {
			origStart = runeStart
			origEnd = runeStart + needleRunes
		}

		out = append(out, Result{
			BookID:     p.BookID,
			BookTitle:  title,
			Volume:     p.Volume,
			Page:       p.Page,
			Snippet:    snippet(origRunes, origStart, origEnd),
			MatchIndex: len(out),
		})
		offset = matchStart + len(needle)
	}
	return out
}

// snippet windows the original text SnippetRadius runes around the match,
// with ellipsis markers where it was truncated.
func snippet(runes []rune, start, end int) string {
	lo := start - SnippetRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + SnippetRadius
	if hi > len(runes) {
		hi = len(runes)
	}
	var b strings.Builder
	if lo > 0 {
		b.WriteString("…")
	}
	b.WriteString(string(runes[lo:hi]))
	if hi < len(runes) {
		b.WriteString("…")
	}
	return b.String()
}

// cacheKey canonicalizes a request. The needle already reflects script and
// mode processing, so Latin and Arabic spellings of the same query share an
// entry.
func cacheKey(req Request, needle string) string {
	books := append([]string(nil), req.Books...)
	sort.Strings(books)
	return req.Mode.String() + "|" + req.Sect.String() + "|" + strings.Join(books, ",") + "|" + needle
}
