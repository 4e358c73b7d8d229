package search

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hadithhub12/hadith-hub/pkg/db"
	"github.com/hadithhub12/hadith-hub/pkg/library"
)

func setupEngine(t *testing.T) (*Engine, *library.Library) {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if err := db.InitDB(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	lib, err := library.Open(conn)
	if err != nil {
		t.Fatalf("open library: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewEngine(lib), lib
}

func addPage(t *testing.T, lib *library.Library, bookID string, volume, page int, paragraphs []string) {
	t.Helper()
	text, err := library.EncodeParagraphs(paragraphs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := lib.ReplaceVolume(db.Volume{BookID: bookID, Volume: volume, TotalPages: page},
		[]db.Page{{BookID: bookID, Volume: volume, Page: page, Text: text}}); err != nil {
		t.Fatalf("replace volume: %v", err)
	}
}

func addBook(t *testing.T, lib *library.Library, id, title string) {
	t.Helper()
	if err := lib.UpsertBook(db.Book{ID: id, Title: title, VolumeCount: 1}); err != nil {
		t.Fatalf("upsert book: %v", err)
	}
}

func TestSearchScenario(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "كتاب الاول")
	text1, _ := library.EncodeParagraphs([]string{"بسم الله", "العلم نور"})
	text2, _ := library.EncodeParagraphs([]string{"لا اله الا الله"})
	if err := lib.ReplaceVolume(db.Volume{BookID: "b1", Volume: 1, TotalPages: 2}, []db.Page{
		{BookID: "b1", Volume: 1, Page: 1, Text: text1},
		{BookID: "b1", Volume: 1, Page: 2, Text: text2},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	results, err := engine.Search(Request{Query: "علم", Mode: MatchRoot})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %+v", len(results), results)
	}
	r := results[0]
	if r.BookID != "b1" || r.Page != 1 || r.Volume != 1 {
		t.Fatalf("wrong location: %+v", r)
	}
	if r.BookTitle != "كتاب الاول" {
		t.Fatalf("title not resolved from mirror: %+v", r)
	}
	if !strings.Contains(r.Snippet, "العلم نور") {
		t.Fatalf("snippet %q does not contain matched context", r.Snippet)
	}

	empty, err := engine.Search(Request{Query: "xyz", Mode: MatchRoot})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no results for xyz, got %+v", empty)
	}
}

func TestRootMatchesThroughDiacriticsExactDoesNot(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t")
	addPage(t, lib, "b1", 1, 1, []string{"العِلْمُ نُورٌ"})

	root, err := engine.Search(Request{Query: "العلم", Mode: MatchRoot})
	if err != nil {
		t.Fatalf("root search: %v", err)
	}
	if len(root) != 1 {
		t.Fatalf("root mode: expected 1 result, got %d", len(root))
	}

	exact, err := engine.Search(Request{Query: "العلم", Mode: MatchExact})
	if err != nil {
		t.Fatalf("exact search: %v", err)
	}
	if len(exact) != 0 {
		t.Fatalf("exact mode must not match through diacritics, got %+v", exact)
	}
}

func TestExactMatchesLiteralText(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t")
	addPage(t, lib, "b1", 1, 1, []string{"العِلْمُ نُورٌ"})

	exact, err := engine.Search(Request{Query: "العِلْمُ", Mode: MatchExact})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(exact) != 1 {
		t.Fatalf("expected literal match, got %d", len(exact))
	}
}

func TestLatinQueryTransliterated(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t")
	addPage(t, lib, "b1", 1, 1, []string{"العلم نور"})

	results, err := engine.Search(Request{Query: "ilm", Mode: MatchRoot, Script: ScriptLatin})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected romanized query to match, got %d results", len(results))
	}
}

func TestMatchCapPerPage(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t")
	words := make([]string, 10)
	for i := range words {
		words[i] = "علم"
	}
	addPage(t, lib, "b1", 1, 1, []string{strings.Join(words, " ")})

	results, err := engine.Search(Request{Query: "علم", Mode: MatchRoot})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != MaxMatchesPerPage {
		t.Fatalf("expected %d results for a 10-occurrence page, got %d", MaxMatchesPerPage, len(results))
	}
	for i, r := range results {
		if r.MatchIndex != i {
			t.Fatalf("match index %d at position %d", r.MatchIndex, i)
		}
	}
}

func TestSnippetWindowAndEllipsis(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t")
	long := strings.Repeat("كلمه ", 40) + "المطلوب " + strings.Repeat("كلمه ", 40)
	addPage(t, lib, "b1", 1, 1, []string{long})

	results, err := engine.Search(Request{Query: "المطلوب", Mode: MatchRoot})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	snip := results[0].Snippet
	if !strings.HasPrefix(snip, "…") || !strings.HasSuffix(snip, "…") {
		t.Fatalf("expected ellipsis on both sides, got %q", snip)
	}
	if !strings.Contains(snip, "المطلوب") {
		t.Fatalf("snippet lost the match: %q", snip)
	}
	// ±50 runes plus the needle and two markers.
	if n := len([]rune(snip)); n > 2*SnippetRadius+len([]rune("المطلوب"))+2 {
		t.Fatalf("snippet too long: %d runes", n)
	}
}

func TestSectFilterPrefilters(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "kafi", "الكافي")
	addBook(t, lib, "bukhari", "صحيح البخاري")
	addPage(t, lib, "kafi", 1, 1, []string{"العلم نور"})
	addPage(t, lib, "bukhari", 1, 1, []string{"العلم نور"})

	results, err := engine.Search(Request{Query: "علم", Mode: MatchRoot, Sect: library.SectShia})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].BookID != "kafi" {
		t.Fatalf("sect filter failed: %+v", results)
	}
}

func TestBookSubsetFilter(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t1")
	addBook(t, lib, "b2", "t2")
	addPage(t, lib, "b1", 1, 1, []string{"العلم نور"})
	addPage(t, lib, "b2", 1, 1, []string{"العلم نور"})

	results, err := engine.Search(Request{Query: "علم", Mode: MatchRoot, Books: []string{"b2"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].BookID != "b2" {
		t.Fatalf("subset filter failed: %+v", results)
	}
}

func TestResultsInStableScanOrder(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "a", "t")
	addBook(t, lib, "b", "t")
	text, _ := library.EncodeParagraphs([]string{"العلم نور"})
	if err := lib.ReplaceVolume(db.Volume{BookID: "b", Volume: 1, TotalPages: 2}, []db.Page{
		{BookID: "b", Volume: 1, Page: 1, Text: text},
		{BookID: "b", Volume: 1, Page: 2, Text: text},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	addPage(t, lib, "a", 1, 1, []string{"العلم نور"})

	results, err := engine.Search(Request{Query: "علم", Mode: MatchRoot})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	order := []struct {
		book string
		page int
	}{{"a", 1}, {"b", 1}, {"b", 2}}
	for i, w := range order {
		if results[i].BookID != w.book || results[i].Page != w.page {
			t.Fatalf("position %d: got %s/%d, want %s/%d", i, results[i].BookID, results[i].Page, w.book, w.page)
		}
	}
}

func TestEmptyQueryReturnsNothing(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t")
	addPage(t, lib, "b1", 1, 1, []string{"العلم نور"})

	results, err := engine.Search(Request{Query: "   ", Mode: MatchRoot})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected nothing for blank query, got %+v", results)
	}
}

func TestSearchContextCancellation(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t")
	addPage(t, lib, "b1", 1, 1, []string{"العلم نور"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.SearchContext(ctx, Request{Query: "علم", Mode: MatchRoot}); err == nil {
		t.Fatal("expected context error from canceled search")
	}
}

func TestMalformedPageTextSearchedVerbatim(t *testing.T) {
	engine, lib := setupEngine(t)
	addBook(t, lib, "b1", "t")
	// Raw text that is not a JSON paragraph list.
	if err := lib.ReplaceVolume(db.Volume{BookID: "b1", Volume: 1, TotalPages: 1},
		[]db.Page{{BookID: "b1", Volume: 1, Page: 1, Text: "العلم نور بلا ترميز"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	results, err := engine.Search(Request{Query: "علم", Mode: MatchRoot})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected raw text to be searchable, got %d results", len(results))
	}
}
