package search

import (
	"fmt"
	"testing"
)

func resultsForBooks(perBook int, bookIDs ...string) []Result {
	var out []Result
	for _, id := range bookIDs {
		for i := 0; i < perBook; i++ {
			out = append(out, Result{BookID: id, BookTitle: "title " + id, Page: i + 1})
		}
	}
	return out
}

func TestGroupByBookKeepsScanOrder(t *testing.T) {
	results := resultsForBooks(2, "z", "a", "m")
	groups, total := GroupByBook(results)
	if total != 3 {
		t.Fatalf("expected 3 groups, got %d", total)
	}
	order := []string{"z", "a", "m"}
	for i, want := range order {
		if groups[i].BookID != want {
			t.Fatalf("group %d = %s, want %s (first-seen order, not sorted)", i, groups[i].BookID, want)
		}
		if len(groups[i].Results) != 2 {
			t.Fatalf("group %s has %d results", want, len(groups[i].Results))
		}
	}
}

func TestGroupByBookCapsDisplayedGroups(t *testing.T) {
	ids := make([]string, MaxGroups+10)
	for i := range ids {
		ids[i] = fmt.Sprintf("b%03d", i)
	}
	groups, total := GroupByBook(resultsForBooks(1, ids...))
	if total != MaxGroups+10 {
		t.Fatalf("true total must be reported: got %d", total)
	}
	if len(groups) != MaxGroups {
		t.Fatalf("displayed groups must be capped at %d, got %d", MaxGroups, len(groups))
	}
}

func TestPagerPagination(t *testing.T) {
	results := resultsForBooks(PageSize*2+5, "b1")
	p := NewPager(results)

	if p.CurrentPage() != 1 {
		t.Fatalf("new pager must start at page 1, got %d", p.CurrentPage())
	}
	if p.TotalPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", p.TotalPages())
	}
	if got := len(p.Page()); got != PageSize {
		t.Fatalf("page 1 size %d", got)
	}
	if !p.Next() || !p.Next() {
		t.Fatal("expected two forward steps")
	}
	if got := len(p.Page()); got != 5 {
		t.Fatalf("last page size %d, want 5", got)
	}
	if p.Next() {
		t.Fatal("must not advance past the last page")
	}
	if !p.Prev() {
		t.Fatal("expected a backward step")
	}
	if p.CurrentPage() != 2 {
		t.Fatalf("page after prev = %d", p.CurrentPage())
	}
}

func TestPagerResetReturnsToPageOne(t *testing.T) {
	p := NewPager(resultsForBooks(PageSize*3, "b1"))
	p.Seek(3)
	p.Reset(resultsForBooks(PageSize, "b2"))
	if p.CurrentPage() != 1 {
		t.Fatalf("reset must land on page 1, got %d", p.CurrentPage())
	}
	if p.Total() != PageSize {
		t.Fatalf("total after reset = %d", p.Total())
	}
}

func TestPagerEmpty(t *testing.T) {
	p := NewPager(nil)
	if p.TotalPages() != 1 || p.CurrentPage() != 1 {
		t.Fatalf("empty pager: %d pages, current %d", p.TotalPages(), p.CurrentPage())
	}
	if got := p.Page(); len(got) != 0 {
		t.Fatalf("empty pager returned %d results", len(got))
	}
	if p.Next() {
		t.Fatal("empty pager must not advance")
	}
}

func TestPagerSeekClamps(t *testing.T) {
	p := NewPager(resultsForBooks(PageSize+1, "b1"))
	p.Seek(99)
	if p.CurrentPage() != 2 {
		t.Fatalf("seek past end must clamp to 2, got %d", p.CurrentPage())
	}
	p.Seek(-1)
	if p.CurrentPage() != 1 {
		t.Fatalf("seek before start must clamp to 1, got %d", p.CurrentPage())
	}
}
