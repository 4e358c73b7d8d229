package search

const (
	// MaxGroups caps how many book groups a single query displays. The
	// true group count is still reported alongside.
	MaxGroups = 50
	// PageSize is the flat result-list pagination unit for scroll views.
	PageSize = 20
)

// Group collects one book's results for collapsed-by-default display.
type Group struct {
	BookID    string
	BookTitle string
	Results   []Result
}

// GroupByBook groups results by book id in first-seen order, capped at
// MaxGroups. The second return is the true group count before capping.
func GroupByBook(results []Result) ([]Group, int) {
	index := make(map[string]int)
	var groups []Group
	for _, r := range results {
		i, ok := index[r.BookID]
		if !ok {
			i = len(groups)
			index[r.BookID] = i
			groups = append(groups, Group{BookID: r.BookID, BookTitle: r.BookTitle})
		}
		groups[i].Results = append(groups[i].Results, r)
	}
	total := len(groups)
	if total > MaxGroups {
		groups = groups[:MaxGroups]
	}
	return groups, total
}

// Pager walks a flat result list PageSize entries at a time. Reset (a new
// query) always lands back on page 1.
type Pager struct {
	results []Result
	page    int // 1-based
}

// NewPager starts at page 1 over the given results.
func NewPager(results []Result) *Pager {
	return &Pager{results: results, page: 1}
}

// Reset replaces the result set and returns to page 1.
func (p *Pager) Reset(results []Result) {
	p.results = results
	p.page = 1
}

// Total is the true result count across all pages.
func (p *Pager) Total() int { return len(p.results) }

// CurrentPage is the 1-based page index.
func (p *Pager) CurrentPage() int { return p.page }

// TotalPages is the number of pages; an empty result set has one empty page.
func (p *Pager) TotalPages() int {
	if len(p.results) == 0 {
		return 1
	}
	return (len(p.results) + PageSize - 1) / PageSize
}

// Page returns the current page's slice of results.
func (p *Pager) Page() []Result {
	lo := (p.page - 1) * PageSize
	if lo >= len(p.results) {
		return nil
	}
	hi := lo + PageSize
	if hi > len(p.results) {
		hi = len(p.results)
	}
	return p.results[lo:hi]
}

// Next advances one page; it reports whether the page changed.
func (p *Pager) Next() bool {
	if p.page >= p.TotalPages() {
		return false
	}
	p.page++
	return true
}

// Prev steps back one page; it reports whether the page changed.
func (p *Pager) Prev() bool {
	if p.page <= 1 {
		return false
	}
	p.page--
	return true
}

// Seek jumps to a page, clamped to the valid range.
func (p *Pager) Seek(page int) {
	if page < 1 {
		page = 1
	}
	if max := p.TotalPages(); page > max {
		page = max
	}
	p.page = page
}
