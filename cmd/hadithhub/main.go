// Command hadithhub manages a local library of hadith books: importing
// archives, batch downloading from a catalog, and searching the collection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/hadithhub12/hadith-hub/pkg/archive"
	"github.com/hadithhub12/hadith-hub/pkg/db"
	"github.com/hadithhub12/hadith-hub/pkg/download"
	"github.com/hadithhub12/hadith-hub/pkg/library"
	"github.com/hadithhub12/hadith-hub/pkg/prefs"
	"github.com/hadithhub12/hadith-hub/pkg/search"

	_ "github.com/mattn/go-sqlite3"
)

const version = "0.1.0"

// CLI defines the command-line interface for hadithhub.
var CLI struct {
	DB    string `name:"db" default:"hadithhub.db" help:"Path to SQLite database" type:"path"`
	Prefs string `name:"prefs" help:"Path to preferences file (default: alongside the database)" type:"path"`

	Import   ImportCmd   `cmd:"" help:"Import book archives from local files"`
	Download DownloadCmd `cmd:"" help:"Download book archives from a catalog and import them"`
	Search   SearchCmd   `cmd:"" help:"Search the library"`
	List     ListCmd     `cmd:"" help:"List books, or a book's volumes"`
	Show     ShowCmd     `cmd:"" help:"Print one page"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a book and its translations"`
	Clear    ClearCmd    `cmd:"" help:"Delete everything in the library"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// app carries the opened library and loaded preferences into commands.
type app struct {
	lib       *library.Library
	prefs     prefs.Prefs
	prefsPath string
}

// ImportCmd imports one or more archive files.
type ImportCmd struct {
	Archives []string `arg:"" help:"Archive files (zip, tar.gz, or tar.xz)" type:"existingfile"`
}

func (c *ImportCmd) Run(a *app) error {
	importer := archive.NewImporter(a.lib)
	failed := 0
	for _, path := range c.Archives {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("  [FAIL] %s: %v\n", path, err)
			failed++
			continue
		}
		m, err := importer.Import(data)
		switch {
		case errors.Is(err, archive.ErrAlreadyImported):
			fmt.Printf("  [OK]   %s: already imported, skipped\n", path)
		case err != nil:
			fmt.Printf("  [FAIL] %s: %v\n", path, err)
			failed++
		default:
			fmt.Printf("  [OK]   %s: %s (%d volumes)\n", path, m.Title, len(m.Volumes))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d archive(s) failed to import", failed)
	}
	return nil
}

// DownloadCmd fetches a catalog and imports the selected archives.
type DownloadCmd struct {
	Catalog     string   `required:"" help:"Catalog URL"`
	Book        []string `help:"Restrict to these book ids"`
	All         bool     `help:"Download every catalog entry"`
	Concurrency int      `default:"3" help:"Simultaneous downloads"`
}

func (c *DownloadCmd) Run(ctx context.Context, a *app) error {
	if !c.All && len(c.Book) == 0 {
		return fmt.Errorf("specify --book or --all")
	}

	client := download.NewClient()
	entries, err := client.Catalog(ctx, c.Catalog)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	if !c.All {
		want := make(map[string]bool, len(c.Book))
		for _, id := range c.Book {
			want[id] = true
		}
		var filtered []download.Download
		for _, e := range entries {
			if want[e.BookID] {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if len(entries) == 0 {
		fmt.Println("Nothing to download.")
		return nil
	}

	batch := &download.BatchImporter{
		Client:      client,
		Importer:    archive.NewImporter(a.lib),
		Concurrency: c.Concurrency,
		Logger:      log.New(os.Stderr, "", log.LstdFlags),
		OnProgress: func(completed, total int) {
			fmt.Printf("\rDownloading... (%d/%d)", completed, total)
		},
	}
	summary, err := batch.Run(ctx, entries)
	fmt.Println()
	fmt.Printf("Done: %d succeeded, %d failed, %d total\n",
		summary.Succeeded, summary.Failed, summary.Total)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d download(s) failed", summary.Failed)
	}
	return nil
}

// SearchCmd searches the library and prints matches grouped by book.
type SearchCmd struct {
	Query string   `arg:"" help:"Search text (Arabic, or Latin with --latin)"`
	Exact bool     `help:"Match the literal text instead of the normalized form"`
	Latin bool     `help:"Transliterate a Latin-script query to Arabic first"`
	Sect  string   `help:"Restrict by sect: shia or sunni"`
	Book  []string `help:"Restrict to these book ids"`
	Page  int      `default:"1" help:"Result page to display"`
	Save  bool     `help:"Save these search settings as defaults"`
}

func (c *SearchCmd) Run(ctx context.Context, a *app) error {
	req := search.Request{Query: c.Query, Books: c.Book}

	// Explicit flags win; saved preferences fill the gaps.
	mode := a.prefs.MatchMode
	if c.Exact {
		mode = "exact"
	}
	if mode == "exact" {
		req.Mode = search.MatchExact
	}

	script := a.prefs.Script
	if c.Latin {
		script = "latin"
	}
	if script == "latin" {
		req.Script = search.ScriptLatin
	}

	sectName := c.Sect
	if sectName == "" {
		sectName = a.prefs.Sect
	}
	if sectName != "" {
		sect, err := library.ParseSect(sectName)
		if err != nil {
			return err
		}
		req.Sect = sect
	}

	results, err := search.NewEngine(a.lib).SearchContext(ctx, req)
	if err != nil {
		return err
	}

	if c.Save {
		saved := prefs.Prefs{MatchMode: mode, Script: script, Sect: sectName}
		if err := prefs.Save(a.prefsPath, saved); err != nil {
			return err
		}
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	_, totalBooks := search.GroupByBook(results)
	pager := search.NewPager(results)
	pager.Seek(c.Page)
	groups, _ := search.GroupByBook(pager.Page())

	fmt.Printf("%d match(es) in %d book(s), page %d/%d\n\n",
		pager.Total(), totalBooks, pager.CurrentPage(), pager.TotalPages())
	for _, g := range groups {
		fmt.Printf("%s (%s)\n", g.BookTitle, g.BookID)
		for _, r := range g.Results {
			fmt.Printf("  v%d p%d: %s\n", r.Volume, r.Page, r.Snippet)
		}
		fmt.Println()
	}
	return nil
}

// ListCmd lists all books, or one book's volumes.
type ListCmd struct {
	Book string `help:"Book id to list volumes for"`
}

func (c *ListCmd) Run(a *app) error {
	if c.Book != "" {
		b, ok := a.lib.Book(c.Book)
		if !ok {
			return fmt.Errorf("book not found: %s", c.Book)
		}
		fmt.Printf("%s — %s (%d volumes)\n", b.ID, b.Title, b.VolumeCount)
		for _, v := range a.lib.Volumes(b.ID) {
			fmt.Printf("  volume %d: %d pages\n", v.Volume, v.TotalPages)
		}
		return nil
	}

	books := a.lib.Books()
	if len(books) == 0 {
		fmt.Println("Library is empty.")
		return nil
	}
	for _, b := range books {
		line := fmt.Sprintf("%s — %s (%d volumes)", b.ID, b.Title, b.VolumeCount)
		if b.Author != "" {
			line += ", " + b.Author
		}
		if b.SourceID != "" {
			line += fmt.Sprintf(" [translation of %s]", b.SourceID)
		}
		fmt.Println(line)
	}
	return nil
}

// ShowCmd prints one page's paragraphs.
type ShowCmd struct {
	Book   string `arg:"" help:"Book id"`
	Volume int    `arg:"" help:"Volume number"`
	Page   int    `arg:"" help:"Page number"`
}

func (c *ShowCmd) Run(a *app) error {
	p, ok := a.lib.Page(c.Book, c.Volume, c.Page)
	if !ok {
		return fmt.Errorf("page not found: %s v%d p%d", c.Book, c.Volume, c.Page)
	}
	for _, para := range library.DecodeParagraphs(p.Text) {
		if library.StartsLogicalUnit(para) {
			fmt.Println()
		}
		fmt.Println(para)
	}
	return nil
}

// DeleteCmd deletes a book along with any translations of it.
type DeleteCmd struct {
	ID string `arg:"" help:"Book id"`
}

func (c *DeleteCmd) Run(a *app) error {
	if _, ok := a.lib.Book(c.ID); !ok {
		return fmt.Errorf("book not found: %s", c.ID)
	}
	if err := a.lib.DeleteBook(c.ID); err != nil {
		return fmt.Errorf("delete %s: %w", c.ID, err)
	}
	fmt.Printf("Deleted %s\n", c.ID)
	return nil
}

// ClearCmd wipes the whole library.
type ClearCmd struct {
	Yes bool `required:"" help:"Confirm deleting every book"`
}

func (c *ClearCmd) Run(a *app) error {
	if err := a.lib.Clear(); err != nil {
		return fmt.Errorf("clear library: %w", err)
	}
	fmt.Println("Library cleared.")
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("hadithhub %s\n", version)
	return nil
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("hadithhub"),
		kong.Description("Local hadith library: import, download, and search."),
		kong.UsageOnError(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := db.Open(CLI.DB)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	lib, err := library.Open(conn)
	if err != nil {
		log.Fatalf("Failed to load library: %v", err)
	}

	prefsPath := CLI.Prefs
	if prefsPath == "" {
		prefsPath = filepath.Join(filepath.Dir(CLI.DB), "prefs.json")
	}
	p, err := prefs.Load(prefsPath)
	if err != nil {
		log.Printf("Warning: ignoring preferences: %v", err)
		p = prefs.Prefs{}
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&app{lib: lib, prefs: p, prefsPath: prefsPath})
	kctx.FatalIfErrorf(kctx.Run())
}
