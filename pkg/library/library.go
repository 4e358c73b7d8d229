// Package library is the repository for the hadith corpus: it owns the
// durable SQLite handle and an in-memory mirror of every record. All reads
// (browsing, search) hit the mirror; every mutation writes the store first
// and the mirror second, so after a successful call the mirror is never
// behind disk.
package library

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/hadithhub12/hadith-hub/pkg/db"
)

// TranslationSuffix is the legacy id convention for translated books
// (e.g. "kafi_en"). New imports link translations through Book.SourceID;
// the suffix is still honored on cascade delete for corpora imported by
// older archives.
const TranslationSuffix = "_en"

// Library holds the full corpus in memory over a durable store.
type Library struct {
	conn *sql.DB

	mu      sync.RWMutex
	books   []db.Book
	volumes []db.Volume
	pages   []db.Page
}

// Open seeds the mirror from the store. Called once at process start; a
// load failure is fatal to the caller, never a silent partial corpus.
func Open(conn *sql.DB) (*Library, error) {
	books, volumes, pages, err := db.LoadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("seed mirror: %w", err)
	}
	return &Library{conn: conn, books: books, volumes: volumes, pages: pages}, nil
}

// Snapshot returns the current book and page slices. Mutations build fresh
// slices rather than editing shared backing arrays, so a snapshot stays
// valid while imports and deletes proceed.
func (l *Library) Snapshot() ([]db.Book, []db.Page) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.books, l.pages
}

// Books returns all books in id order.
func (l *Library) Books() []db.Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.books
}

// Book looks up one book by id.
func (l *Library) Book(id string) (db.Book, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, b := range l.books {
		if b.ID == id {
			return b, true
		}
	}
	return db.Book{}, false
}

// Volumes returns the volumes of one book in volume order.
func (l *Library) Volumes(bookID string) []db.Volume {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []db.Volume
	for _, v := range l.volumes {
		if v.BookID == bookID {
			out = append(out, v)
		}
	}
	return out
}

// Page looks up one page.
func (l *Library) Page(bookID string, volume, page int) (db.Page, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.pages {
		if p.BookID == bookID && p.Volume == volume && p.Page == page {
			return p, true
		}
	}
	return db.Page{}, false
}

// UpsertBook writes the book to the store, then the mirror.
func (l *Library) UpsertBook(b db.Book) error {
	if err := db.PutBook(l.conn, b); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	books := make([]db.Book, 0, len(l.books)+1)
	replaced := false
	for _, existing := range l.books {
		if existing.ID == b.ID {
			books = append(books, b)
			replaced = true
		} else {
			books = append(books, existing)
		}
	}
	if !replaced {
		books = append(books, b)
		sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	}
	l.books = books
	return nil
}

// ReplaceVolume swaps one volume's pages: transactional in the store, then
// mirrored. After it returns the mirror holds exactly the new page set for
// (book, volume) and no stale pages from a prior import.
func (l *Library) ReplaceVolume(v db.Volume, pages []db.Page) error {
	if err := db.ReplaceVolume(l.conn, v, pages); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	newPages := make([]db.Page, 0, len(l.pages)+len(pages))
	for _, p := range l.pages {
		if p.BookID == v.BookID && p.Volume == v.Volume {
			continue
		}
		newPages = append(newPages, p)
	}
	newPages = append(newPages, pages...)
	sortPages(newPages)
	l.pages = newPages

	newVolumes := make([]db.Volume, 0, len(l.volumes)+1)
	for _, existing := range l.volumes {
		if existing.BookID == v.BookID && existing.Volume == v.Volume {
			continue
		}
		newVolumes = append(newVolumes, existing)
	}
	newVolumes = append(newVolumes, v)
	sort.Slice(newVolumes, func(i, j int) bool {
		a, b := newVolumes[i], newVolumes[j]
		if a.BookID != b.BookID {
			return a.BookID < b.BookID
		}
		return a.Volume < b.Volume
	})
	l.volumes = newVolumes
	return nil
}

// DeleteBook removes a book, its volumes and pages, and cascades to its
// translations: any book whose SourceID names it, plus the legacy
// suffix-convention id.
func (l *Library) DeleteBook(id string) error {
	ids := []string{id}
	l.mu.RLock()
	for _, b := range l.books {
		if b.SourceID == id && b.ID != id {
			ids = append(ids, b.ID)
		}
	}
	l.mu.RUnlock()

	legacy := id + TranslationSuffix
	if !contains(ids, legacy) {
		ids = append(ids, legacy)
	}

	for _, target := range ids {
		if err := db.DeleteBook(l.conn, target); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, target := range ids {
		drop[target] = struct{}{}
	}

	books := make([]db.Book, 0, len(l.books))
	for _, b := range l.books {
		if _, gone := drop[b.ID]; !gone {
			books = append(books, b)
		}
	}
	volumes := make([]db.Volume, 0, len(l.volumes))
	for _, v := range l.volumes {
		if _, gone := drop[v.BookID]; !gone {
			volumes = append(volumes, v)
		}
	}
	pages := make([]db.Page, 0, len(l.pages))
	for _, p := range l.pages {
		if _, gone := drop[p.BookID]; !gone {
			pages = append(pages, p)
		}
	}
	l.books, l.volumes, l.pages = books, volumes, pages
	return nil
}

// Clear empties the store and the mirror.
func (l *Library) Clear() error {
	if err := db.ClearAll(l.conn); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books, l.volumes, l.pages = nil, nil, nil
	return nil
}

// ArchiveMark reads the stored archive digest for a book.
func (l *Library) ArchiveMark(bookID string) (string, error) {
	return db.ArchiveMark(l.conn, bookID)
}

// SetArchiveMark records the archive digest a book was imported from.
func (l *Library) SetArchiveMark(bookID, digest string) error {
	return db.SetArchiveMark(l.conn, bookID, digest)
}

func sortPages(pages []db.Page) {
	sort.Slice(pages, func(i, j int) bool {
		a, b := pages[i], pages[j]
		if a.BookID != b.BookID {
			return a.BookID < b.BookID
		}
		if a.Volume != b.Volume {
			return a.Volume < b.Volume
		}
		return a.Page < b.Page
	})
}

func contains(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}
