package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// LoadAll reads the full corpus in one pass, ordered by (book_id, volume,
// page) so callers get a stable scan order. Any storage error is returned
// wrapped; no partial data is handed back.
func LoadAll(db DBExecutor) ([]Book, []Volume, []Page, error) {
	books, err := loadBooks(db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load books: %w", err)
	}
	volumes, err := loadVolumes(db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load volumes: %w", err)
	}
	pages, err := loadPages(db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load pages: %w", err)
	}
	return books, volumes, pages, nil
}

func loadBooks(db DBExecutor) ([]Book, error) {
	rows, err := db.Query(`SELECT id, title, author, source_id, volume_count, imported_at FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Book
	for rows.Next() {
		var b Book
		var imported sql.NullTime
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.SourceID, &b.VolumeCount, &imported); err != nil {
			return nil, err
		}
		if imported.Valid {
			t := imported.Time
			b.ImportedAt = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func loadVolumes(db DBExecutor) ([]Volume, error) {
	rows, err := db.Query(`SELECT book_id, volume, total_pages, imported_at FROM volumes ORDER BY book_id, volume`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Volume
	for rows.Next() {
		var v Volume
		var imported sql.NullTime
		if err := rows.Scan(&v.BookID, &v.Volume, &v.TotalPages, &imported); err != nil {
			return nil, err
		}
		if imported.Valid {
			t := imported.Time
			v.ImportedAt = &t
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func loadPages(db DBExecutor) ([]Page, error) {
	rows, err := db.Query(`SELECT book_id, volume, page, text FROM pages ORDER BY book_id, volume, page`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.BookID, &p.Volume, &p.Page, &p.Text); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PutBook upserts a book record.
func PutBook(db DBExecutor, b Book) error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("book id must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO books (id, title, author, source_id, volume_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  author = excluded.author,
		  source_id = excluded.source_id,
		  volume_count = excluded.volume_count,
		  imported_at = excluded.imported_at`,
		b.ID, b.Title, b.Author, b.SourceID, b.VolumeCount, nullableTime(b.ImportedAt))
	if err != nil {
		return fmt.Errorf("upsert book %s: %w", b.ID, err)
	}
	return nil
}

// PutVolume upserts a volume record.
func PutVolume(db DBExecutor, v Volume) error {
	if v.Volume < 1 {
		return fmt.Errorf("volume number must be >= 1, got %d", v.Volume)
	}
	_, err := db.Exec(`INSERT INTO volumes (book_id, volume, total_pages, imported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(book_id, volume) DO UPDATE SET
		  total_pages = excluded.total_pages,
		  imported_at = excluded.imported_at`,
		v.BookID, v.Volume, v.TotalPages, nullableTime(v.ImportedAt))
	if err != nil {
		return fmt.Errorf("upsert volume %s/%d: %w", v.BookID, v.Volume, err)
	}
	return nil
}

// PutPages bulk-upserts pages. Pass a *sql.Tx to make the batch atomic;
// ReplaceVolume does that for the delete-then-insert sequence.
func PutPages(db DBExecutor, pages []Page) error {
	for _, p := range pages {
		if _, err := db.Exec(`INSERT INTO pages (book_id, volume, page, text)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(book_id, volume, page) DO UPDATE SET text = excluded.text`,
			p.BookID, p.Volume, p.Page, p.Text); err != nil {
			return fmt.Errorf("upsert page %s/%d/%d: %w", p.BookID, p.Volume, p.Page, err)
		}
	}
	return nil
}

// DeletePagesFor removes every page of one volume.
func DeletePagesFor(db DBExecutor, bookID string, volume int) error {
	if _, err := db.Exec(`DELETE FROM pages WHERE book_id = ? AND volume = ?`, bookID, volume); err != nil {
		return fmt.Errorf("delete pages %s/%d: %w", bookID, volume, err)
	}
	return nil
}

// ReplaceVolume swaps one volume's pages and upserts the volume record in a
// single transaction. A subsequent LoadAll sees either the old pages or the
// new ones, never a mix. A crash between statements is rolled back by
// SQLite; crash-atomicity across separate ReplaceVolume calls is not
// guaranteed and is accepted.
func ReplaceVolume(conn *sql.DB, v Volume, pages []Page) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin replace volume: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	if err := DeletePagesFor(tx, v.BookID, v.Volume); err != nil {
		return err
	}
	if err := PutPages(tx, pages); err != nil {
		return err
	}
	if err := PutVolume(tx, v); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace volume %s/%d: %w", v.BookID, v.Volume, err)
	}
	return nil
}

// DeleteBook removes one book and everything keyed under it, in one
// transaction. Translation cascade lives in pkg/library, which knows the
// source linkage.
func DeleteBook(conn *sql.DB, bookID string) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin delete book: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, q := range []string{
		`DELETE FROM pages WHERE book_id = ?`,
		`DELETE FROM volumes WHERE book_id = ?`,
		`DELETE FROM archive_marks WHERE book_id = ?`,
		`DELETE FROM books WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, bookID); err != nil {
			return fmt.Errorf("delete book %s: %w", bookID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete book %s: %w", bookID, err)
	}
	return nil
}

// ClearAll empties every table.
func ClearAll(db DBExecutor) error {
	for _, q := range []string{
		`DELETE FROM pages`,
		`DELETE FROM volumes`,
		`DELETE FROM archive_marks`,
		`DELETE FROM books`,
	} {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("clear store: %w", err)
		}
	}
	return nil
}

// ArchiveMark returns the stored archive digest for a book, or "" when the
// book was never imported from a marked archive.
func ArchiveMark(db DBExecutor, bookID string) (string, error) {
	var digest string
	err := db.QueryRow(`SELECT digest FROM archive_marks WHERE book_id = ?`, bookID).Scan(&digest)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read archive mark %s: %w", bookID, err)
	}
	return digest, nil
}

// SetArchiveMark records the digest of the archive a book was imported from.
func SetArchiveMark(db DBExecutor, bookID, digest string) error {
	_, err := db.Exec(`INSERT INTO archive_marks (book_id, digest) VALUES (?, ?)
		ON CONFLICT(book_id) DO UPDATE SET digest = excluded.digest`, bookID, digest)
	if err != nil {
		return fmt.Errorf("set archive mark %s: %w", bookID, err)
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
