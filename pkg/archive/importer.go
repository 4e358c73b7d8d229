package archive

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/hadithhub12/hadith-hub/pkg/db"
	"github.com/hadithhub12/hadith-hub/pkg/library"
)

// ErrAlreadyImported means the archive's content digest matches what the
// book was last imported from; nothing was written. Batch callers count
// this as success.
var ErrAlreadyImported = errors.New("archive: already imported")

// Importer replaces volumes in the library from archive blobs.
type Importer struct {
	Library *library.Library
	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger
	// OnProgress is called after each volume with (volumes done, total).
	OnProgress func(done, total int)
}

// NewImporter creates an importer over the given library.
func NewImporter(lib *library.Library) *Importer {
	return &Importer{Library: lib}
}

// Import ingests one archive blob. Per manifest volume: read the page
// files that exist (missing ones are skipped), then replace that volume's
// pages transactionally. After all volumes the book record is upserted
// with VolumeCount raised to the highest volume seen, and the archive's
// blake3 digest is recorded so a byte-identical re-import becomes a no-op.
func (im *Importer) Import(data []byte) (*Manifest, error) {
	sum := blake3.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	arc, err := Open(data)
	if err != nil {
		return nil, err
	}
	manifest, err := arc.Manifest()
	if err != nil {
		return nil, err
	}

	if mark, err := im.Library.ArchiveMark(manifest.ID); err != nil {
		return nil, err
	} else if mark == digest {
		if im.Logger != nil {
			im.Logger.Printf("archive for %s unchanged, skipping import", manifest.ID)
		}
		return manifest, ErrAlreadyImported
	}

	now := time.Now()
	maxVolume := 0
	for i, mv := range manifest.Volumes {
		pages := make([]db.Page, 0, mv.TotalPages)
		for pg := 1; pg <= mv.TotalPages; pg++ {
			content, ok := arc.PageFile(mv.Volume, pg)
			if !ok {
				continue
			}
			pages = append(pages, db.Page{
				BookID: manifest.ID,
				Volume: mv.Volume,
				Page:   pg,
				Text:   string(content),
			})
		}
		vol := db.Volume{
			BookID:     manifest.ID,
			Volume:     mv.Volume,
			TotalPages: mv.TotalPages,
			ImportedAt: &now,
		}
		if err := im.Library.ReplaceVolume(vol, pages); err != nil {
			return nil, fmt.Errorf("import %s volume %d: %w", manifest.ID, mv.Volume, err)
		}
		if mv.Volume > maxVolume {
			maxVolume = mv.Volume
		}
		if im.OnProgress != nil {
			im.OnProgress(i+1, len(manifest.Volumes))
		}
	}

	book := db.Book{
		ID:          manifest.ID,
		Title:       manifest.Title,
		Author:      manifest.Author,
		SourceID:    manifest.SourceID,
		VolumeCount: maxVolume,
		ImportedAt:  &now,
	}
	if existing, ok := im.Library.Book(manifest.ID); ok && existing.VolumeCount > book.VolumeCount {
		book.VolumeCount = existing.VolumeCount
	}
	if book.SourceID == "" {
		// Archives produced before the explicit link relied on the id
		// suffix convention; recover the link at import time.
		if base, found := strings.CutSuffix(manifest.ID, library.TranslationSuffix); found {
			book.SourceID = base
		}
	}
	if err := im.Library.UpsertBook(book); err != nil {
		return nil, fmt.Errorf("import %s: %w", manifest.ID, err)
	}
	if err := im.Library.SetArchiveMark(manifest.ID, digest); err != nil {
		return nil, fmt.Errorf("import %s: %w", manifest.ID, err)
	}
	if im.Logger != nil {
		im.Logger.Printf("imported %s: %d volume(s)", manifest.ID, len(manifest.Volumes))
	}
	return manifest, nil
}
