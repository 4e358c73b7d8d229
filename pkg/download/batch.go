package download

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	"github.com/hadithhub12/hadith-hub/pkg/archive"
)

// DefaultConcurrency is the number of simultaneous fetch-and-import tasks.
const DefaultConcurrency = 3

// Summary reports a batch outcome. Batches never fail as a whole on
// individual task errors; callers inspect the counts.
type Summary struct {
	Succeeded int
	Failed    int
	Total     int
}

// BatchImporter downloads a set of archives with bounded concurrency and
// feeds each into the import pipeline. One task's failure is counted, not
// propagated; siblings keep running.
type BatchImporter struct {
	Client   *Client
	Importer *archive.Importer
	// Concurrency bounds simultaneous tasks; 0 means DefaultConcurrency.
	Concurrency int
	// Logger is used for per-task failures. nil means no logging.
	Logger *log.Logger
	// OnProgress is called after every task, success or failure,
	// with (completed, total).
	OnProgress func(completed, total int)
}

// Run processes all entries and returns the summary. The returned error is
// non-nil only when the context was canceled before every task could be
// submitted; tasks already running are still waited for and counted.
func (b *BatchImporter) Run(ctx context.Context, entries []Download) (Summary, error) {
	total := len(entries)
	if total == 0 {
		return Summary{}, nil
	}

	workers := b.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	pool := NewWorkerPool(workers, workers*2)
	pool.Start(ctx)

	var completed, succeeded, failed int64

	var submitErr error
	for _, entry := range entries {
		e := entry
		job := func(ctx context.Context) error {
			if b.runOne(ctx, e) {
				atomic.AddInt64(&succeeded, 1)
			} else {
				atomic.AddInt64(&failed, 1)
			}
			done := atomic.AddInt64(&completed, 1)
			if b.OnProgress != nil {
				b.OnProgress(int(done), total)
			}
			return nil
		}
		if err := pool.SubmitCtx(ctx, job); err != nil {
			submitErr = err
			break
		}
	}
	pool.Close()

	// Entries never submitted still count as failures in the summary.
	notRun := int64(total) - atomic.LoadInt64(&completed)
	summary := Summary{
		Succeeded: int(atomic.LoadInt64(&succeeded)),
		Failed:    int(atomic.LoadInt64(&failed) + notRun),
		Total:     total,
	}
	return summary, submitErr
}

// runOne fetches and imports a single archive; it reports success.
func (b *BatchImporter) runOne(ctx context.Context, entry Download) bool {
	data, err := b.Client.Fetch(ctx, entry.URL)
	if err != nil {
		if b.Logger != nil {
			b.Logger.Printf("fetch %s volume %d: %v", entry.BookID, entry.Volume, err)
		}
		return false
	}
	if _, err := b.Importer.Import(data); err != nil {
		// An unchanged archive is not a failure.
		if errors.Is(err, archive.ErrAlreadyImported) {
			return true
		}
		if b.Logger != nil {
			b.Logger.Printf("import %s volume %d: %v", entry.BookID, entry.Volume, err)
		}
		return false
	}
	return true
}
