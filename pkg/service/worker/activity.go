package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/formloom/formloom/pkg/domain/interfaces"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/formloom/formloom/pkg/utils/logging"
)

// ActivityReporter periodically logs how many entries changed during the
// previous interval, grouped by lifecycle status.
//
// Architecture assumptions:
// - Single server instance (each instance reports its own window)
type ActivityReporter struct {
	repo     interfaces.Repository
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewActivityReporter creates a reporter that summarizes entry activity
// once per interval
func NewActivityReporter(repo interfaces.Repository, interval time.Duration) *ActivityReporter {
	return &ActivityReporter{
		repo:     repo,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background reporting loop. Does not block server
// startup.
func (w *ActivityReporter) Start(ctx context.Context) error {
	logging.Default().Info("Activity reporter starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the reporter to stop and waits for completion
func (w *ActivityReporter) Stop() {
	logging.Default().Info("Activity reporter stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Activity reporter stopped")
}

// run is the main reporter loop (runs in goroutine). The first window
// opens at start time, so the initial tick covers exactly one interval.
func (w *ActivityReporter) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	windowStart := time.Now().UTC()
	for {
		select {
		case now := <-ticker.C:
			if err := w.report(ctx, windowStart, now.UTC()); err != nil {
				// Log error but continue worker
				logging.Default().Error("Activity report failed (will retry next interval)",
					"error", err.Error())
			}
			windowStart = now.UTC()

		case <-w.stopCh:
			logging.Default().Info("Activity reporter received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Activity reporter context cancelled")
			return
		}
	}
}

// Summary is one reporting window's entry activity
type Summary struct {
	From     time.Time
	To       time.Time
	Total    int
	ByStatus map[types.EntryStatus]int
}

// Summarize counts the entries updated within [from, to) grouped by
// lifecycle status.
func (w *ActivityReporter) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	entries, err := w.repo.Entry().ListUpdatedBetween(ctx, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list updated entries")
	}

	summary := &Summary{
		From:     from,
		To:       to,
		Total:    len(entries),
		ByStatus: make(map[types.EntryStatus]int),
	}
	for _, entry := range entries {
		summary.ByStatus[entry.Status()]++
	}

	return summary, nil
}

// report performs a single reporting cycle. Quiet windows are logged at
// debug level only.
func (w *ActivityReporter) report(ctx context.Context, from, to time.Time) error {
	summary, err := w.Summarize(ctx, from, to)
	if err != nil {
		return err
	}

	if summary.Total == 0 {
		logging.Default().Debug("No entry activity",
			"from", from.Format(time.RFC3339),
			"to", to.Format(time.RFC3339))
		return nil
	}

	logging.Default().Info("Entry activity",
		"from", from.Format(time.RFC3339),
		"to", to.Format(time.RFC3339),
		"total", summary.Total,
		"drafts", summary.ByStatus[types.EntryStatusDraft],
		"edit_drafts", summary.ByStatus[types.EntryStatusEditDraft],
		"submitted", summary.ByStatus[types.EntryStatusSubmitted],
		"completed", summary.ByStatus[types.EntryStatusCompleted],
	)

	return nil
}
