// Package watch polls a published book until the service finishes building it.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/billmal071/epubpress/internal/logfields"
	"github.com/billmal071/epubpress/internal/press"
)

var (
	// ErrBuildFailed is returned when the service reports a finished build with an error
	ErrBuildFailed = errors.New("build failed")
	// ErrTimeout is returned when the build does not finish within the watch timeout
	ErrTimeout = errors.New("timed out waiting for build")
)

// StatusChecker is the single-snapshot status query, satisfied by *press.Client
type StatusChecker interface {
	CheckStatus(ctx context.Context, b *press.Book) (*press.Status, error)
}

// Watcher repeatedly checks a book's status on a schedule
type Watcher struct {
	checker  StatusChecker
	schedule Schedule
	timeout  time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher. A zero timeout waits until ctx is done.
func NewWatcher(checker StatusChecker, schedule Schedule, timeout time.Duration) *Watcher {
	return &Watcher{
		checker:  checker,
		schedule: schedule,
		timeout:  timeout,
		logger:   slog.Default(),
	}
}

// Run checks the status until the build completes. onStatus, if set, sees
// every snapshot. Errors from the checker end the watch immediately.
func (w *Watcher) Run(ctx context.Context, book *press.Book, onStatus func(attempt int, s *press.Status)) (*press.Status, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	for attempt := 0; ; attempt++ {
		status, err := w.checker.CheckStatus(ctx, book)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, err
		}

		w.logger.DebugContext(ctx, "build status",
			logfields.BookID(book.ID()), logfields.Attempt(attempt),
			slog.String("message", status.Message), slog.Bool("complete", status.Complete))
		if onStatus != nil {
			onStatus(attempt, status)
		}

		if status.Complete {
			if status.Error {
				return status, fmt.Errorf("%w: %s", ErrBuildFailed, status.Message)
			}
			return status, nil
		}

		timer := time.NewTimer(w.schedule.Next(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
