package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/billmal071/epubpress/internal/config"
	"github.com/billmal071/epubpress/internal/db"
	"github.com/billmal071/epubpress/internal/downloader"
	"github.com/billmal071/epubpress/internal/network"
	"github.com/billmal071/epubpress/internal/notify"
	"github.com/billmal071/epubpress/internal/press"
	"github.com/billmal071/epubpress/internal/tui"
	"github.com/billmal071/epubpress/internal/watch"
)

// newClient builds a publishing service client from the current settings
func newClient() (*press.Client, error) {
	cfg := config.Get()

	httpClient, err := network.NewHTTPClient(cfg.Network)
	if err != nil {
		return nil, err
	}

	opts := []press.Option{
		press.WithHTTPClient(httpClient),
		press.WithLogger(slog.Default()),
	}
	if cfg.Server.BaseURL != "" {
		opts = append(opts, press.WithBaseURL(cfg.Server.BaseURL))
	}
	if cfg.Server.VersionURL != "" {
		opts = append(opts, press.WithVersionURL(cfg.Server.VersionURL))
	}
	if cfg.Network.UserAgent != "" {
		opts = append(opts, press.WithUserAgent(cfg.Network.UserAgent+"/"+press.Version))
	}
	return press.NewClient(opts...), nil
}

// resolveBook maps a command argument onto a book and its ledger row.
// "#N" names ledger row N; anything else is a server id, which need not be
// in the ledger, in which case rec is nil.
func resolveBook(client *press.Client, arg string) (book *press.Book, rec *db.Book, err error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil, fmt.Errorf("book id is empty")
	}

	if strings.HasPrefix(arg, "#") {
		id, err := strconv.ParseInt(arg[1:], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid book number: %s", arg)
		}
		rec, err = db.GetBook(id)
		if err != nil {
			return nil, nil, fmt.Errorf("book %s: %w", arg, err)
		}
	} else {
		rec, err = db.GetBookByRemoteID(arg)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, nil, err
		}
	}

	if rec == nil {
		return client.NewBook(press.Props{ID: arg}), nil, nil
	}
	return client.NewBook(ledgerProps(rec)), rec, nil
}

// ledgerProps rebuilds book properties from a ledger row. The email is left
// out so that plain downloads never trigger a delivery.
func ledgerProps(rec *db.Book) press.Props {
	return press.Props{
		ID:          rec.RemoteID,
		Title:       rec.Title,
		Description: rec.Description,
		URLs:        rec.URLs,
		Filetype:    rec.Filetype,
		BaseURL:     rec.BaseURL,
	}
}

// recordStatus stores a status snapshot in the ledger, if the book is there
func recordStatus(book *press.Book, s *press.Status) {
	status := db.StatusBuilding
	switch {
	case s.Failed():
		status = db.StatusFailed
	case s.Complete:
		status = db.StatusComplete
	}
	if err := db.UpdateStatus(book.ID(), status, s.Message); err != nil && !errors.Is(err, db.ErrNotFound) {
		Printf("Warning: failed to record status: %v\n", err)
	}
}

// followBuild waits for the book to finish building. The interactive view is
// used unless plain is set or stdout is not a terminal.
func followBuild(ctx context.Context, client *press.Client, book *press.Book, plain bool) (*press.Status, error) {
	cfg := config.Get()
	schedule := watch.DefaultSchedule()

	var status *press.Status
	var err error
	if plain || !isTerminal(os.Stdout) {
		w := watch.NewWatcher(client, schedule, cfg.Watch.Timeout)
		last := ""
		status, err = w.Run(ctx, book, func(attempt int, s *press.Status) {
			if s.Message != last {
				fmt.Printf("  %s\n", s.Message)
				last = s.Message
			}
			recordStatus(book, s)
		})
	} else {
		if cfg.Watch.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Watch.Timeout)
			defer cancel()
		}
		status, err = tui.RunWatch(ctx, client, schedule, book)
	}

	if status != nil {
		recordStatus(book, status)
	}
	switch {
	case errors.Is(err, watch.ErrBuildFailed):
		notify.BuildFailed(book.Title(), status.Message)
	case err == nil:
		notify.BuildComplete(book.Title())
	}
	return status, err
}

// saveBook downloads the finished book into dir and records it in the ledger
func saveBook(ctx context.Context, client *press.Client, book *press.Book, ft press.Filetype, dir string) (string, error) {
	if dir == "" {
		dir = config.Get().Downloads.Path
	}

	path, err := downloader.NewSaver(client, os.Stderr).Save(ctx, withoutEmail(client, book), ft, dir)
	if err != nil {
		return "", err
	}

	if err := db.MarkDownloaded(book.ID(), path); err == nil {
		// Save only keeps files that pass verification
		if err := db.MarkVerified(book.ID(), true); err != nil {
			Printf("Warning: failed to mark verified: %v\n", err)
		}
	} else if !errors.Is(err, db.ErrNotFound) {
		Printf("Warning: failed to record download: %v\n", err)
	}
	return path, nil
}

// withoutEmail copies a book minus its email, so that a download request
// never turns into a delivery
func withoutEmail(client *press.Client, book *press.Book) *press.Book {
	if book.Email() == "" {
		return book
	}
	return client.NewBook(press.Props{
		ID:          book.ID(),
		Title:       book.Title(),
		Description: book.Description(),
		URLs:        book.URLs(),
		Filetype:    string(book.Filetype()),
		BaseURL:     book.BaseURL(),
	})
}

// filetypeFlag reads a filetype flag, returning "" when it was not given
func filetypeFlag(raw string) (press.Filetype, error) {
	if raw == "" {
		return "", nil
	}
	ft := press.Filetype(strings.ToLower(strings.TrimPrefix(raw, ".")))
	if !ft.Valid() {
		return "", fmt.Errorf("unsupported filetype %q (use epub or mobi)", raw)
	}
	return ft, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
