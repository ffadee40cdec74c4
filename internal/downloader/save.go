package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/billmal071/epubpress/internal/press"
)

// ErrHTMLContent indicates the download returned HTML instead of a book
var ErrHTMLContent = errors.New("received HTML content instead of a book")

// Downloader fetches a finished artifact, satisfied by *press.Client
type Downloader interface {
	Download(ctx context.Context, b *press.Book, ft press.Filetype) (*press.Artifact, error)
}

// Saver writes downloaded books to disk
type Saver struct {
	client   Downloader
	out      io.Writer
	progress bool
}

// NewSaver creates a saver that reports progress to out. A nil out disables
// the progress bar.
func NewSaver(client Downloader, out io.Writer) *Saver {
	return &Saver{client: client, out: out, progress: out != nil}
}

// Save downloads the book into dir and returns the final file path. The file
// is written to a .part sibling first and only renamed once it verifies.
func (s *Saver) Save(ctx context.Context, book *press.Book, ft press.Filetype, dir string) (string, error) {
	artifact, err := s.client.Download(ctx, book, ft)
	if err != nil {
		return "", err
	}
	defer artifact.Close()

	// An HTML body is an error page, not a book
	if strings.Contains(artifact.ContentType, "text/html") {
		return "", ErrHTMLContent
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// Server names never leave dir; dot names like ".." fall back to ours
	name := sanitizeFilename(filepath.Base(artifact.Filename))
	if name == "" || strings.HasPrefix(name, ".") {
		name = FileName(book.Title(), book.ID(), artifact.Filetype)
	}
	filePath := filepath.Join(dir, name)
	tempPath := filePath + ".part"

	if err := s.write(ctx, artifact, tempPath); err != nil {
		os.Remove(tempPath)
		return "", err
	}

	if err := Verify(tempPath, artifact.Filetype); err != nil {
		os.Remove(tempPath)
		return "", err
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return "", err
	}
	return filePath, nil
}

func (s *Saver) write(ctx context.Context, artifact *press.Artifact, tempPath string) error {
	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var dst io.Writer = file
	if s.progress {
		bar := progressbar.NewOptions64(
			artifact.Size,
			progressbar.OptionSetWriter(s.out),
			progressbar.OptionSetDescription("Downloading"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		defer fmt.Fprintln(s.out) // New line after progress bar
		dst = io.MultiWriter(file, bar)
	}

	// Read the first few bytes to validate content
	header := make([]byte, 512)
	n, err := io.ReadFull(artifact.Body, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if n > 0 {
		headerStr := strings.ToLower(string(header[:n]))
		if strings.Contains(headerStr, "<!doctype html") ||
			strings.Contains(headerStr, "<html") ||
			strings.Contains(headerStr, "<head") {
			return ErrHTMLContent
		}
		if _, err := dst.Write(header[:n]); err != nil {
			return err
		}
	}

	if _, err := io.Copy(dst, contextReader{ctx: ctx, r: artifact.Body}); err != nil {
		return err
	}
	return file.Close()
}

// contextReader stops a copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// FileName builds "<title>.<filetype>", falling back to the book id
func FileName(title, id string, ft press.Filetype) string {
	name := sanitizeFilename(title)
	if name == "" {
		name = "epubpress"
		if id = sanitizeFilename(id); id != "" {
			name += "-" + id
		}
	}
	if !ft.Valid() {
		ft = press.DefaultFiletype
	}
	return name + "." + string(ft)
}

// sanitizeFilename removes invalid characters from filename
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	for _, char := range invalid {
		name = strings.ReplaceAll(name, char, "_")
	}

	// Trim whitespace and limit length
	name = strings.TrimSpace(name)
	if len(name) > 100 {
		name = name[:100]
	}

	return name
}
