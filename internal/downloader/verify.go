package downloader

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/billmal071/epubpress/internal/press"
)

// ErrCorrupt indicates a file does not look like the format it claims to be
var ErrCorrupt = errors.New("file does not match its format")

const (
	epubMimetype = "application/epub+zip"
	mobiMagicAt  = 60
)

var mobiMagic = []byte("BOOKMOBI")

// Verify checks the container signature of a downloaded book
func Verify(path string, ft press.Filetype) error {
	if path == "" {
		return fmt.Errorf("file path is empty")
	}

	switch ft {
	case press.FiletypeMobi:
		return verifyMobi(path)
	default:
		return verifyEpub(path)
	}
}

// verifyEpub requires a zip whose first entry is the epub mimetype
func verifyEpub(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: not a zip archive: %v", ErrCorrupt, err)
	}
	defer r.Close()

	if len(r.File) == 0 || r.File[0].Name != "mimetype" {
		return fmt.Errorf("%w: epub must start with a mimetype entry", ErrCorrupt)
	}

	f, err := r.File[0].Open()
	if err != nil {
		return fmt.Errorf("failed to read mimetype: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, 64))
	if err != nil {
		return fmt.Errorf("failed to read mimetype: %w", err)
	}
	if string(bytes.TrimSpace(data)) != epubMimetype {
		return fmt.Errorf("%w: unexpected mimetype %q", ErrCorrupt, data)
	}
	return nil
}

// verifyMobi looks for the PalmDB type/creator pair
func verifyMobi(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	header := make([]byte, mobiMagicAt+len(mobiMagic))
	if _, err := io.ReadFull(file, header); err != nil {
		return fmt.Errorf("%w: file too short for a mobi header", ErrCorrupt)
	}
	if !bytes.Equal(header[mobiMagicAt:], mobiMagic) {
		return fmt.Errorf("%w: missing BOOKMOBI signature", ErrCorrupt)
	}
	return nil
}
