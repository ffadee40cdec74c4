package downloader

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/epubpress/internal/press"
)

func epubBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	require.NoError(t, err)
	_, err = io.WriteString(w, epubMimetype)
	require.NoError(t, err)
	w, err = zw.Create("META-INF/container.xml")
	require.NoError(t, err)
	_, err = io.WriteString(w, "<container/>")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func mobiBytes() []byte {
	data := make([]byte, 128)
	copy(data[mobiMagicAt:], mobiMagic)
	return data
}

type fakeDownloader struct {
	artifact *press.Artifact
	err      error
	calls    int
}

func (f *fakeDownloader) Download(_ context.Context, _ *press.Book, _ press.Filetype) (*press.Artifact, error) {
	f.calls++
	return f.artifact, f.err
}

func artifactOf(data []byte, ft press.Filetype, contentType, filename string) *press.Artifact {
	return &press.Artifact{
		Body:        io.NopCloser(bytes.NewReader(data)),
		Size:        int64(len(data)),
		ContentType: contentType,
		Filename:    filename,
		Filetype:    ft,
	}
}

func TestSave_Epub(t *testing.T) {
	dir := t.TempDir()
	data := epubBytes(t)
	fd := &fakeDownloader{artifact: artifactOf(data, press.FiletypeEpub, "application/epub+zip", "")}
	book := press.NewBook(press.Props{ID: "1", Title: "My: Reading/List"})

	path, err := NewSaver(fd, io.Discard).Save(context.Background(), book, "", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "My_ Reading_List.epub"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.NoFileExists(t, path+".part")
}

func TestSave_UsesServerFilename(t *testing.T) {
	dir := t.TempDir()
	fd := &fakeDownloader{artifact: artifactOf(mobiBytes(), press.FiletypeMobi, "application/x-mobipocket-ebook", "../Server Name.mobi")}
	book := press.NewBook(press.Props{ID: "1"})

	path, err := NewSaver(fd, nil).Save(context.Background(), book, press.FiletypeMobi, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Server Name.mobi"), path)
}

func TestSave_DotFilenamesStayInDir(t *testing.T) {
	for _, served := range []string{"..", ".", "../..", ".hidden.epub"} {
		t.Run(served, func(t *testing.T) {
			parent := t.TempDir()
			dir := filepath.Join(parent, "books")
			fd := &fakeDownloader{artifact: artifactOf(epubBytes(t), press.FiletypeEpub, "application/epub+zip", served)}
			book := press.NewBook(press.Props{ID: "7", Title: "Weekly"})

			path, err := NewSaver(fd, nil).Save(context.Background(), book, "", dir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "Weekly.epub"), path)
			assert.FileExists(t, path)

			entries, err := os.ReadDir(parent)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "books", entries[0].Name())
		})
	}
}

func TestSave_RenameFailureRemovesPart(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the final path makes the rename fail
	blocked := filepath.Join(dir, "Weekly.epub")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "inside"), 0755))

	fd := &fakeDownloader{artifact: artifactOf(epubBytes(t), press.FiletypeEpub, "application/epub+zip", "")}
	_, err := NewSaver(fd, nil).Save(context.Background(), press.NewBook(press.Props{ID: "7", Title: "Weekly"}), "", dir)
	require.Error(t, err)
	assert.NoFileExists(t, blocked+".part")
}

func TestSave_RejectsHTML(t *testing.T) {
	dir := t.TempDir()
	book := press.NewBook(press.Props{ID: "1"})

	byType := &fakeDownloader{artifact: artifactOf([]byte("<p>x</p>"), press.FiletypeEpub, "text/html; charset=utf-8", "")}
	_, err := NewSaver(byType, nil).Save(context.Background(), book, "", dir)
	assert.ErrorIs(t, err, ErrHTMLContent)

	bySniff := &fakeDownloader{artifact: artifactOf([]byte("<!DOCTYPE html><html></html>"), press.FiletypeEpub, "application/octet-stream", "")}
	_, err = NewSaver(bySniff, nil).Save(context.Background(), book, "", dir)
	assert.ErrorIs(t, err, ErrHTMLContent)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_RejectsCorrupt(t *testing.T) {
	dir := t.TempDir()
	fd := &fakeDownloader{artifact: artifactOf([]byte("not a zip at all"), press.FiletypeEpub, "application/epub+zip", "")}

	_, err := NewSaver(fd, nil).Save(context.Background(), press.NewBook(press.Props{ID: "1"}), "", dir)
	assert.ErrorIs(t, err, ErrCorrupt)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_PropagatesClientError(t *testing.T) {
	noID := &press.Error{Kind: press.KindInvalidState, Message: "no id"}
	fd := &fakeDownloader{err: noID}

	_, err := NewSaver(fd, nil).Save(context.Background(), press.NewBook(press.Props{}), "", t.TempDir())
	assert.ErrorIs(t, err, press.ErrInvalidState)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()

	epub := filepath.Join(dir, "ok.epub")
	require.NoError(t, os.WriteFile(epub, epubBytes(t), 0644))
	assert.NoError(t, Verify(epub, press.FiletypeEpub))
	assert.ErrorIs(t, Verify(epub, press.FiletypeMobi), ErrCorrupt)

	mobi := filepath.Join(dir, "ok.mobi")
	require.NoError(t, os.WriteFile(mobi, mobiBytes(), 0644))
	assert.NoError(t, Verify(mobi, press.FiletypeMobi))
	assert.ErrorIs(t, Verify(mobi, press.FiletypeEpub), ErrCorrupt)

	short := filepath.Join(dir, "short.mobi")
	require.NoError(t, os.WriteFile(short, []byte("BOOKMOBI"), 0644))
	assert.ErrorIs(t, Verify(short, press.FiletypeMobi), ErrCorrupt)

	assert.Error(t, Verify("", press.FiletypeEpub))
}

func TestVerify_WrongFirstEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("OEBPS/content.opf")
	require.NoError(t, err)
	_, _ = io.WriteString(w, "<package/>")
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "bad.epub")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	assert.ErrorIs(t, Verify(path, press.FiletypeEpub), ErrCorrupt)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Title.mobi", FileName("Title", "1", press.FiletypeMobi))
	assert.Equal(t, "epubpress-42.epub", FileName("", "42", press.FiletypeEpub))
	assert.Equal(t, "epubpress.epub", FileName("  ", "", ""))
	assert.Equal(t, "a_b.epub", FileName("a/b", "", "pdf"))
}
