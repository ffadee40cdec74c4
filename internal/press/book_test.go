package press

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mockSections = []Section{
	{URL: "https://epub.press", HTML: "<html></html>"},
	{URL: "https://google.com", HTML: "<html></html>"},
}

func mockProps() Props {
	return Props{
		Title:       "Title",
		Description: "Description",
		Sections:    mockSections,
	}
}

func TestBook_URLsFromSections(t *testing.T) {
	book := NewBook(mockProps())
	assert.Equal(t, []string{"https://epub.press", "https://google.com"}, book.URLs())
}

func TestBook_URLsFromList(t *testing.T) {
	p := mockProps()
	p.Sections = nil
	p.URLs = []string{"https://b.example", "https://a.example", "https://c.example"}

	book := NewBook(p)
	assert.Equal(t, p.URLs, book.URLs())
}

func TestBook_SectionsWinOverURLs(t *testing.T) {
	p := mockProps()
	p.URLs = []string{"https://ignored.example"}

	book := NewBook(p)
	assert.Equal(t, []string{"https://epub.press", "https://google.com"}, book.URLs())
}

func TestBook_CopiesInput(t *testing.T) {
	p := mockProps()
	p.Sections = append([]Section(nil), mockSections...)
	book := NewBook(p)

	p.Sections[0].URL = "https://changed.example"
	assert.Equal(t, "https://epub.press", book.URLs()[0])
}

func TestBook_TitleAndDescription(t *testing.T) {
	book := NewBook(Props{Title: "A title", Description: "Hello world"})
	assert.Equal(t, "A title", book.Title())
	assert.Equal(t, "Hello world", book.Description())

	empty := NewBook(Props{})
	assert.Equal(t, "", empty.Title())
	assert.Equal(t, "", empty.Description())
	assert.Equal(t, "", empty.ID())
}

func TestParseFiletype(t *testing.T) {
	tests := []struct {
		in   string
		want Filetype
	}{
		{"mobi", FiletypeMobi},
		{"epub", FiletypeEpub},
		{".mobi", FiletypeEpub},
		{"MOBI", FiletypeEpub},
		{"pdf", FiletypeEpub},
		{"", FiletypeEpub},
		{" mobi", FiletypeEpub},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFiletype(tt.in))
			assert.Equal(t, tt.want, NewBook(Props{Filetype: tt.in}).Filetype())
		})
	}
}

func TestBook_DownloadURL(t *testing.T) {
	p := mockProps()
	p.ID = "1"
	book := NewBook(p)

	assert.Equal(t, DefaultBaseURL+"/api/books/download?id=1&filetype=epub", book.DownloadURL(DownloadOptions{}))
}

func TestBook_DownloadURLStoredSettings(t *testing.T) {
	p := mockProps()
	p.Email = "epubpress@gmail.com"
	p.Filetype = "mobi"
	book := NewBook(p)

	u := book.DownloadURL(DownloadOptions{})
	assert.Contains(t, u, url.QueryEscape("epubpress@gmail.com"))
	assert.Contains(t, u, "filetype=mobi")
}

func TestBook_DownloadURLOverrides(t *testing.T) {
	p := mockProps()
	p.ID = "7"
	p.Email = "stored@example.com"
	p.Filetype = "epub"
	book := NewBook(p)

	u := book.DownloadURL(DownloadOptions{Email: "reader+kindle@example.com", Filetype: FiletypeMobi})
	assert.Contains(t, u, "email="+url.QueryEscape("reader+kindle@example.com"))
	assert.Contains(t, u, "filetype=mobi")
	assert.NotContains(t, u, "stored")

	// overrides are per call
	assert.Contains(t, book.DownloadURL(DownloadOptions{}), "stored%40example.com")
	assert.Equal(t, "stored@example.com", book.Email())
	assert.Equal(t, FiletypeEpub, book.Filetype())
}

func TestBook_DownloadURLWithoutID(t *testing.T) {
	book := NewBook(mockProps())
	u, err := url.Parse(book.DownloadURL(DownloadOptions{}))
	require.NoError(t, err)
	assert.Equal(t, "", u.Query().Get("id"))
	assert.Equal(t, "epub", u.Query().Get("filetype"))
}

func TestBook_DownloadURLIdempotent(t *testing.T) {
	p := mockProps()
	p.ID = "3"
	book := NewBook(p)
	opts := DownloadOptions{Email: "a@b.c", Filetype: FiletypeMobi}
	assert.Equal(t, book.DownloadURL(opts), book.DownloadURL(opts))
}

func TestBook_StatusURL(t *testing.T) {
	p := mockProps()
	p.ID = "1"
	book := NewBook(p)

	u := book.StatusURL()
	assert.Equal(t, DefaultBaseURL+"/api/books/1/status", u)
	assert.Contains(t, u, book.ID())
	assert.Contains(t, u, "status")
}

func TestBook_BaseURLOverride(t *testing.T) {
	book := NewBook(Props{ID: "x", BaseURL: "http://localhost:3000/"})
	assert.Equal(t, "http://localhost:3000/api/books", book.PublishURL())
	assert.Equal(t, "http://localhost:3000/api/books/x/status", book.StatusURL())
}

func TestBook_PublishBody(t *testing.T) {
	p := mockProps()
	p.URLs = []string{"https://dropped.example"}
	p.Filetype = ".mobi"
	body := NewBook(p).publishBody()

	assert.Nil(t, body.URLs)
	assert.Equal(t, mockSections, body.Sections)
	assert.Equal(t, "epub", body.Filetype)
}
