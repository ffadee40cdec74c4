package press

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	URL    string
	Body   []byte
}

// fakeService stands in for the publishing service and records every call.
type fakeService struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func newFakeService(t *testing.T, handler http.HandlerFunc) *fakeService {
	t.Helper()
	fs := &fakeService{t: t, handler: handler}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fs.mu.Lock()
		fs.requests = append(fs.requests, recordedRequest{Method: r.Method, URL: r.URL.RequestURI(), Body: body})
		fs.mu.Unlock()
		fs.handler(w, r)
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeService) client(opts ...Option) *Client {
	base := []Option{
		WithBaseURL(fs.server.URL),
		WithVersionURL(fs.server.URL + "/api/version"),
		WithHTTPClient(fs.server.Client()),
	}
	return NewClient(append(base, opts...)...)
}

func (fs *fakeService) calls() []recordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]recordedRequest(nil), fs.requests...)
}

func respondJSON(code int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
}

func TestPublish_PostsFullPropertySet(t *testing.T) {
	fs := newFakeService(t, respondJSON(http.StatusOK, map[string]any{"id": 1}))
	c := fs.client()
	book := c.NewBook(mockProps())

	require.NoError(t, c.Publish(context.Background(), book))

	calls := fs.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/api/books", calls[0].URL)

	want, err := json.Marshal(map[string]any{
		"title":       "Title",
		"description": "Description",
		"sections":    mockSections,
	})
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(calls[0].Body))
	assert.Equal(t, "1", book.ID())
}

func TestPublish_StringID(t *testing.T) {
	fs := newFakeService(t, respondJSON(http.StatusCreated, map[string]any{"id": "abc-123"}))
	c := fs.client()
	book := c.NewBook(mockProps())

	require.NoError(t, c.Publish(context.Background(), book))
	assert.Equal(t, "abc-123", book.ID())
	assert.Contains(t, book.StatusURL(), "/api/books/abc-123/status")
}

func TestPublish_ServerError(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusInternalServerError))
	c := fs.client()
	book := c.NewBook(mockProps())

	err := c.Publish(context.Background(), book)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected server")
	assert.Contains(t, err.Error(), "500")
	assert.True(t, errors.Is(err, ErrServer))
	assert.Len(t, fs.calls(), 1)
	assert.Equal(t, "", book.ID())
}

func TestPublish_MissingID(t *testing.T) {
	fs := newFakeService(t, respondJSON(http.StatusOK, map[string]any{"ok": true}))
	c := fs.client()
	book := c.NewBook(mockProps())

	err := c.Publish(context.Background(), book)
	require.Error(t, err)
	assert.Equal(t, KindInvalidResponse, KindOf(err))
	assert.Equal(t, "", book.ID())
}

func TestPublish_MalformedJSON(t *testing.T) {
	fs := newFakeService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	})
	c := fs.client()

	err := c.Publish(context.Background(), c.NewBook(mockProps()))
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.False(t, errors.Is(err, ErrServer))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPublish_NoContent(t *testing.T) {
	fs := newFakeService(t, respondJSON(http.StatusOK, map[string]any{"id": 1}))
	c := fs.client()

	err := c.Publish(context.Background(), c.NewBook(Props{Title: "empty"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.Empty(t, fs.calls())
}

func TestPublish_NotDeduplicated(t *testing.T) {
	fs := newFakeService(t, respondJSON(http.StatusOK, map[string]any{"id": 1}))
	c := fs.client()
	book := c.NewBook(mockProps())

	require.NoError(t, c.Publish(context.Background(), book))
	assert.Len(t, fs.calls(), 1)
	require.NoError(t, c.Publish(context.Background(), book))
	assert.Len(t, fs.calls(), 2)
}

func TestPublish_TransportFailure(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusOK))
	c := fs.client()
	book := c.NewBook(mockProps())
	fs.server.Close()

	err := c.Publish(context.Background(), book)
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestCheckStatus_ParsesJSON(t *testing.T) {
	want := Status{Message: "Building", Complete: true, Error: false}
	fs := newFakeService(t, respondJSON(http.StatusOK, want))
	c := fs.client()
	p := mockProps()
	p.ID = "1"
	book := c.NewBook(p)

	got, err := c.CheckStatus(context.Background(), book)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
	assert.Equal(t, want, *book.Status())

	calls := fs.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "/api/books/1/status", calls[0].URL)
}

func TestCheckStatus_NotFound(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusNotFound))
	c := fs.client()
	p := mockProps()
	p.ID = "10"
	book := c.NewBook(p)

	_, err := c.CheckStatus(context.Background(), book)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "not found")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCheckStatus_ServerError(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusBadGateway))
	c := fs.client()
	p := mockProps()
	p.ID = "10"

	_, err := c.CheckStatus(context.Background(), c.NewBook(p))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected server")
	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
}

func TestCheckStatus_MissingComplete(t *testing.T) {
	fs := newFakeService(t, respondJSON(http.StatusOK, map[string]any{"message": "Building"}))
	c := fs.client()
	p := mockProps()
	p.ID = "1"

	_, err := c.CheckStatus(context.Background(), c.NewBook(p))
	assert.Equal(t, KindInvalidResponse, KindOf(err))
}

func TestCheckStatus_NoID(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusOK))
	c := fs.client()

	_, err := c.CheckStatus(context.Background(), c.NewBook(mockProps()))
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "no id")
	assert.Empty(t, fs.calls())
}

func TestDownload_RequestsDownloadURL(t *testing.T) {
	fs := newFakeService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/epub+zip")
		w.Header().Set("Content-Disposition", `attachment; filename="Title.epub"`)
		_, _ = io.WriteString(w, "PK-bytes")
	})
	c := fs.client()
	p := mockProps()
	p.ID = "1"
	book := c.NewBook(p)

	a, err := c.Download(context.Background(), book, "")
	require.NoError(t, err)
	defer a.Close()

	data, err := io.ReadAll(a.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK-bytes", string(data))
	assert.Equal(t, "Title.epub", a.Filename)
	assert.Equal(t, FiletypeEpub, a.Filetype)

	calls := fs.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, strings.TrimPrefix(book.DownloadURL(DownloadOptions{}), fs.server.URL), calls[0].URL)
}

func TestDownload_WithFiletype(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusOK))
	c := fs.client()
	p := mockProps()
	p.ID = "1"

	a, err := c.Download(context.Background(), c.NewBook(p), FiletypeMobi)
	require.NoError(t, err)
	a.Close()

	calls := fs.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].URL, "filetype=mobi")
	assert.Equal(t, FiletypeMobi, a.Filetype)
}

func TestDownload_NotFound(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusNotFound))
	c := fs.client()
	p := mockProps()
	p.ID = "1"

	_, err := c.Download(context.Background(), c.NewBook(p), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Len(t, fs.calls(), 1)
}

func TestDownload_ServerError(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusInternalServerError))
	c := fs.client()
	p := mockProps()
	p.ID = "1"

	a, err := c.Download(context.Background(), c.NewBook(p), FiletypeEpub)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "Unexpected")
	assert.Equal(t, KindServer, KindOf(err))
	assert.True(t, errors.Is(err, ErrServer))
	assert.Len(t, fs.calls(), 1)
}

func TestDownload_NoID(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusOK))
	c := fs.client()

	_, err := c.Download(context.Background(), c.NewBook(mockProps()), "")
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "no id")
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.Empty(t, fs.calls())
}

func TestEmailDelivery_SendsEmailAndFiletype(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusOK))
	c := fs.client()
	p := mockProps()
	p.ID = "1"

	require.NoError(t, c.EmailDelivery(context.Background(), c.NewBook(p), "epubpress@gmail.com", FiletypeMobi))

	calls := fs.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].URL, "/api/books/download?id=1")
	assert.Contains(t, calls[0].URL, "gmail.com")
	assert.Contains(t, calls[0].URL, "filetype=mobi")
}

func TestEmailDelivery_NoID(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusOK))
	c := fs.client()

	err := c.EmailDelivery(context.Background(), c.NewBook(mockProps()), "epubpress@gmail.com", FiletypeMobi)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "no id")
	assert.Empty(t, fs.calls())
}

func TestEmailDelivery_NoEmail(t *testing.T) {
	fs := newFakeService(t, respondStatus(http.StatusOK))
	c := fs.client()
	p := mockProps()
	p.ID = "1"

	err := c.EmailDelivery(context.Background(), c.NewBook(p), "", "")
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "no email")
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.Empty(t, fs.calls())
}

func TestEmailDelivery_ServerErrors(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
		kind Kind
	}{
		{"server error", http.StatusInternalServerError, "Unexpected", KindServer},
		{"not found", http.StatusNotFound, "not found", KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeService(t, respondStatus(tt.code))
			c := fs.client()
			p := mockProps()
			p.ID = "1"

			err := c.EmailDelivery(context.Background(), c.NewBook(p), "epubpress@gmail.com", FiletypeMobi)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestClient_SetsHeaders(t *testing.T) {
	var gotUA, gotType string
	fs := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotType = r.Header.Get("Content-Type")
		respondJSON(http.StatusOK, map[string]any{"id": 2})(w, r)
	})
	c := fs.client(WithUserAgent("epubpress-test/1.0"))

	require.NoError(t, c.Publish(context.Background(), c.NewBook(mockProps())))
	assert.Equal(t, "epubpress-test/1.0", gotUA)
	assert.Equal(t, "application/json", gotType)
}
