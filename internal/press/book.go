package press

import (
	"net/url"
	"strings"
	"sync"
)

const (
	// DefaultBaseURL is the publishing service root.
	DefaultBaseURL = "https://epub.press"
	// DefaultVersionURL serves the version manifest.
	DefaultVersionURL = DefaultBaseURL + "/api/version"

	booksPath = "/api/books"
)

// Section is pre-fetched page content bound into a book.
type Section struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// Props is the caller-supplied configuration of a book. It is also the
// request body sent on publish.
type Props struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
	URLs        []string  `json:"urls,omitempty"`
	Email       string    `json:"email,omitempty"`
	Filetype    string    `json:"filetype,omitempty"`

	// BaseURL overrides DefaultBaseURL for every url derived from the book.
	BaseURL string `json:"-"`
}

// Book is one document submitted to the publishing service. Everything but
// the server-assigned id and the latest status snapshot is fixed at
// construction.
type Book struct {
	props Props

	mu     sync.RWMutex
	id     string
	status *Status
}

// NewBook copies p into a new Book.
func NewBook(p Props) *Book {
	b := &Book{props: p, id: p.ID}
	if p.Sections != nil {
		b.props.Sections = append([]Section(nil), p.Sections...)
	}
	if p.URLs != nil {
		b.props.URLs = append([]string(nil), p.URLs...)
	}
	return b
}

// ID returns the server-assigned id, or "" before publish.
func (b *Book) ID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.id
}

func (b *Book) setID(id string) {
	b.mu.Lock()
	b.id = id
	b.mu.Unlock()
}

// Status returns the last snapshot stored by CheckStatus, or nil.
func (b *Book) Status() *Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.status == nil {
		return nil
	}
	s := *b.status
	return &s
}

func (b *Book) setStatus(s *Status) {
	cp := *s
	b.mu.Lock()
	b.status = &cp
	b.mu.Unlock()
}

func (b *Book) Title() string       { return b.props.Title }
func (b *Book) Description() string { return b.props.Description }
func (b *Book) Email() string       { return b.props.Email }

// Sections returns a copy of the pre-fetched sections.
func (b *Book) Sections() []Section {
	return append([]Section(nil), b.props.Sections...)
}

// URLs returns the content locators in order: the section urls when the book
// was built from sections, the raw url list otherwise.
func (b *Book) URLs() []string {
	if len(b.props.Sections) > 0 {
		urls := make([]string, len(b.props.Sections))
		for i, s := range b.props.Sections {
			urls[i] = s.URL
		}
		return urls
	}
	return append([]string(nil), b.props.URLs...)
}

// Filetype returns the normalised output format.
func (b *Book) Filetype() Filetype {
	return ParseFiletype(b.props.Filetype)
}

// BaseURL returns the service root the book's urls are built against.
func (b *Book) BaseURL() string {
	if b.props.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(b.props.BaseURL, "/")
}

// PublishURL is the endpoint that accepts new books.
func (b *Book) PublishURL() string {
	return b.BaseURL() + booksPath
}

// StatusURL is the build status endpoint for the book. It is well formed even
// before publish; callers should check ID first.
func (b *Book) StatusURL() string {
	return b.BaseURL() + booksPath + "/" + url.PathEscape(b.ID()) + "/status"
}

// DownloadOptions override the book's stored delivery settings for one call.
type DownloadOptions struct {
	Email    string
	Filetype Filetype
}

// DownloadURL builds the artifact url. Overrides win over stored values and
// never mutate the book.
func (b *Book) DownloadURL(opts DownloadOptions) string {
	ft := b.Filetype()
	if opts.Filetype != "" {
		ft = ParseFiletype(string(opts.Filetype))
	}
	email := b.props.Email
	if opts.Email != "" {
		email = opts.Email
	}

	var sb strings.Builder
	sb.WriteString(b.BaseURL())
	sb.WriteString(booksPath)
	sb.WriteString("/download?id=")
	sb.WriteString(url.QueryEscape(b.ID()))
	sb.WriteString("&filetype=")
	sb.WriteString(url.QueryEscape(string(ft)))
	if email != "" {
		sb.WriteString("&email=")
		sb.WriteString(url.QueryEscape(email))
	}
	return sb.String()
}

// publishBody is the full property set as sent to the server. Sections take
// precedence over urls; the filetype is normalised when one was given.
func (b *Book) publishBody() Props {
	body := b.props
	body.ID = b.ID()
	body.Sections = b.Sections()
	if len(body.Sections) > 0 {
		body.URLs = nil
	} else {
		body.Sections = nil
		body.URLs = b.URLs()
	}
	if body.Filetype != "" {
		body.Filetype = string(b.Filetype())
	}
	return body
}

func (b *Book) hasContent() bool {
	return len(b.props.Sections) > 0 || len(b.props.URLs) > 0
}
