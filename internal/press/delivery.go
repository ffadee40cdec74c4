package press

import (
	"context"
	"mime"
	"net/http"

	"github.com/billmal071/epubpress/internal/logfields"
)

// Download requests the finished document. An empty ft uses the book's own
// filetype. The book must have an id; without one no request is made.
func (c *Client) Download(ctx context.Context, b *Book, ft Filetype) (*Artifact, error) {
	const op = "download"
	if b.ID() == "" {
		return nil, invalidState(op, "no id: publish the book before downloading")
	}

	opts := DownloadOptions{Filetype: ft}
	resp, err := c.fetchArtifact(ctx, op, b, opts)
	if err != nil {
		return nil, err
	}

	a := &Artifact{
		Body:        resp.Body,
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
		Filetype:    ft,
	}
	if a.Filetype == "" {
		a.Filetype = b.Filetype()
	} else {
		a.Filetype = ParseFiletype(string(ft))
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		a.Filename = params["filename"]
	}
	return a, nil
}

// EmailDelivery asks the service to mail the finished document to email. The
// request is the download request with the address in its query.
func (c *Client) EmailDelivery(ctx context.Context, b *Book, email string, ft Filetype) error {
	const op = "email"
	if b.ID() == "" {
		return invalidState(op, "no id: publish the book before requesting delivery")
	}
	if email == "" {
		return invalidState(op, "no email: an address is required for delivery")
	}

	resp, err := c.fetchArtifact(ctx, op, b, DownloadOptions{Email: email, Filetype: ft})
	if err != nil {
		return err
	}
	discard(resp)
	c.logger.InfoContext(ctx, "delivery requested", logfields.BookID(b.ID()))
	return nil
}

func (c *Client) fetchArtifact(ctx context.Context, op string, b *Book, opts DownloadOptions) (*http.Response, error) {
	resp, err := c.send(ctx, op, http.MethodGet, b.DownloadURL(opts), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		discard(resp)
		return nil, statusError(op, "book "+b.ID(), resp.StatusCode)
	}
	return resp, nil
}
