package press

import (
	"context"
	"net/http"

	"github.com/billmal071/epubpress/internal/logfields"
)

// Publish submits the book for assembly and stores the id the server assigns.
//
// Publish does not deduplicate: calling it again, or concurrently, submits the
// book again. Callers needing a single submission must sequence calls.
func (c *Client) Publish(ctx context.Context, b *Book) error {
	const op = "publish"
	if !b.hasContent() {
		return invalidState(op, "no content: book has neither sections nor urls")
	}

	resp, err := c.send(ctx, op, http.MethodPost, b.PublishURL(), b.publishBody())
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode) {
		discard(resp)
		return statusError(op, "publish endpoint", resp.StatusCode)
	}

	var result publishResult
	if err := decode(op, resp, &result); err != nil {
		return err
	}
	if result.ID == "" {
		return invalidResponse(op, "response has no id")
	}

	b.setID(string(result.ID))
	c.logger.InfoContext(ctx, "book published", logfields.BookID(string(result.ID)))
	return nil
}
