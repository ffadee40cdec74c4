package press

import (
	"context"
	"net/http"
)

// CheckStatus fetches one build status snapshot and records it on the book.
// It never polls; repeated checks are up to the caller.
func (c *Client) CheckStatus(ctx context.Context, b *Book) (*Status, error) {
	const op = "status"
	if b.ID() == "" {
		return nil, invalidState(op, "no id: book has not been published")
	}

	resp, err := c.send(ctx, op, http.MethodGet, b.StatusURL(), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		discard(resp)
		return nil, statusError(op, "book "+b.ID(), resp.StatusCode)
	}

	var result statusResult
	if err := decode(op, resp, &result); err != nil {
		return nil, err
	}
	if result.Complete == nil {
		return nil, invalidResponse(op, "status response has no complete field")
	}

	status := &Status{
		Message:  result.Message,
		Complete: *result.Complete,
		Error:    result.Error,
	}
	b.setStatus(status)
	return status, nil
}
