package press

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/mod/semver"
)

// FetchManifest downloads the version manifest.
func (c *Client) FetchManifest(ctx context.Context) (*VersionManifest, error) {
	const op = "check updates"
	resp, err := c.send(ctx, op, http.MethodGet, c.versionURL, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		discard(resp)
		return nil, statusError(op, "version manifest", resp.StatusCode)
	}
	var m VersionManifest
	if err := decode(op, resp, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CheckForUpdates returns an upgrade notice, or "" when no update is needed.
//
// With an empty clientName the client's own version (see WithVersion) is
// checked against the manifest's top-level minimum. Otherwise clientVersion is
// checked against the named client's entry; an unknown name is KindNotFound.
func (c *Client) CheckForUpdates(ctx context.Context, clientName, clientVersion string) (string, error) {
	const op = "check updates"
	m, err := c.FetchManifest(ctx)
	if err != nil {
		return "", err
	}

	current, minimum, message := c.version, m.MinCompatible, m.Message
	if clientName != "" {
		entry, ok := m.Clients[clientName]
		if !ok {
			return "", &Error{
				Kind:    KindNotFound,
				Op:      op,
				Message: fmt.Sprintf("client %s not found in version manifest", clientName),
			}
		}
		if clientVersion == "" {
			return "", invalidState(op, "no version given for client "+clientName)
		}
		current, minimum, message = clientVersion, entry.MinCompatible, entry.Message
	}

	if minimum == "" {
		return "", invalidResponse(op, "manifest has no minCompatible version")
	}
	cur, err := canonical(current)
	if err != nil {
		return "", invalidState(op, err.Error())
	}
	min, err := canonical(minimum)
	if err != nil {
		return "", invalidResponse(op, err.Error())
	}
	if semver.Compare(cur, min) >= 0 {
		return "", nil
	}
	return message, nil
}
