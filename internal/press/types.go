package press

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
)

// Status is one build progress snapshot.
type Status struct {
	Message  string `json:"message"`
	Complete bool   `json:"complete"`
	Error    bool   `json:"error"`
}

// Failed reports whether the build finished unsuccessfully.
func (s *Status) Failed() bool {
	return s.Complete && s.Error
}

// VersionManifest describes current and minimum compatible client versions.
type VersionManifest struct {
	Version       string                    `json:"version"`
	MinCompatible string                    `json:"minCompatible"`
	Message       string                    `json:"message"`
	Clients       map[string]ClientManifest `json:"clients"`
}

// ClientManifest is the manifest entry for a named sibling client.
type ClientManifest struct {
	MinCompatible string `json:"minCompatible"`
	Message       string `json:"message"`
}

// Artifact is a finished document being streamed from the service.
// The caller must close Body.
type Artifact struct {
	Body        io.ReadCloser
	Size        int64 // -1 when the server did not send a length
	ContentType string
	Filename    string
	Filetype    Filetype
}

// Close closes the artifact body.
func (a *Artifact) Close() error {
	if a == nil || a.Body == nil {
		return nil
	}
	return a.Body.Close()
}

// remoteID accepts the id as either a JSON string or number.
type remoteID string

func (r *remoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = remoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*r = remoteID(n.String())
	return nil
}

type publishResult struct {
	ID remoteID `json:"id"`
}

type statusResult struct {
	Message  string `json:"message"`
	Complete *bool  `json:"complete"`
	Error    bool   `json:"error"`
}
