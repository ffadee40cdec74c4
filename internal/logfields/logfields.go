package logfields

import "log/slog"

// Canonical log field names shared by every package.
const (
	KeyOp       = "op"
	KeyMethod   = "method"
	KeyURL      = "url"
	KeyStatus   = "status_code"
	KeyBookID   = "book_id"
	KeyFiletype = "filetype"
	KeyAttempt  = "attempt"
	KeyPath     = "path"
	KeyError    = "error"
)

func Op(name string) slog.Attr        { return slog.String(KeyOp, name) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func StatusCode(code int) slog.Attr   { return slog.Int(KeyStatus, code) }
func BookID(id string) slog.Attr      { return slog.String(KeyBookID, id) }
func Filetype(ft string) slog.Attr    { return slog.String(KeyFiletype, ft) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
