package press

// Filetype is an output document format accepted by the publishing service.
type Filetype string

const (
	FiletypeEpub Filetype = "epub"
	FiletypeMobi Filetype = "mobi"

	// DefaultFiletype is used whenever input does not name a known format.
	DefaultFiletype = FiletypeEpub
)

// Filetypes lists every recognised format.
var Filetypes = []Filetype{FiletypeEpub, FiletypeMobi}

// ParseFiletype maps raw input onto a known Filetype. Matching is exact, so
// ".mobi", "MOBI" and "pdf" all fall back to DefaultFiletype.
func ParseFiletype(raw string) Filetype {
	switch Filetype(raw) {
	case FiletypeEpub:
		return FiletypeEpub
	case FiletypeMobi:
		return FiletypeMobi
	}
	return DefaultFiletype
}

// String implements fmt.Stringer.
func (f Filetype) String() string {
	return string(f)
}

// Valid reports whether f is one of Filetypes.
func (f Filetype) Valid() bool {
	return f == FiletypeEpub || f == FiletypeMobi
}
