package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// VersionKey is the reserved top-level key carrying the document version.
const VersionKey = "$version"

// ErrEmptyDocument is returned when a document payload has no content.
var ErrEmptyDocument = errors.New("format: empty document")

// Entry is one named fragment of a document, encoded in the owning format.
type Entry struct {
	Name  string
	Value []byte
}

// Format encodes individual field values and whole documents. Implementations
// must produce identical bytes for identical input and must be safe for
// concurrent use.
type Format interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	EncodeDocument(version int, entries []Entry) ([]byte, error)
	DecodeDocument(data []byte) (version int, entries []Entry, err error)
}

// ByName resolves one of the built-in formats.
func ByName(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON{Indent: "  "}, nil
	case "yaml", "yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("format: unsupported format %q", name)
	}
}

// ForPath picks a format from the file extension, defaulting to JSON.
func ForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML{}
	default:
		return JSON{Indent: "  "}
	}
}
