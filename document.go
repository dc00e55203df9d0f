package prefs

import (
	"fmt"

	"github.com/goliatone/go-prefs/pkg/format"
)

// Document is the persisted aggregate: a version marker plus one fragment per
// field, kept in insertion order.
type Document struct {
	version   int
	names     []string
	fragments map[string]Fragment
}

func NewDocument(version int) *Document {
	return &Document{
		version:   version,
		fragments: map[string]Fragment{},
	}
}

// Set stores frag under name. Replacing a name keeps its original position.
func (d *Document) Set(name string, frag Fragment) {
	if _, ok := d.fragments[name]; !ok {
		d.names = append(d.names, name)
	}
	d.fragments[name] = frag
}

func (d *Document) Get(name string) (Fragment, bool) {
	frag, ok := d.fragments[name]
	return frag, ok
}

func (d *Document) Names() []string {
	return append([]string(nil), d.names...)
}

func (d *Document) Len() int {
	return len(d.names)
}

func (d *Document) Version() int {
	return d.version
}

// Encode writes the document with codec, fields in insertion order.
func (d *Document) Encode(codec format.Format) ([]byte, error) {
	if codec == nil {
		codec = format.JSON{}
	}
	entries := make([]format.Entry, 0, len(d.names))
	for _, name := range d.names {
		entries = append(entries, format.Entry{Name: name, Value: d.fragments[name]})
	}
	return codec.EncodeDocument(d.version, entries)
}

// Snapshot extracts every adapter of registry, in registration order.
func Snapshot(registry *Registry, version int) (*Document, error) {
	doc := NewDocument(version)
	var err error
	registry.Each(func(adapter Adapter) bool {
		frag, extractErr := adapter.Extract()
		if extractErr != nil {
			err = fmt.Errorf("prefs: extract field %q: %w", adapter.Name(), extractErr)
			return false
		}
		doc.Set(adapter.Name(), frag)
		return true
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Serialize encodes the current value of every registered field. Identical
// field values always produce identical bytes.
func Serialize(registry *Registry, version int) ([]byte, error) {
	doc, err := Snapshot(registry, version)
	if err != nil {
		return nil, err
	}
	return doc.Encode(registry.Format())
}

// Deserialize parses data into a Document. Malformed top-level structure is
// reported as *LoadError; individual fragments are not inspected.
func Deserialize(codec format.Format, data []byte) (*Document, error) {
	if codec == nil {
		codec = format.JSON{}
	}
	version, entries, err := codec.DecodeDocument(data)
	if err != nil {
		return nil, &LoadError{Format: codec.Name(), Err: err}
	}
	doc := NewDocument(version)
	for _, entry := range entries {
		doc.Set(entry.Name, Fragment(entry.Value))
	}
	return doc, nil
}
