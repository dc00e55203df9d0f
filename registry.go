package prefs

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-prefs/pkg/format"
)

// Registry is the ordered, immutable set of adapters making up a document.
type Registry struct {
	codec    format.Format
	adapters []Adapter
	index    map[string]int
}

// NewRegistry validates names, binds every FormatBinder to codec and keeps
// the registration order. A nil codec selects JSON.
func NewRegistry(codec format.Format, adapters ...Adapter) (*Registry, error) {
	if codec == nil {
		codec = format.JSON{}
	}
	r := &Registry{
		codec:    codec,
		adapters: make([]Adapter, 0, len(adapters)),
		index:    make(map[string]int, len(adapters)),
	}
	for position, adapter := range adapters {
		if adapter == nil {
			return nil, fmt.Errorf("prefs: adapter at position %d is nil", position)
		}
		name := adapter.Name()
		if strings.TrimSpace(name) == "" || name == format.VersionKey {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidFieldName, name, position)
		}
		if first, exists := r.index[name]; exists {
			return nil, &DuplicateFieldError{Name: name, First: first, Second: position}
		}
		if binder, ok := adapter.(FormatBinder); ok {
			if err := binder.Bind(codec); err != nil {
				return nil, err
			}
		}
		r.index[name] = position
		r.adapters = append(r.adapters, adapter)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error, for package-level setup.
func MustRegistry(codec format.Format, adapters ...Adapter) *Registry {
	r, err := NewRegistry(codec, adapters...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Format() format.Format {
	return r.codec
}

func (r *Registry) Len() int {
	return len(r.adapters)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.adapters))
	for i, adapter := range r.adapters {
		names[i] = adapter.Name()
	}
	return names
}

func (r *Registry) Adapter(name string) (Adapter, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.adapters[i], true
}

// Each visits adapters in registration order until fn returns false.
func (r *Registry) Each(fn func(Adapter) bool) {
	for _, adapter := range r.adapters {
		if !fn(adapter) {
			return
		}
	}
}
