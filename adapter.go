package prefs

import "github.com/goliatone/go-prefs/pkg/format"

// Fragment is one field's value encoded in the registry format.
type Fragment []byte

// Adapter binds one named host value to the document.
//
// Changed must be a pure comparison against the last committed baseline;
// CommitBaseline is the only call that updates it.
type Adapter interface {
	Name() string
	Extract() (Fragment, error)
	Apply(Fragment) error
	Changed() bool
	CommitBaseline()
}

// FormatBinder is implemented by adapters that encode with the registry
// format. NewRegistry calls Bind once per adapter.
type FormatBinder interface {
	Bind(format.Format) error
}
