package prefs

import (
	"errors"
	"testing"

	"github.com/goliatone/go-prefs/pkg/format"
)

func TestRegistryDuplicateField(t *testing.T) {
	a, b := 1, 2
	_, err := NewRegistry(nil, NewField("count", &a), NewField("count", &b))
	if !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
	var dup *DuplicateFieldError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateFieldError, got %T", err)
	}
	if dup.Name != "count" || dup.First != 0 || dup.Second != 1 {
		t.Fatalf("unexpected duplicate metadata %+v", dup)
	}
}

func TestRegistryInvalidNames(t *testing.T) {
	for _, name := range []string{"", "  ", format.VersionKey} {
		value := 1
		_, err := NewRegistry(nil, NewField(name, &value))
		if !errors.Is(err, ErrInvalidFieldName) {
			t.Fatalf("name %q: expected ErrInvalidFieldName, got %v", name, err)
		}
	}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	volume, name, fullscreen := 0.5, "Player", false
	reg, err := NewRegistry(nil,
		NewField("volume", &volume),
		NewField("name", &name),
		NewField("fullscreen", &fullscreen),
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if reg.Format().Name() != "json" {
		t.Fatalf("nil format should default to json, got %s", reg.Format().Name())
	}
	want := []string{"volume", "name", "fullscreen"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 adapters, got %d", reg.Len())
	}
	adapter, ok := reg.Adapter("name")
	if !ok || adapter.Name() != "name" {
		t.Fatalf("lookup failed")
	}
	if _, ok := reg.Adapter("missing"); ok {
		t.Fatalf("unexpected adapter")
	}

	visited := 0
	reg.Each(func(Adapter) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Fatalf("Each should stop when fn returns false, visited %d", visited)
	}
}

func TestRegistryNilAdapter(t *testing.T) {
	if _, err := NewRegistry(nil, nil); err == nil {
		t.Fatalf("expected error for nil adapter")
	}
}

func TestMustRegistryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	a := 1
	MustRegistry(nil, NewField("a", &a), NewField("a", &a))
}
