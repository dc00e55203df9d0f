// Package prefs persists a set of independently owned, typed values as one
// versioned document.
//
// The host declares its values once through a Registry of Field adapters,
// calls Engine.Load at startup and then Engine.Tick from its update loop.
// Each tick compares every field with the value last loaded or written and,
// when something changed and no write is running, serializes the whole
// document and hands the write to a background Executor. At most one write is
// in flight; changes made while it runs are coalesced into the next one.
//
// Loading is tolerant: a missing or unreadable document yields defaults, and a
// field whose stored value has the wrong shape (or fails its rule) keeps its
// default while the other fields are still applied.
//
//	volume, name := 0.5, "Player"
//	reg := prefs.MustRegistry(format.JSON{Indent: "  "},
//		prefs.NewField("volume", &volume),
//		prefs.NewField("name", &name),
//	)
//	engine := prefs.New(reg, store.NewFileStore("prefs.json"))
//	engine.Load(ctx)
//	for range frames {
//		engine.Tick(ctx)
//	}
package prefs
