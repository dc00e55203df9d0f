// Package store defines the storage contract used to persist a preferences
// document, plus a handful of backends.
//
// A Store only moves whole documents: Load returns the last saved bytes (or
// ok=false when nothing was ever saved) and Save replaces them. Stores never
// interpret the payload; encoding belongs to the format package.
//
// Backends:
//
//	FileStore    local file through an afero.Fs, replaced atomically (temp file + rename)
//	MemoryStore  in-process, for tests and examples
//	BoltStore    one key in a boltdb bucket
//	SQLiteStore  one row in a SQLite table (sqlx over modernc.org/sqlite, no cgo)
//	RedisStore   one key in Redis
//
// Open builds a backend from a Config, which is how binaries select storage.
package store
