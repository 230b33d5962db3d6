// Package sqlite provides the SQLite-backed DocumentStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Documents, their sections and the
// section embeddings live in one database:
//
//   - documents: one row per uploaded document
//   - sections: one row per section, with the embedding stored as a little-endian
//     float32 blob. Rows cascade on document deletion.
//
// # Schema
//
// Numbered migrations in migrations/ are embedded in the binary. The last
// applied version is kept in PRAGMA user_version, so opening a database
// written by a newer build fails instead of guessing.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-lens/data/library.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
