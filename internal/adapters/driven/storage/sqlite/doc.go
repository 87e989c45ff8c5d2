// Package sqlite stores per-user vector indexes and the document registry
// in a single SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It implements two store interfaces through one connection:
//
//   - IndexStore: vectors and chunks, replaced per user in one transaction
//   - DocumentStore: the per-user document registry
//
// # Schema
//
// The schema is managed through numbered migrations embedded from the
// migrations/ directory (NNN_name.up.sql).
//
// # Data Location
//
// The database is stored at <data dir>/acadrag.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
