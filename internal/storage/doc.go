// Package storage keeps a journal of completed task runs.
//
// Drivers:
//   - "file": append-only JSON Lines next to the configured path
//   - "sqlite": a SQLite database (pure Go driver, modernc.org/sqlite)
package storage
