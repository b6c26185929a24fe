// Package progress persists which quest levels a player has solved.
//
// Solved state is deliberately tiny: a map of level id to a boolean
// that only ever flips from false to true. The Store interface hides
// the medium; three implementations are provided:
//   - FileStore: one JSON document per player under a directory
//   - sqliteStore: rows in a shared SQLite database, WAL mode
//   - MemoryStore: process-local, for tests and throwaway runs
//
// Load never returns an error. Missing or corrupt data means the
// player simply starts fresh, which is always a safe outcome for this
// data. A Factory scopes stores to player keys so each session's
// progress survives restarts independently.
package progress
