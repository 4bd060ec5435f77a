// Package rendercache persists compiled render results in SQLite.
//
// Entries are keyed by the structural digest of a resolved pipeline, so
// a graph that compiles to the same argument vector is recognized across
// invocations regardless of how it was constructed. Each entry records
// the output locations, the compiled arguments, and usage counters that
// drive retention pruning.
//
// The Store opens the database with WAL journaling and a busy timeout,
// retries busy errors with backoff, and guards the file with a
// cooperative lock. When caching is disabled, or another process holds
// the lock, Open returns a disabled store whose lookups miss and whose
// writes are dropped, so callers never branch on cache availability.
//
// Schema changes bump the version in schema.go; users clear the cache
// database to adopt the new schema.
package rendercache
