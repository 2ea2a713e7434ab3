// Package store provides a SQLite-backed cache of transpilation results.
//
// A result is keyed by the hash of the source text and the hash of the idiom
// table it was transpiled against, so changing either one misses the cache.
// Only successful transpilations are stored.
//
// # Critical Patterns
//
// Logical ordering:
//   - Records are ordered by seq INTEGER (logical clock), NEVER timestamps
//   - Listing uses ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Idempotent writes:
//   - UNIQUE(source_hash, idioms_hash) with ON CONFLICT DO NOTHING
//   - A racing second writer gets the first writer's record back
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Content hashes are computed with ir.Digest and ir.Fingerprint (SHA-256
// with domain separation).
package store
