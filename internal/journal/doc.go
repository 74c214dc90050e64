// Package journal provides an optional SQLite-backed record of every output
// patch written to a time-series table.
//
// The time-series file itself only holds the latest values. The journal keeps
// the sequence of patches so that a re-provisioned input file can be brought
// back to the same outputs (see accessor.Accessor.Replay) and so that a run can
// be audited after the fact.
//
// # Ordering
//
//   - Every entry carries a seq INTEGER assigned at insert time
//   - Queries order by seq ASC, id ASC COLLATE BINARY
//
// # Identity
//
//   - Entry IDs are UUIDv7 by default (time-sortable)
//   - patch_hash is SHA-256 over RFC 8785 canonical JSON of {time, cells},
//     with domain separation, so identical patches hash identically
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection
package journal
