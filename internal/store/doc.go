// Package store provides a SQLite-backed durable statement log.
//
// Store implements model.Sink: every statement a session appends is
// written to the statements table together with its session row.
//
// # Log Rules
//
// Append-only, idempotent on ID:
//   - A statement with an ID already stored is ignored
//   - A different statement at an occupied (session_id, seq) is an error
//
// Logical ordering:
//   - All ordering uses seq INTEGER, never timestamps
//   - Queries order by seq ASC, id COLLATE BINARY ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Statement IDs are computed by model.StatementID; VerifySession recomputes
// them to detect edited rows.
package store
