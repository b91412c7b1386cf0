// Package store persists target processing state in SQLite and exposes the
// operations the pipeline drives it with.
//
// The Store manages database connections, schema initialization, target
// ingestion with insert-or-ignore semantics, the per-target processing record
// upsert, the append-only like log, and the connection-status rows the metrics
// task maintains. Every timestamp is stored as an RFC3339Nano UTC string.
//
// Treat this package as the single source of truth for status semantics; when
// you add new statuses or columns, update schema.sql and bump schemaVersion.
package store
