// Package store provides SQLite-backed storage for simulation result files.
//
// The store holds two tables:
//   - files: one row per stored result file (name is UNIQUE)
//   - variables: one row per (variable, interval) with the whole time
//     series encoded as a single delimited text blob
//
// # Batch isolation
//
// Store writes every file in its own transaction. A file whose name is
// already taken rolls back alone; the failure is recorded in the
// BatchReport and logged, and the batch continues with the next file.
// Engine failures (I/O, closed database) still abort the call.
//
// # Partial-match resolution
//
// Fetch takes Descriptors whose empty fields are wildcards. Each descriptor
// becomes a queryir.Join of variables and files restricted to the file name,
// with one equality per non-empty field; descriptors are combined with
// UNION ALL, so a record matched twice is returned twice. Matched blobs are
// decoded per interval and combined column-wise.
//
// # Deterministic results
//
// Every query orders by descriptor position, then variables.id, so repeated
// fetches return columns in the same order.
//
// # Database configuration
//
//   - WAL mode for file databases
//   - synchronous=NORMAL
//   - busy_timeout from Config (default 5000 ms)
//   - foreign_keys=ON: variables cascade with their file
//   - a single connection: the Store is not safe for concurrent use
package store
