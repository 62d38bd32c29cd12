// Package store provides a SQLite-backed document store.
//
// A Store owns one table with two columns: an autoincrement integer id and a
// JSON body. Documents are bulk loaded in committed chunks, read back in id
// order, and queried with plain SQL, including the JSON1 functions and the
// json_array_* functions from package sqlfunc.
//
// # Connection Model
//
// Every Store opens its own database handle through a private connector, so
// the extension functions are installed on that store's connection only and
// bound to the store's random source. The handle is pinned to a single
// connection, which keeps ":memory:" databases alive for the life of the
// Store.
//
// # Atomicity
//
//   - Each chunk of a load is one transaction.
//   - A failed load leaves every earlier chunk committed.
//   - Nothing spans chunks, and nothing is retried.
//
// # Concurrency
//
// A Store is not safe for concurrent use. Callers that share one serialize
// access themselves.
package store
