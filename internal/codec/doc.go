// Package codec converts caller documents to the text stored in the body
// column, and parses that text back for the SQL extension functions.
//
// # Document Shapes
//
// A document is resolved once, at encode time, into one of two kinds:
//
//   - Structured: maps, slices and structs. Serialized to JSON text with
//     HTML escaping disabled and non-ASCII characters written verbatim.
//   - Scalar: strings, numbers, booleans, nil and pre-serialized text
//     ([]byte, json.RawMessage). Passed to the driver unchanged, never
//     encoded a second time.
//
// Anything else (channels, funcs, complex numbers) is an EncodingError.
//
// # Value Equality
//
// CanonicalKey renders a decoded JSON value (or a value read from SQLite)
// into a deterministic form: object keys sorted by UTF-16 code units,
// strings NFC normalized, numbers in one normal form so 1 and 1.0 compare
// equal. Equal and the dedup function are both defined on top of it.
package codec
