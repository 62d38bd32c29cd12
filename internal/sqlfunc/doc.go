// Package sqlfunc implements the JSON array scalar functions that are
// installed on every store connection:
//
//	json_array_contains(array_text, value)  -> 1 | 0
//	json_array_dropdup(array_text)          -> array_text
//	json_array_randelem(array_text)         -> element
//
// SQLite's JSON1 functions cannot test membership with arbitrary value
// equality, dedupe an array, or sample from one. Installing these lets
// ordinary queries do all three inline, for example:
//
//	SELECT id FROM docs WHERE json_array_contains(body -> '$.tags', 'go')
//
// A NULL array argument yields NULL. Text that is not a JSON array fails
// the statement with a codec.DecodingError.
//
// json_array_dropdup does not promise any element order in its result.
//
// json_array_randelem draws from the Rand passed to Register, so a seeded
// source gives a reproducible sequence of picks.
package sqlfunc
