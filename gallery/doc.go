// Package gallery stores labeled embedding vectors in SQLite and hands them
// to the ranking packages as a vector.Dataset. A revision counter maintained
// by triggers tells callers when derived statistics must be recomputed.
package gallery
