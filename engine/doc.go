// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections and registering the vec_l2 SQL
// scalar function used by the gallery for in-database ranking.
package engine
