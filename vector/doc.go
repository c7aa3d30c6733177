// Package vector defines the data model shared by the ranking packages of
// this module. It includes:
//   - Vector, Label and Dataset types
//   - Dataset validation (size and dimension checks)
//   - Embedding encoding (BLOB) and the Euclidean distance kernel
package vector
