// Package index defines a minimal abstraction for label rankers that are
// built once from a gallery and then queried for the K best matching labels.
// Implementations in this module include a brute-force Euclidean ranker and
// a Gaussian (Mahalanobis) ranker over per-label statistics.
package index
