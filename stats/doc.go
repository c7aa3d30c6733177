// Package stats estimates Gaussian parameters (mean and covariance) of
// embedding vectors, either for a single set of vectors or per label of a
// labeled dataset.
//
// Covariances use the population convention: the sum of outer products of
// residuals is divided by N, not N-1. A label with a single sample therefore
// has an all-zero covariance, which the Mahalanobis ranker regularizes.
package stats
