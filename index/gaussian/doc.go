// Package gaussian ranks labels by the Mahalanobis distance of a query to
// each label's Gaussian (mean, covariance). Covariances are regularized with
// a small multiple of the identity and LU-factorized once at build time;
// labels whose regularized covariance is still singular are skipped.
package gaussian
