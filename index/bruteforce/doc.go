// Package bruteforce provides a label ranker that answers queries by
// scanning every stored vector, keeping the smallest Euclidean distance seen
// for each label. It supports a compact binary format for persistence.
package bruteforce
