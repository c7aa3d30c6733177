package gaussian

// DefaultRegularization is the multiple of the identity added to every
// covariance before factorization.
const DefaultRegularization = 1e-8

// Option configures an Index.
type Option func(*Index)

// WithRegularization overrides DefaultRegularization. Non-positive values
// are ignored.
func WithRegularization(epsilon float64) Option {
	return func(i *Index) {
		if epsilon > 0 {
			i.epsilon = epsilon
		}
	}
}
