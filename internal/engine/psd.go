package engine

import "gonum.org/v1/gonum/mat"

// maxJitterAttempts bounds the epsilon-doubling search in ensurePSD.
const maxJitterAttempts = 20

// ensurePSD checks whether sigma is positive-definite and, if not, adds
// the smallest ε·I (ε starting at 1e-10 and doubling) that makes it so.
// Returns the (possibly jittered) matrix and whether jitter was applied.
// sigma is never mutated in place.
func ensurePSD(sigma [][]float64) ([][]float64, bool) {
	if isPD(sigma) {
		return sigma, false
	}

	n := len(sigma)
	eps := 1e-10
	for attempt := 0; attempt < maxJitterAttempts; attempt++ {
		candidate := make([][]float64, n)
		for i := range sigma {
			candidate[i] = make([]float64, n)
			copy(candidate[i], sigma[i])
			candidate[i][i] += eps
		}
		if isPD(candidate) {
			return candidate, true
		}
		eps *= 2
	}
	// Exhausted the jitter budget; return the original so the caller's
	// Cholesky factorization fails and reports ErrInvalidCovariance.
	return sigma, true
}

func isPD(sigma [][]float64) bool {
	n := len(sigma)
	sym := mat.NewSymDense(n, flatten(sigma))
	var chol mat.Cholesky
	return chol.Factorize(sym)
}
