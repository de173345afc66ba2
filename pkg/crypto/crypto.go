package crypto

import (
	"crypto/rand"
	"math/big"
)

// Rand returns a uniform random value in [0, n). Implementations must never
// use a biased modulo reduction.
type Rand func(n int) int

// RandIntn returns a uniform random value in [0, n) from crypto/rand. It
// panics if got a non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// Shuffle permutes xs in place with a Fisher-Yates walk over the given
// randomness source.
func Shuffle[T any](xs []T, randIntn Rand) {
	for i := len(xs) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
