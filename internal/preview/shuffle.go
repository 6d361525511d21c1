package preview

import (
	"math/rand"
	"time"
)

// NewRand returns a generator seeded from the clock. Sessions own their
// generator; *rand.Rand is not safe for concurrent use.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// shuffled returns a Fisher-Yates permutation of xs; xs is left untouched.
func shuffled[T any](rng *rand.Rand, xs []T) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// indexes returns 0..n-1.
func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
