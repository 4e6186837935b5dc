package keywords

import "math/rand/v2"

// Rand is the source of every random draw made while scoring.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// globalRand uses the package-level math/rand/v2 source, which is safe for
// concurrent use
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }
