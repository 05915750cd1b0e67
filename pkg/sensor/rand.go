package sensor

import "math/rand/v2"

// Rand is the source of randomness used by the generator and the simulation
// loop. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
	Int64N(n int64) int64
}

// processRand draws from the process-wide math/rand/v2 source, which is safe
// for concurrent use.
type processRand struct{}

func (processRand) Float64() float64 { return rand.Float64() }
func (processRand) IntN(n int) int { return rand.IntN(n) }
func (processRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// ProcessRand returns the process-wide random source.
func ProcessRand() Rand {
	return processRand{}
}
