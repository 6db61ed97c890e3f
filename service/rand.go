package service

import (
	"math/rand"
)

// sharedRand delegates to the top-level math/rand functions. Their global
// source is mutex-guarded, so one value can serve concurrent operations;
// a *rand.Rand instance could not.
type sharedRand struct{}

func (sharedRand) Intn(n int) int {
	return rand.Intn(n)
}

func (sharedRand) Float64() float64 {
	return rand.Float64()
}

// NewRand returns the production random source, safe for concurrent use.
func NewRand() Rand {
	return sharedRand{}
}
