package random

import (
	"math/rand/v2"
	"sync"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// New returns an unsynchronized source for single-goroutine use.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Locked is a Source that is safe for concurrent use.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLocked(seed uint64) *Locked {
	return &Locked{r: New(seed)}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Uniform draws from [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// Coin reports heads with probability one half.
func Coin(src Source) bool {
	return src.Float64() < 0.5
}

// Fixed always returns the same value. Useful where noise must be disabled.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }
