package sqlfunc

import (
	"math/rand/v2"
	"sync"
)

// Rand is the random source behind json_array_randelem.
type Rand interface {
	// IntN returns a uniformly distributed int in [0, n). n > 0.
	IntN(n int) int
}

// lockedRand serializes access to a *rand.Rand, which is not safe for
// concurrent use on its own.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRand returns a PCG-backed Rand seeded with seed. The same seed always
// produces the same sequence.
func NewRand(seed uint64) Rand {
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

// systemRand uses the runtime-seeded global generator.
type systemRand struct{}

func (systemRand) IntN(n int) int { return rand.IntN(n) }

// SystemRand returns a Rand backed by math/rand/v2's global generator.
func SystemRand() Rand { return systemRand{} }
