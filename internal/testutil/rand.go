package testutil

import (
	"fmt"
	"sync"
)

// ScriptedRand returns predetermined picks for json_array_randelem.
//
// Each IntN call consumes the next scripted value. The value is reduced
// modulo n so a script stays valid for arrays of any length.
//
// Thread-safety: ScriptedRand is safe for concurrent use via internal mutex.
type ScriptedRand struct {
	mu    sync.Mutex
	picks []int
	idx   int
	calls []int
}

// NewScriptedRand creates a source that returns picks in order.
//
// Example:
//
//	rnd := NewScriptedRand(2, 0)
//	rnd.IntN(3) // 2
//	rnd.IntN(3) // 0
//	rnd.IntN(3) // panic: all picks consumed
func NewScriptedRand(picks ...int) *ScriptedRand {
	return &ScriptedRand{picks: picks}
}

// IntN returns the next scripted pick modulo n.
//
// Panics when the script is exhausted so a test that samples more often
// than expected fails loudly.
func (r *ScriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.idx >= len(r.picks) {
		panic(fmt.Sprintf("ScriptedRand: all %d picks consumed", len(r.picks)))
	}
	pick := r.picks[r.idx] % n
	r.idx++
	r.calls = append(r.calls, n)
	return pick
}

// Calls returns the n argument of every IntN call so far.
func (r *ScriptedRand) Calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.calls...)
}
