package testutil

import "sync"

// RecordingProgress captures progress callbacks for assertions.
type RecordingProgress struct {
	mu       sync.Mutex
	Total    int
	Started  bool
	Finished bool
	Steps    []int
}

func (p *RecordingProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Started = true
	p.Total = total
}

func (p *RecordingProgress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps = append(p.Steps, n)
}

func (p *RecordingProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Finished = true
}

// Done returns the sum of all Add calls.
func (p *RecordingProgress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	sum := 0
	for _, n := range p.Steps {
		sum += n
	}
	return sum
}
