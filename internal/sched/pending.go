package sched

import "sync"

// PendingReport marks a confirmed daily-energy reading that still awaits
// remote delivery. Each Set starts a new cycle; Clear only succeeds for the
// cycle that set the flag or an earlier one, so a delivery racing a newer
// reading can never discard it. A newer Set supersedes the stale pending
// value without marking it delivered.
type PendingReport struct {
	mu     sync.Mutex
	cycle  uint64
	energy uint64
	readAt int64
	set    bool
}

// Set records a confirmed reading and returns the cycle that owns it.
func (p *PendingReport) Set(energy uint64, readAt int64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cycle++
	p.energy = energy
	p.readAt = readAt
	p.set = true

	return p.cycle
}

// Get returns the pending reading, if any.
func (p *PendingReport) Get() (cycle, energy uint64, readAt int64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cycle, p.energy, p.readAt, p.set
}

// Clear drops the flag if it is still owned by the given cycle or an
// earlier one. Returns whether the flag was cleared.
func (p *PendingReport) Clear(cycle uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.set || p.cycle > cycle {
		return false
	}

	p.set = false

	return true
}
