package sched_test

import (
	"testing"

	"aurora-pvlogd/internal/sched"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingReportLifecycle(t *testing.T) {
	var p sched.PendingReport

	_, _, _, ok := p.Get()
	assert.False(t, ok, "flag starts clear")

	cycle := p.Set(1500, 1200)

	// Any number of failed delivery attempts leaves the flag set.
	for i := 0; i < 3; i++ {
		gotCycle, energy, readAt, ok := p.Get()
		require.True(t, ok)
		assert.Equal(t, cycle, gotCycle)
		assert.Equal(t, uint64(1500), energy)
		assert.Equal(t, int64(1200), readAt)
	}

	assert.True(t, p.Clear(cycle), "first successful delivery clears")
	_, _, _, ok = p.Get()
	assert.False(t, ok)

	assert.False(t, p.Clear(cycle), "clearing an already clear flag is a no-op")
}

func TestPendingReportSupersession(t *testing.T) {
	var p sched.PendingReport

	oldCycle := p.Set(1500, 1200)
	newCycle := p.Set(1800, 1500)
	require.NotEqual(t, oldCycle, newCycle)

	// The stale pending value is discarded without being marked sent.
	_, energy, readAt, ok := p.Get()
	require.True(t, ok)
	assert.Equal(t, uint64(1800), energy)
	assert.Equal(t, int64(1500), readAt)

	// A delivery that raced the supersession may not clear the newer cycle.
	assert.False(t, p.Clear(oldCycle))
	_, _, _, ok = p.Get()
	assert.True(t, ok, "newer reading still pending")

	assert.True(t, p.Clear(newCycle))
}

func TestPendingReportClearAcceptsLaterCycle(t *testing.T) {
	var p sched.PendingReport

	cycle := p.Set(900, 600)

	// Clearing with a later cycle number is valid; the stored cycle is
	// the one that set it or an earlier one.
	assert.True(t, p.Clear(cycle+1))
}
