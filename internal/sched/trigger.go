// Package sched implements the two wall-clock-aligned triggers driving the
// sampling loop, and the pending flag that carries a confirmed reading
// until it is delivered or superseded.
package sched

// Trigger fires on period-aligned wall-clock boundaries. The first fire
// lands on the next multiple of the period, not period-seconds after boot,
// and each fire advances from the previous deadline so processing delay
// never accumulates drift. If more than one period elapses between checks
// only a single fire is reported; missed periods are not queued.
type Trigger struct {
	period   int64
	nextFire int64
}

// NewTrigger aligns the first fire to the next multiple of period after now.
func NewTrigger(period, now int64) *Trigger {
	return &Trigger{
		period:   period,
		nextFire: (now/period)*period + period,
	}
}

// Due reports whether the trigger has fired and, if so, advances the next
// deadline by exactly one period. The caller runs its task regardless of
// the task's eventual outcome; a failing task must not re-fire faster than
// the period.
func (t *Trigger) Due(now int64) bool {
	if now < t.nextFire {
		return false
	}

	t.nextFire += t.period

	return true
}

// NextFire returns the next deadline in epoch seconds.
func (t *Trigger) NextFire() int64 {
	return t.nextFire
}

// Period returns the trigger period in seconds.
func (t *Trigger) Period() int64 {
	return t.period
}
