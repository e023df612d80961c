package clock_test

import (
	"testing"
	"time"

	"aurora-pvlogd/internal/clock"

	"github.com/stretchr/testify/assert"
)

func TestLocalOffsetConversions(t *testing.T) {
	c := clock.NewNTP("pool.ntp.org", 3600)

	assert.Equal(t, int64(1700003700), c.ToLocal(1700000100))
	assert.Equal(t, int64(1700000100), c.FromLocal(1700003700))
	assert.Equal(t, int64(1700000100), c.FromLocal(c.ToLocal(1700000100)))
}

func TestNowTracksSystemClockWithoutSync(t *testing.T) {
	c := clock.NewNTP("pool.ntp.org", 3600)

	// Before the first NTP sync the offset is zero; Now() follows the
	// system clock in UTC regardless of the configured local offset.
	got := c.Now()
	now := time.Now().Unix()
	assert.InDelta(t, now, got, 2)
}

func TestNowIsMonotonicallyNonDecreasing(t *testing.T) {
	c := clock.NewNTP("pool.ntp.org", 0)

	prev := c.Now()
	for i := 0; i < 100; i++ {
		cur := c.Now()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}
