package clock

import (
	"context"
	"sync"
	"time"

	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/logger"
	"aurora-pvlogd/internal/retry"

	"github.com/beevik/ntp"
)

const (
	defaultSyncInterval = 5 * time.Minute
	syncRetryInterval   = 500 * time.Millisecond
	queryTimeout        = 5 * time.Second
)

// Clock provides UTC epoch seconds for schedule arithmetic plus the
// configured local-offset conversions. Schedule code must only ever use
// Now(); the local variants exist for report payloads and for setting the
// device clock, which both expect local time.
type Clock interface {
	Now() int64
	ToLocal(t int64) int64
	FromLocal(t int64) int64
}

// NTPClock tracks the offset between the system clock and an NTP server.
// Now() is corrected UTC regardless of the configured local offset, so
// period arithmetic can never be double-shifted.
type NTPClock struct {
	server       string
	localOffset  int64
	syncInterval time.Duration

	mu        sync.Mutex
	ntpOffset time.Duration
	lastSync  time.Time
	lastNow   int64
}

func NewNTP(server string, localOffsetSeconds int64) *NTPClock {
	return &NTPClock{
		server:       server,
		localOffset:  localOffsetSeconds,
		syncInterval: defaultSyncInterval,
	}
}

// Sync blocks until the first NTP query succeeds. Startup precondition:
// without a synchronized clock no schedule alignment is possible.
func (c *NTPClock) Sync(ctx context.Context) error {
	errFactory := errors.New()

	policy := retry.Unbounded(syncRetryInterval)
	err := policy.Do(ctx, func() error {
		return c.query()
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrClockSync, err)
	}

	logger.Info().
		Int64("epoch", c.Now()).
		Str("server", c.server).
		Msg("Clock synchronized")

	return nil
}

// Update re-queries the NTP server when the sync interval has elapsed.
// Best-effort: a failed refresh keeps the previous offset.
func (c *NTPClock) Update() {
	c.mu.Lock()
	due := time.Since(c.lastSync) >= c.syncInterval
	c.mu.Unlock()

	if !due {
		return
	}

	if err := c.query(); err != nil {
		logger.Warn().Err(err).Str("server", c.server).Msg("NTP refresh failed")
	}
}

func (c *NTPClock) query() error {
	resp, err := ntp.QueryWithOptions(c.server, ntp.QueryOptions{Timeout: queryTimeout})
	if err != nil {
		return err
	}
	if err := resp.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.ntpOffset = resp.ClockOffset
	c.lastSync = time.Now()
	c.mu.Unlock()

	return nil
}

// Now returns corrected UTC epoch seconds, monotonically non-decreasing.
func (c *NTPClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().Add(c.ntpOffset).Unix()
	if now < c.lastNow {
		now = c.lastNow
	}
	c.lastNow = now

	return now
}

func (c *NTPClock) ToLocal(t int64) int64 {
	return t + c.localOffset
}

func (c *NTPClock) FromLocal(t int64) int64 {
	return t - c.localOffset
}
