package telemetry

import "sync"

// Cache holds the latest snapshot and the last confirmed daily-energy
// reading. Single writer (the collector), multiple readers (status
// endpoint, publisher). The report timestamps live here rather than in the
// snapshot the collector builds, so a batch read can never roll them back.
type Cache struct {
	mu          sync.RWMutex
	snap        Snapshot
	dailyEnergy uint64
	dailyReadAt int64
	lastSentAt  int64
}

func NewCache() *Cache {
	return &Cache{snap: EmptySnapshot()}
}

// Update replaces the cached snapshot atomically. The report bookkeeping
// fields are filled in from the cache's own record.
func (c *Cache) Update(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s.LastReportRead = c.dailyReadAt
	s.LastReportSent = c.lastSentAt
	c.snap = s
}

// Get returns a copy of the current snapshot.
func (c *Cache) Get() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snap
}

// SetDailyEnergy records a confirmed daily-energy reading and its time.
func (c *Cache) SetDailyEnergy(value uint64, readAt int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dailyEnergy = value
	c.dailyReadAt = readAt
	c.snap.LastReportRead = readAt
}

// DailyEnergy returns the last confirmed daily-energy reading and its time.
func (c *Cache) DailyEnergy() (value uint64, readAt int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.dailyEnergy, c.dailyReadAt
}

// SetLastSent records the time of the last successful remote delivery.
func (c *Cache) SetLastSent(at int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSentAt = at
	c.snap.LastReportSent = at
}

// Serialize renders the current snapshot as the status document.
func (c *Cache) Serialize() []byte {
	return c.Get().Marshal()
}
