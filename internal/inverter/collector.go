package inverter

import (
	"aurora-pvlogd/internal/clock"
	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/logger"
	"aurora-pvlogd/internal/telemetry"
)

// Collector aggregates per-metric device reads into status snapshots and
// confirmed daily-energy readings. It is the cache's single writer.
type Collector struct {
	link  Link
	clk   clock.Clock
	cache *telemetry.Cache
}

func NewCollector(link Link, clk clock.Clock, cache *telemetry.Cache) *Collector {
	return &Collector{
		link:  link,
		clk:   clk,
		cache: cache,
	}
}

// ReadDailyEnergy performs the single cumulative-energy read of the slow
// cadence. On success the cache's confirmed reading advances and the value
// and its read time are returned for delivery. On failure the cache is left
// untouched.
func (c *Collector) ReadDailyEnergy() (energy uint64, readAt int64, err error) {
	errFactory := errors.New()

	now := c.clk.Now()
	energy, readErr := c.link.CumulatedEnergy(EnergyDaily)
	if readErr != nil {
		return 0, 0, errFactory.Wrap(ErrEnergyRead, readErr)
	}

	c.cache.SetDailyEnergy(energy, now)
	logger.Info().
		Uint64("energy_today", energy).
		Int64("read_at", now).
		Msg("Updated today's energy")

	return energy, now, nil
}

// ReadFullStatus samples every status metric independently and replaces the
// cached snapshot. A failing metric is recorded as unavailable without
// aborting the rest. When the reachability probe fails the whole batch is
// skipped and the prior snapshot stays as-is; the second return value
// reports whether an update happened.
func (c *Collector) ReadFullStatus() (telemetry.Snapshot, bool) {
	if err := c.link.State(); err != nil {
		logger.Warn().Err(err).Msg("Can not update inverter stats - inverter offline")
		return c.cache.Get(), false
	}

	snap := telemetry.EmptySnapshot()
	snap.LastUpdate = c.clk.Now()

	if v, err := c.link.CumulatedEnergy(EnergyDaily); err != nil {
		logMetricError("energy_today", err)
	} else {
		snap.EnergyToday = v
	}

	if v, err := c.link.CumulatedEnergy(EnergyLifetime); err != nil {
		logMetricError("energy_total", err)
	} else {
		snap.EnergyTotal = v
	}

	snap.PIn1 = c.readMeasure("p_in_1", MeasurePowerIn1)
	snap.PIn2 = c.readMeasure("p_in_2", MeasurePowerIn2)
	snap.GridVoltage = c.readMeasure("grid_voltage", MeasureGridVoltage)
	snap.GridFrequency = c.readMeasure("grid_frequency", MeasureGridFrequency)
	snap.TempInverter = c.readMeasure("temp_inverter", MeasureTempInverter)
	snap.TempBooster = c.readMeasure("temp_booster", MeasureTempBooster)

	// The sum is only meaningful when both sub-channels were read; a zero
	// default would silently corrupt it.
	if !isUnavailable(snap.PIn1) && !isUnavailable(snap.PIn2) {
		snap.PIn = snap.PIn1 + snap.PIn2
	}

	c.cache.Update(snap)

	return c.cache.Get(), true
}

// SetDeviceTime pushes the corrected local time to the device before the
// slow-cadence energy read. Best-effort: failures are logged and never
// block the read that follows.
func (c *Collector) SetDeviceTime() {
	deviceTime, err := c.link.TimeDate()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read device time")
		deviceTime = 0
	}

	newTime := c.clk.ToLocal(c.clk.Now())
	logger.Debug().
		Int64("device_time", deviceTime).
		Int64("new_time", newTime).
		Msg("Setting device time")

	if err := c.link.SetTimeDate(newTime); err != nil {
		logger.Warn().Err(err).Msg("Failed to set device time")
	}
}

func (c *Collector) readMeasure(name string, m Measure) float64 {
	v, err := c.link.DSP(m)
	if err != nil {
		logMetricError(name, err)
		return telemetry.Unavailable
	}

	return v
}

func logMetricError(metric string, err error) {
	logger.Warn().
		Str("metric", metric).
		Str("error_code", string(errors.CodeOf(err))).
		Err(err).
		Msg("Metric read failed")
}

func isUnavailable(v float64) bool {
	return v != v
}
