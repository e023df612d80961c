package telemetry

import (
	"bytes"
	"fmt"
	"math"
)

// Unavailable is the sentinel for a metric whose read failed. It renders as
// the literal "NaN" token, never as zero or a stale prior value.
var Unavailable = math.NaN()

// Snapshot is one complete, internally consistent set of inverter telemetry.
// Integer fields are device units and epoch seconds; float fields are NaN
// when unavailable.
type Snapshot struct {
	LastUpdate     int64
	EnergyToday    uint64
	EnergyTotal    uint64
	LastReportRead int64
	LastReportSent int64
	PIn            float64
	PIn1           float64
	PIn2           float64
	GridVoltage    float64
	GridFrequency  float64
	TempInverter   float64
	TempBooster    float64
}

// EmptySnapshot returns a snapshot with every metric unavailable.
func EmptySnapshot() Snapshot {
	return Snapshot{
		PIn:           Unavailable,
		PIn1:          Unavailable,
		PIn2:          Unavailable,
		GridVoltage:   Unavailable,
		GridFrequency: Unavailable,
		TempInverter:  Unavailable,
		TempBooster:   Unavailable,
	}
}

// Equal reports whether two snapshots hold the same values, treating two
// unavailable fields as equal.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.LastUpdate == o.LastUpdate &&
		s.EnergyToday == o.EnergyToday &&
		s.EnergyTotal == o.EnergyTotal &&
		s.LastReportRead == o.LastReportRead &&
		s.LastReportSent == o.LastReportSent &&
		floatEqual(s.PIn, o.PIn) &&
		floatEqual(s.PIn1, o.PIn1) &&
		floatEqual(s.PIn2, o.PIn2) &&
		floatEqual(s.GridVoltage, o.GridVoltage) &&
		floatEqual(s.GridFrequency, o.GridFrequency) &&
		floatEqual(s.TempInverter, o.TempInverter) &&
		floatEqual(s.TempBooster, o.TempBooster)
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}

	return a == b
}

// FormatValue renders a float metric with two fractional digits, or the
// "NaN" token when unavailable.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}

	return fmt.Sprintf("%.2f", v)
}

// Marshal serializes the snapshot as a flat JSON document with a fixed key
// order. Float fields are quoted decimal strings so the unavailable
// sentinel stays valid JSON.
func (s Snapshot) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, "%q: %d, ", "last_update", s.LastUpdate)
	fmt.Fprintf(&buf, "%q: %d, ", "energy_today", s.EnergyToday)
	fmt.Fprintf(&buf, "%q: %d, ", "energy_total", s.EnergyTotal)
	fmt.Fprintf(&buf, "%q: %d, ", "last_pvoutput_read", s.LastReportRead)
	fmt.Fprintf(&buf, "%q: %d, ", "last_pvoutput_sent", s.LastReportSent)
	fmt.Fprintf(&buf, "%q: %q, ", "p_in", FormatValue(s.PIn))
	fmt.Fprintf(&buf, "%q: %q, ", "p_in_1", FormatValue(s.PIn1))
	fmt.Fprintf(&buf, "%q: %q, ", "p_in_2", FormatValue(s.PIn2))
	fmt.Fprintf(&buf, "%q: %q, ", "grid_voltage", FormatValue(s.GridVoltage))
	fmt.Fprintf(&buf, "%q: %q, ", "grid_frequency", FormatValue(s.GridFrequency))
	fmt.Fprintf(&buf, "%q: %q, ", "temp_inverter", FormatValue(s.TempInverter))
	fmt.Fprintf(&buf, "%q: %q", "temp_booster", FormatValue(s.TempBooster))
	buf.WriteByte('}')

	return buf.Bytes()
}
