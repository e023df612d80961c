package inverter

// EnergyPeriod selects a cumulated-energy counter.
type EnergyPeriod byte

const (
	EnergyDaily    EnergyPeriod = 0
	EnergyWeekly   EnergyPeriod = 1
	EnergyMonthly  EnergyPeriod = 3
	EnergyYearly   EnergyPeriod = 4
	EnergyLifetime EnergyPeriod = 5
	EnergyPartial  EnergyPeriod = 6
)

// Measure selects a DSP measurement channel.
type Measure byte

const (
	MeasureGridVoltage   Measure = 1
	MeasureGridFrequency Measure = 4
	MeasurePowerIn1      Measure = 8
	MeasurePowerIn2      Measure = 9
	MeasureTempInverter  Measure = 21
	MeasureTempBooster   Measure = 22
)

// Link is a single blocking request/response exchange with the inverter.
// Every call reports success or failure on its own; callers decide what a
// failure means for the cycle they are running.
type Link interface {
	// State probes device reachability.
	State() error

	// CumulatedEnergy reads one of the energy counters, in Wh.
	CumulatedEnergy(period EnergyPeriod) (uint64, error)

	// DSP reads one instantaneous measurement.
	DSP(m Measure) (float64, error)

	// TimeDate reads the device clock as local epoch seconds.
	TimeDate() (int64, error)

	// SetTimeDate writes the device clock from local epoch seconds.
	SetTimeDate(epochLocal int64) error

	// Close releases the underlying transport.
	Close() error
}
