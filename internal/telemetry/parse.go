package telemetry

import (
	"encoding/json"
	"strconv"

	"aurora-pvlogd/internal/errors"
)

// Unmarshal is the inverse of Snapshot.Marshal. The daemon itself only
// serializes; parsing exists for consumers of the status document and for
// the round-trip property checks.
func Unmarshal(doc []byte) (Snapshot, error) {
	errFactory := errors.New()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return Snapshot{}, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	s := EmptySnapshot()
	var err error
	if s.LastUpdate, err = parseInt(raw, "last_update"); err != nil {
		return Snapshot{}, err
	}
	if s.EnergyToday, err = parseUint(raw, "energy_today"); err != nil {
		return Snapshot{}, err
	}
	if s.EnergyTotal, err = parseUint(raw, "energy_total"); err != nil {
		return Snapshot{}, err
	}
	if s.LastReportRead, err = parseInt(raw, "last_pvoutput_read"); err != nil {
		return Snapshot{}, err
	}
	if s.LastReportSent, err = parseInt(raw, "last_pvoutput_sent"); err != nil {
		return Snapshot{}, err
	}
	if s.PIn, err = parseValue(raw, "p_in"); err != nil {
		return Snapshot{}, err
	}
	if s.PIn1, err = parseValue(raw, "p_in_1"); err != nil {
		return Snapshot{}, err
	}
	if s.PIn2, err = parseValue(raw, "p_in_2"); err != nil {
		return Snapshot{}, err
	}
	if s.GridVoltage, err = parseValue(raw, "grid_voltage"); err != nil {
		return Snapshot{}, err
	}
	if s.GridFrequency, err = parseValue(raw, "grid_frequency"); err != nil {
		return Snapshot{}, err
	}
	if s.TempInverter, err = parseValue(raw, "temp_inverter"); err != nil {
		return Snapshot{}, err
	}
	if s.TempBooster, err = parseValue(raw, "temp_booster"); err != nil {
		return Snapshot{}, err
	}

	return s, nil
}

func parseInt(raw map[string]json.RawMessage, key string) (int64, error) {
	msg, ok := raw[key]
	if !ok {
		return 0, errors.New().WithData(errors.ErrInvalidArgument, "missing field "+key)
	}

	v, err := strconv.ParseInt(string(msg), 10, 64)
	if err != nil {
		return 0, errors.New().Wrap(errors.ErrInvalidArgument, err)
	}

	return v, nil
}

func parseUint(raw map[string]json.RawMessage, key string) (uint64, error) {
	msg, ok := raw[key]
	if !ok {
		return 0, errors.New().WithData(errors.ErrInvalidArgument, "missing field "+key)
	}

	v, err := strconv.ParseUint(string(msg), 10, 64)
	if err != nil {
		return 0, errors.New().Wrap(errors.ErrInvalidArgument, err)
	}

	return v, nil
}

func parseValue(raw map[string]json.RawMessage, key string) (float64, error) {
	msg, ok := raw[key]
	if !ok {
		return 0, errors.New().WithData(errors.ErrInvalidArgument, "missing field "+key)
	}

	var str string
	if err := json.Unmarshal(msg, &str); err != nil {
		return 0, errors.New().Wrap(errors.ErrInvalidArgument, err)
	}

	if str == "NaN" {
		return Unavailable, nil
	}

	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, errors.New().Wrap(errors.ErrInvalidArgument, err)
	}

	return v, nil
}
