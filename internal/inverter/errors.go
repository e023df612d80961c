package inverter

import "aurora-pvlogd/internal/errors"

const (
	// Link errors
	ErrOpenPort     = errors.ErrorCode("inverter_open_port_failed")
	ErrShortWrite   = errors.ErrorCode("inverter_short_write")
	ErrShortRead    = errors.ErrorCode("inverter_short_read")
	ErrBadCRC       = errors.ErrorCode("inverter_bad_crc")
	ErrTransmission = errors.ErrorCode("inverter_transmission_state")

	// Collector errors
	ErrOffline    = errors.ErrorCode("inverter_offline")
	ErrEnergyRead = errors.ErrorCode("inverter_energy_read_failed")
	ErrTimeWrite  = errors.ErrorCode("inverter_time_write_failed")
)
