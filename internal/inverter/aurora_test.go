package inverter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16KnownVector(t *testing.T) {
	// X-25 check value for the standard "123456789" input.
	assert.Equal(t, uint16(0x906E), crc16([]byte("123456789")))
}

func TestCRC16EmptyInput(t *testing.T) {
	assert.Equal(t, uint16(0x0000), crc16(nil))
}

func TestTransmissionStateStrings(t *testing.T) {
	assert.Equal(t, "command not implemented", transmissionState(51))
	assert.Equal(t, "variable not available, retry", transmissionState(58))
	assert.Equal(t, "unknown transmission state", transmissionState(99))
}
