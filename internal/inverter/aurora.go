package inverter

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/logger"

	"go.bug.st/serial"
)

// Aurora RS-485 protocol: fixed 10-byte request (address, opcode, six
// operand bytes, CRC low/high) and fixed 8-byte response (transmission
// state, global state, four payload bytes, CRC low/high).
const (
	requestLen  = 10
	responseLen = 8

	opState           = 50
	opMeasureDSP      = 59
	opTimeDateRead    = 70
	opTimeDateWrite   = 80
	opCumulatedEnergy = 78

	// Device epoch is 2000-01-01 00:00:00 UTC.
	auroraEpochOffset = 946684800

	defaultBaudRate = 19200
	readTimeout     = 500 * time.Millisecond
)

// AuroraLink drives one inverter on a serial bus. Calls are serialized;
// the protocol is strictly request/response.
type AuroraLink struct {
	port    serial.Port
	address byte
	mu      sync.Mutex
}

type AuroraConfig struct {
	Port    string
	Baud    int
	Address byte
}

func OpenAurora(cfg AuroraConfig) (*AuroraLink, error) {
	errFactory := errors.New()

	baud := cfg.Baud
	if baud == 0 {
		baud = defaultBaudRate
	}

	port, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errFactory.Wrap(ErrOpenPort, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, errFactory.Wrap(ErrOpenPort, err)
	}

	logger.Info().
		Str("port", cfg.Port).
		Int("baud", baud).
		Int("address", int(cfg.Address)).
		Msg("Inverter link opened")

	return &AuroraLink{port: port, address: cfg.Address}, nil
}

func (l *AuroraLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.port.Close()
}

// exchange sends one framed request and reads the 8-byte response payload
// (transmission state + global state + 4 data bytes), validating the CRC.
func (l *AuroraLink) exchange(op byte, operands ...byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	errFactory := errors.New()

	frame := make([]byte, requestLen)
	frame[0] = l.address
	frame[1] = op
	copy(frame[2:8], operands)
	crc := crc16(frame[:8])
	frame[8] = byte(crc)
	frame[9] = byte(crc >> 8)

	if err := l.port.ResetInputBuffer(); err != nil {
		return nil, errFactory.Wrap(ErrShortWrite, err)
	}

	n, err := l.port.Write(frame)
	if err != nil || n != requestLen {
		return nil, errFactory.Wrap(ErrShortWrite, err)
	}

	resp := make([]byte, responseLen)
	read := 0
	for read < responseLen {
		n, err := l.port.Read(resp[read:])
		if err != nil {
			return nil, errFactory.Wrap(ErrShortRead, err)
		}
		if n == 0 {
			// Read timeout expired with an incomplete frame.
			return nil, errFactory.WithData(ErrShortRead, read)
		}
		read += n
	}

	if crc16(resp[:6]) != uint16(resp[6])|uint16(resp[7])<<8 {
		return nil, errFactory.New(ErrBadCRC)
	}

	if resp[0] != 0 {
		return nil, errFactory.WithData(ErrTransmission, transmissionState(resp[0]))
	}

	return resp[:6], nil
}

func (l *AuroraLink) State() error {
	_, err := l.exchange(opState)

	return err
}

func (l *AuroraLink) CumulatedEnergy(period EnergyPeriod) (uint64, error) {
	resp, err := l.exchange(opCumulatedEnergy, byte(period))
	if err != nil {
		return 0, err
	}

	return uint64(binary.BigEndian.Uint32(resp[2:6])), nil
}

func (l *AuroraLink) DSP(m Measure) (float64, error) {
	// Second operand selects the "global" measurement scope.
	resp, err := l.exchange(opMeasureDSP, byte(m), 1)
	if err != nil {
		return 0, err
	}

	bits := binary.BigEndian.Uint32(resp[2:6])

	return float64(math.Float32frombits(bits)), nil
}

func (l *AuroraLink) TimeDate() (int64, error) {
	resp, err := l.exchange(opTimeDateRead)
	if err != nil {
		return 0, err
	}

	return int64(binary.BigEndian.Uint32(resp[2:6])) + auroraEpochOffset, nil
}

func (l *AuroraLink) SetTimeDate(epochLocal int64) error {
	deviceTime := epochLocal - auroraEpochOffset
	if deviceTime < 0 {
		return errors.New().WithData(errors.ErrInvalidArgument, epochLocal)
	}

	var operands [4]byte
	binary.BigEndian.PutUint32(operands[:], uint32(deviceTime))
	_, err := l.exchange(opTimeDateWrite, operands[0], operands[1], operands[2], operands[3])

	return err
}

// crc16 is the CCITT variant the Aurora protocol uses: polynomial 0x8408,
// initial value 0xFFFF, final complement.
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0x8408
			} else {
				crc >>= 1
			}
		}
	}

	return ^crc
}

func transmissionState(code byte) string {
	switch code {
	case 51:
		return "command not implemented"
	case 52:
		return "variable does not exist"
	case 53:
		return "variable value out of range"
	case 54:
		return "EEPROM not accessible"
	case 55:
		return "not toggled service mode"
	case 56:
		return "can not send command to micro"
	case 57:
		return "command not executed"
	case 58:
		return "variable not available, retry"
	default:
		return "unknown transmission state"
	}
}
