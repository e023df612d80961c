package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrMissingConfig ErrorCode = "missing_configuration"
	ErrBindFlags     ErrorCode = "bind_flags_failed"
	ErrReadConfig    ErrorCode = "read_config_failed"
	ErrInvalidPeriod ErrorCode = "invalid_period"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Clock errors
	ErrClockSync ErrorCode = "clock_sync_failed"

	// Device errors
	ErrDeviceOpen         ErrorCode = "device_open_failed"
	ErrDeviceRead         ErrorCode = "device_read_failed"
	ErrDeviceWrite        ErrorCode = "device_write_failed"
	ErrDeviceOffline      ErrorCode = "device_offline"
	ErrDeviceFrame        ErrorCode = "device_bad_frame"
	ErrDeviceTransmission ErrorCode = "device_transmission_error"

	// Delivery errors
	ErrBusConnect   ErrorCode = "bus_connect_failed"
	ErrBusPublish   ErrorCode = "bus_publish_failed"
	ErrReportSend   ErrorCode = "report_send_failed"
	ErrReportReject ErrorCode = "report_rejected"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
	ErrRetryExhausted  ErrorCode = "retry_exhausted"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:           "Internal error occurred",
	ErrInvalidArgument:    "Invalid argument provided",
	ErrUnavailable:        "Service unavailable",
	ErrAlreadyRunning:     "Another instance is already running",
	ErrInvalidConfig:      "Invalid configuration",
	ErrMissingConfig:      "Missing configuration",
	ErrBindFlags:          "Failed to bind flags",
	ErrReadConfig:         "Failed to read configuration",
	ErrInvalidPeriod:      "Invalid period value",
	ErrInvalidLogLevel:    "Invalid log level",
	ErrInitFailed:         "Initialization failed",
	ErrShutdownFailed:     "Shutdown failed",
	ErrClockSync:          "Failed to synchronize clock",
	ErrDeviceOpen:         "Failed to open device link",
	ErrDeviceRead:         "Device read failed",
	ErrDeviceWrite:        "Device write failed",
	ErrDeviceOffline:      "Device is offline",
	ErrDeviceFrame:        "Malformed device response frame",
	ErrDeviceTransmission: "Device reported transmission error",
	ErrBusConnect:         "Failed to connect to broker",
	ErrBusPublish:         "Failed to publish to broker",
	ErrReportSend:         "Failed to send remote report",
	ErrReportReject:       "Remote report rejected",
	ErrOperationFailed:    "Operation failed",
	ErrTimeout:            "Operation timed out",
	ErrRetryExhausted:     "Retry attempts exhausted",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
