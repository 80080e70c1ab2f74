package errors

const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
	ErrUnknownCommand  ErrorCode = "unknown_command"
	ErrMissingProfile  ErrorCode = "missing_profile"

	// Profile errors
	ErrInvalidProfile ErrorCode = "invalid_profile"

	// Sensor errors
	ErrSensorUnavailable ErrorCode = "sensor_unavailable"
	ErrSensorRead        ErrorCode = "sensor_read_failed"

	// Device errors
	ErrDeviceNotFound ErrorCode = "device_not_found"
	ErrDeviceConnect  ErrorCode = "device_connect_failed"
	ErrDeviceStatus   ErrorCode = "device_status_failed"
	ErrDeviceCommand  ErrorCode = "device_command_failed"

	// Lifecycle errors
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrTimeout        ErrorCode = "operation_timeout"

	// Metrics and telemetry errors
	ErrInitMetrics    ErrorCode = "init_metrics_failed"
	ErrCollectMetrics ErrorCode = "collect_metrics_failed"
	ErrInitTelemetry  ErrorCode = "init_telemetry_failed"
	ErrPublish        ErrorCode = "telemetry_publish_failed"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:          "Internal error occurred",
	ErrInvalidArgument:   "Invalid argument provided",
	ErrUnavailable:       "Service unavailable",
	ErrAlreadyRunning:    "Another controller is already running",
	ErrInvalidConfig:     "Invalid configuration",
	ErrReadConfig:        "Failed to read config file",
	ErrBindFlags:         "Failed to bind flags",
	ErrInvalidInterval:   "Invalid interval value",
	ErrInvalidLogLevel:   "Invalid log level",
	ErrUnknownCommand:    "Unknown command",
	ErrMissingProfile:    "Both --pump and --fan profiles are required",
	ErrInvalidProfile:    "Invalid profile",
	ErrSensorUnavailable: "Sensor not available",
	ErrSensorRead:        "Failed to read sensors",
	ErrDeviceNotFound:    "No supported device found",
	ErrDeviceConnect:     "Failed to connect to device",
	ErrDeviceStatus:      "Failed to read device status",
	ErrDeviceCommand:     "Failed to apply device command",
	ErrShutdownFailed:    "Shutdown failed",
	ErrTimeout:           "Operation timed out",
	ErrInitMetrics:       "Failed to initialize metrics",
	ErrCollectMetrics:    "Failed to collect metrics data",
	ErrInitTelemetry:     "Failed to initialize telemetry",
	ErrPublish:           "Failed to publish telemetry",
}

// GetErrorMessage returns the default message for a code.
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
