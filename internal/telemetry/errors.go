package telemetry

import "codeberg.org/mutker/coolctl/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidBroker = errors.ErrorCode("telemetry_invalid_broker")

	ErrConnect = errors.ErrInitTelemetry
	ErrPublish = errors.ErrPublish
	ErrTimeout = errors.ErrTimeout
)
