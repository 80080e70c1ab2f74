package sensors

import (
	"context"

	"codeberg.org/mutker/coolctl/internal/device"
	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
)

// LiquidTemperatureLabel is the status entry published under DefaultKey.
const LiquidTemperatureLabel = "Liquid temperature"

// StatusReader is the part of a device the aggregator needs.
type StatusReader interface {
	Status(ctx context.Context) ([]device.StatusItem, error)
}

// Aggregator merges the device's liquid temperature with host sensors.
type Aggregator struct {
	device  StatusReader
	sources []Source
	log     logger.Logger
}

// NewAggregator creates an aggregator. dev may be nil when no device is
// connected.
func NewAggregator(dev StatusReader, sources []Source, log logger.Logger) *Aggregator {
	return &Aggregator{device: dev, sources: sources, log: log}
}

// Read takes a fresh snapshot: the device sensor first, then host sensors in
// source order. A failing host source is skipped; a device that cannot report
// its liquid temperature is an error.
func (a *Aggregator) Read(ctx context.Context) (*Reading, error) {
	errFactory := errors.New()
	reading := NewReading()

	if a.device != nil {
		status, err := a.device.Status(ctx)
		if err != nil {
			return nil, err
		}

		temp, ok := liquidTemperature(status)
		if !ok {
			return nil, errFactory.WithData(errors.ErrSensorUnavailable, DefaultKey)
		}
		reading.Set(DefaultKey, temp)
	}

	for _, src := range a.sources {
		samples, err := src.ReadAll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.log.Warn().Err(err).Str("source", src.Name()).Msg("Failed to read sensor source")
			continue
		}
		for _, s := range samples {
			reading.Set(s.Key, s.Celsius)
		}
	}

	return reading, nil
}

func liquidTemperature(status []device.StatusItem) (float64, bool) {
	for _, item := range status {
		if item.Key != LiquidTemperatureLabel {
			continue
		}
		if v, ok := item.Float(); ok {
			return v, true
		}
	}

	return 0, false
}
