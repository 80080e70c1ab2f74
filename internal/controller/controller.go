// Package controller runs the sense, compute, actuate loop that drives the
// pump and fan from temperature profiles.
package controller

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/coolctl/internal/device"
	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
	"codeberg.org/mutker/coolctl/internal/profile"
	"codeberg.org/mutker/coolctl/internal/sensors"
)

type State int32

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Running {
		return "running"
	}

	return "stopped"
}

// Config selects the profiles and the sensors that feed them.
type Config struct {
	PumpProfile profile.Profile
	FanProfile  profile.Profile
	PumpSensor  string
	FanSensor   string
	Interval    time.Duration
}

// SensorReader produces a fresh reading on every call.
type SensorReader interface {
	Read(ctx context.Context) (*sensors.Reading, error)
}

// Tick is the outcome of one completed loop iteration.
type Tick struct {
	Time            time.Time
	PumpSensor      string
	PumpTemperature float64
	PumpDuty        int
	FanSensor       string
	FanTemperature  float64
	FanDuty         int
}

// Observer receives every completed tick. Observer errors are logged and do
// not stop the loop.
type Observer interface {
	Observe(ctx context.Context, tick Tick) error
}

type Controller struct {
	cfg       Config
	dev       device.Device
	reader    SensorReader
	observers []Observer
	log       logger.Logger
	state     atomic.Int32
}

func New(cfg Config, dev device.Device, reader SensorReader, log logger.Logger, observers ...Observer) (*Controller, error) {
	errFactory := errors.New()

	if cfg.Interval <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, cfg.Interval)
	}
	if cfg.PumpSensor == "" {
		cfg.PumpSensor = sensors.DefaultKey
	}
	if cfg.FanSensor == "" {
		cfg.FanSensor = sensors.DefaultKey
	}

	c := &Controller{
		cfg:       cfg,
		dev:       dev,
		reader:    reader,
		observers: observers,
		log:       log,
	}
	c.state.Store(int32(Stopped))

	return c, nil
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

// Run connects the device and loops until ctx is cancelled or a tick fails.
// Cancellation, including during connect, returns nil. The device is
// disconnected exactly once on every exit path after a successful connect.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.dev.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			c.log.Info().Msg("Control loop stopped: cancelled before start")
			return nil
		}
		return err
	}
	defer func() {
		if err := c.dev.Disconnect(); err != nil {
			c.log.Error().Err(err).Msg("Failed to disconnect device")
		}
	}()

	c.state.Store(int32(Running))
	defer c.state.Store(int32(Stopped))

	c.log.Info().
		Str("pump_profile", c.cfg.PumpProfile.String()).
		Str("pump_sensor", c.cfg.PumpSensor).
		Str("fan_profile", c.cfg.FanProfile.String()).
		Str("fan_sensor", c.cfg.FanSensor).
		Dur("interval", c.cfg.Interval).
		Msg("Starting control loop")

	for {
		tick, err := c.Tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info().Msg("Control loop stopped: cancelled")
				return nil
			}
			return err
		}

		c.notify(ctx, tick)

		if !sleep(ctx, c.cfg.Interval) {
			c.log.Info().Msg("Control loop stopped: cancelled")
			return nil
		}
	}
}

// sleep waits for d and reports false if ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Tick performs a single sense, compute, actuate cycle.
func (c *Controller) Tick(ctx context.Context) (Tick, error) {
	reading, err := c.reader.Read(ctx)
	if err != nil {
		return Tick{}, err
	}

	pumpTemp, err := lookup(reading, c.cfg.PumpSensor)
	if err != nil {
		return Tick{}, err
	}
	fanTemp, err := lookup(reading, c.cfg.FanSensor)
	if err != nil {
		return Tick{}, err
	}

	tick := Tick{
		Time:            time.Now(),
		PumpSensor:      c.cfg.PumpSensor,
		PumpTemperature: pumpTemp,
		PumpDuty:        Duty(c.cfg.PumpProfile, pumpTemp),
		FanSensor:       c.cfg.FanSensor,
		FanTemperature:  fanTemp,
		FanDuty:         Duty(c.cfg.FanProfile, fanTemp),
	}

	if err := c.dev.SetSpeed(ctx, device.ChannelPump, tick.PumpDuty); err != nil {
		return Tick{}, err
	}
	if err := c.dev.SetSpeed(ctx, device.ChannelFan, tick.FanDuty); err != nil {
		return Tick{}, err
	}

	c.log.Info().
		Str("pump_sensor", tick.PumpSensor).
		Float64("pump_temperature", tick.PumpTemperature).
		Int("pump_duty", tick.PumpDuty).
		Str("fan_sensor", tick.FanSensor).
		Float64("fan_temperature", tick.FanTemperature).
		Int("fan_duty", tick.FanDuty).
		Msg("")

	return tick, nil
}

// Duty evaluates a profile at a temperature and rounds to a whole percent.
func Duty(p profile.Profile, temperature float64) int {
	return int(math.Round(profile.Interpolate(p, temperature)))
}

func (c *Controller) notify(ctx context.Context, tick Tick) {
	for _, o := range c.observers {
		if err := o.Observe(ctx, tick); err != nil {
			c.log.Warn().Err(err).Msg("Failed to record tick")
		}
	}
}

func lookup(reading *sensors.Reading, key string) (float64, error) {
	v, ok := reading.Get(key)
	if !ok {
		return 0, errors.New().WithData(errors.ErrSensorUnavailable, key)
	}

	return v, nil
}
