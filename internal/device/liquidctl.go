package device

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
)

// Liquidctl is a Device backed by liquidctl invocations addressed by bus and
// address.
type Liquidctl struct {
	info      Info
	runner    Runner
	log       logger.Logger
	mu        sync.Mutex
	connected bool
}

func NewLiquidctl(info Info, runner Runner, log logger.Logger) *Liquidctl {
	return &Liquidctl{
		info:   info,
		runner: runner,
		log:    log.With("device", info.Description),
	}
}

// List returns every device liquidctl supports on this host.
func List(ctx context.Context, runner Runner) ([]Info, error) {
	errFactory := errors.New()

	out, err := runner.Run(ctx, "list", "--json")
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrDeviceNotFound, err)
	}

	var infos []Info
	if err := json.Unmarshal(out, &infos); err != nil {
		return nil, errFactory.Wrap(errors.ErrDeviceNotFound, err)
	}

	return infos, nil
}

// Find returns the first listed device whose description contains match
// (case-insensitive). An empty match selects the first device.
func Find(ctx context.Context, runner Runner, match string, log logger.Logger) (*Liquidctl, error) {
	infos, err := List(ctx, runner)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(match)
	for _, info := range infos {
		if needle == "" || strings.Contains(strings.ToLower(info.Description), needle) {
			log.Debug().
				Str("description", info.Description).
				Str("bus", info.Bus).
				Str("address", info.Address).
				Msg("Selected device")
			return NewLiquidctl(info, runner, log), nil
		}
	}

	return nil, errors.New().WithData(errors.ErrDeviceNotFound, match)
}

func (d *Liquidctl) Description() string {
	return d.info.Description
}

// Connect verifies that the device answers a status query.
func (d *Liquidctl) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return nil
	}

	if _, err := d.status(ctx); err != nil {
		return errors.New().Wrap(errors.ErrDeviceConnect, err)
	}

	d.connected = true
	d.log.Info().Msg("Connected")

	return nil
}

func (d *Liquidctl) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return errors.New().WithMessage(errors.ErrInvalidArgument, "device not connected")
	}

	d.connected = false
	d.log.Info().Msg("Disconnected")

	return nil
}

func (d *Liquidctl) Status(ctx context.Context) ([]StatusItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil, errors.New().WithMessage(errors.ErrDeviceStatus, "device not connected")
	}

	return d.status(ctx)
}

// SetSpeed sets a fixed duty on a channel.
func (d *Liquidctl) SetSpeed(ctx context.Context, channel string, duty int) error {
	errFactory := errors.New()
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return errFactory.WithMessage(errors.ErrDeviceCommand, "device not connected")
	}
	if duty < 0 || duty > 100 {
		return errFactory.WithData(errors.ErrInvalidArgument, "duty out of range")
	}

	args := append(d.selector(), "set", channel, "speed", strconv.Itoa(duty))
	if _, err := d.runner.Run(ctx, args...); err != nil {
		return errFactory.Wrap(errors.ErrDeviceCommand, err)
	}

	d.log.Debug().Str("channel", channel).Int("duty", duty).Msg("Set speed")

	return nil
}

func (d *Liquidctl) status(ctx context.Context) ([]StatusItem, error) {
	errFactory := errors.New()

	args := append(d.selector(), "status", "--json")
	out, err := d.runner.Run(ctx, args...)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrDeviceStatus, err)
	}

	var reports []struct {
		Description string       `json:"description"`
		Status      []StatusItem `json:"status"`
	}
	if err := json.Unmarshal(out, &reports); err != nil {
		return nil, errFactory.Wrap(errors.ErrDeviceStatus, err)
	}
	if len(reports) == 0 {
		return nil, errFactory.WithData(errors.ErrDeviceStatus, "empty status report")
	}

	return reports[0].Status, nil
}

func (d *Liquidctl) selector() []string {
	if d.info.Bus == "" || d.info.Address == "" {
		return nil
	}

	return []string{"--bus", d.info.Bus, "--address", d.info.Address}
}
