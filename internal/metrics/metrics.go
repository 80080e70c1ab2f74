// Package metrics keeps an optional SQLite history of control loop ticks.
package metrics

import (
	"context"

	"codeberg.org/mutker/coolctl/internal/controller"
	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
)

type service struct {
	repo Repository
}

type noopCollector struct{}

// NewService returns a SQLite-backed collector, or a no-op collector when
// metrics are disabled.
func NewService(cfg Config, log logger.Logger) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Metrics collection disabled, using no-op collector")
		return &noopCollector{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &service{repo: repo}, nil
}

func (s *service) Observe(ctx context.Context, tick controller.Tick) error {
	errFactory := errors.New()

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	if err := s.repo.Record(newTickRecord(tick)); err != nil {
		return errFactory.Wrap(ErrMetricsCollection, err)
	}

	return nil
}

func (s *service) Close() error {
	return s.repo.Close()
}

func (*noopCollector) Observe(context.Context, controller.Tick) error {
	return nil
}

func (*noopCollector) Close() error {
	return nil
}
