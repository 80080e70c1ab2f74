package sensors

import (
	"context"

	"codeberg.org/mutker/coolctl/internal/logger"
)

// Source is a host sensor backend.
type Source interface {
	Name() string
	ReadAll(ctx context.Context) ([]Sample, error)
	Close() error
}

// PlatformSources returns every host backend available on this machine.
// Backends that cannot be used here are left out rather than reported as
// errors.
func PlatformSources(log logger.Logger) []Source {
	var sources []Source

	if src, ok := platformSource(log); ok {
		sources = append(sources, src)
	}

	if src, ok := NewNVMLSource(log); ok {
		sources = append(sources, src)
	}

	for _, s := range sources {
		log.Debug().Str("source", s.Name()).Msg("Sensor source available")
	}

	return sources
}

// CloseAll releases every source, logging failures.
func CloseAll(sources []Source, log logger.Logger) {
	for _, s := range sources {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Str("source", s.Name()).Msg("Failed to close sensor source")
		}
	}
}
