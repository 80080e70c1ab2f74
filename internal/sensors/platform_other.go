//go:build !linux

package sensors

import "codeberg.org/mutker/coolctl/internal/logger"

func platformSource(log logger.Logger) (Source, bool) {
	log.Debug().Msg("No host sensor backend for this platform")
	return nil, false
}
