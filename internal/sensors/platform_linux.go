//go:build linux

package sensors

import "codeberg.org/mutker/coolctl/internal/logger"

func platformSource(log logger.Logger) (Source, bool) {
	src := NewHwmonSource(DefaultHwmonRoot, log)
	if !src.Available() {
		log.Debug().Str("root", DefaultHwmonRoot).Msg("hwmon not available")
		return nil, false
	}

	return src, true
}
