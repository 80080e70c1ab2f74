package metrics

import "codeberg.org/mutker/coolctl/internal/errors"

const defaultDirPerm = 0o755

type Config struct {
	Enabled bool
	DBPath  string
	// BatchSize is the number of ticks buffered before a write.
	BatchSize int
	// BatchTimeout flushes a partial batch after this many seconds; zero
	// disables the periodic flush.
	BatchTimeout int
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, "batch settings must not be negative")
	}

	return nil
}
