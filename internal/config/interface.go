package config

// Subcommands.
const (
	CommandShowSensors = "show-sensors"
	CommandControl     = "control"
)

// Option adjusts how Load finds its sources.
type Option func(*options)

type options struct {
	configPath string
	envPrefix  string
}

// WithConfigFile loads an explicit configuration file instead of searching
// the default locations.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithEnvPrefix overrides the environment variable prefix. Default is
// "COOLCTL".
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

func (l LogLevel) String() string {
	return string(l)
}
