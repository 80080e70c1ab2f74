package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/coolctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix      = "COOLCTL"
	DefaultConfigName     = "coolctl"
	DefaultInterval       = 2.0
	DefaultMaxTemperature = 60
	DefaultPumpMinDuty    = 50
	DefaultFanMinDuty     = 25
	DefaultMaxDuty        = 100
	DefaultSensor         = "kraken.coolant"
	DefaultMetricsDBPath  = "/var/lib/coolctl/metrics.db"
	DefaultBatchSize      = 10
	DefaultBatchTimeout   = 30
	DefaultTelemetryTopic = "coolctl"
	DefaultLogLevel       = LogLevelWarning
)

type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DBPath       string `mapstructure:"db_path"`
	BatchSize    int    `mapstructure:"batch_size"`
	BatchTimeout int    `mapstructure:"batch_timeout"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
}

type Config struct {
	Command     string `mapstructure:"-"`
	ShowHelp    bool   `mapstructure:"-"`
	ShowVersion bool   `mapstructure:"-"`
	ConfigFile  string `mapstructure:"-"`

	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`

	Pump       string  `mapstructure:"pump"`
	Fan        string  `mapstructure:"fan"`
	PumpSensor string  `mapstructure:"pump_sensor"`
	FanSensor  string  `mapstructure:"fan_sensor"`
	Interval   float64 `mapstructure:"interval"`
	Device     string  `mapstructure:"device"`
	Liquidctl  string  `mapstructure:"liquidctl"`
	PIDFile    string  `mapstructure:"pid_file"`

	MaxTemperature int `mapstructure:"max_temperature"`
	PumpMinDuty    int `mapstructure:"pump_min_duty"`
	FanMinDuty     int `mapstructure:"fan_min_duty"`
	MaxDuty        int `mapstructure:"max_duty"`

	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// IntervalDuration returns the polling interval.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval * float64(time.Second))
}

// EffectiveLogLevel resolves --log-level, --debug and --verbose, in that
// order of precedence.
func (c *Config) EffectiveLogLevel() LogLevel {
	switch {
	case c.LogLevel != "":
		return LogLevel(strings.ToLower(c.LogLevel))
	case c.Debug:
		return LogLevelDebug
	case c.Verbose:
		return LogLevelInfo
	}

	return DefaultLogLevel
}

// Load parses args (without the program name), then merges the config file
// and environment. Flags override the environment, which overrides the file.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{
		configPath: os.Getenv(DefaultEnvPrefix + "_CONFIG"),
		envPrefix:  DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	setDefaults(v)

	global := newGlobalFlags()
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return &Config{ShowHelp: true}, nil
		}
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	cfg := &Config{}
	cfg.ShowHelp, _ = global.GetBool("help")
	cfg.ShowVersion, _ = global.GetBool("version")
	if path, _ := global.GetString("config"); path != "" {
		o.configPath = path
	}
	if err := bindFlags(v, global, "debug", "verbose", "log-level"); err != nil {
		return nil, err
	}

	rest := global.Args()
	if len(rest) > 0 {
		cfg.Command = rest[0]
		sub, err := newCommandFlags(cfg.Command)
		if err != nil {
			return nil, err
		}
		if err := sub.Parse(rest[1:]); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				cfg.ShowHelp = true
				return cfg, nil
			}
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
		if sub.NArg() > 0 {
			return nil, errFactory.WithData(errors.ErrInvalidArgument, sub.Args())
		}
		if cfg.Command == CommandControl {
			if err := bindFlags(v, sub, "pump", "fan", "pump-sensor", "fan-sensor", "interval", "device"); err != nil {
				return nil, err
			}
		}
	}

	if err := readConfigFile(v, o.configPath); err != nil {
		return nil, err
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if cfg.ShowHelp || cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be expressed as flag types.
func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.Command {
	case CommandShowSensors, CommandControl:
	case "":
		return errFactory.WithMessage(errors.ErrUnknownCommand, "no command given; see --help")
	default:
		return errFactory.WithData(errors.ErrUnknownCommand, c.Command)
	}

	if !c.EffectiveLogLevel().IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.MaxTemperature <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("max_temperature must be positive, got %d", c.MaxTemperature))
	}
	if c.MaxDuty <= 0 || c.MaxDuty > DefaultMaxDuty {
		return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("max_duty must be between 1 and 100, got %d", c.MaxDuty))
	}
	for name, d := range map[string]int{"pump_min_duty": c.PumpMinDuty, "fan_min_duty": c.FanMinDuty} {
		if d < 0 || d > c.MaxDuty {
			return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("%s must be between 0 and %d, got %d", name, c.MaxDuty, d))
		}
	}

	if c.Command == CommandControl && (c.Pump == "" || c.Fan == "") {
		return errFactory.New(errors.ErrMissingProfile)
	}

	if c.Metrics.Enabled && c.Metrics.DBPath == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "metrics.db_path is required when metrics are enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.Broker == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "telemetry.broker is required when telemetry is enabled")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "")
	v.SetDefault("pump", "")
	v.SetDefault("fan", "")
	v.SetDefault("pump_sensor", DefaultSensor)
	v.SetDefault("fan_sensor", DefaultSensor)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("device", "")
	v.SetDefault("liquidctl", "")
	v.SetDefault("pid_file", "")
	v.SetDefault("max_temperature", DefaultMaxTemperature)
	v.SetDefault("pump_min_duty", DefaultPumpMinDuty)
	v.SetDefault("fan_min_duty", DefaultFanMinDuty)
	v.SetDefault("max_duty", DefaultMaxDuty)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.db_path", DefaultMetricsDBPath)
	v.SetDefault("metrics.batch_size", DefaultBatchSize)
	v.SetDefault("metrics.batch_timeout", DefaultBatchTimeout)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.broker", "")
	v.SetDefault("telemetry.topic", DefaultTelemetryTopic)
	v.SetDefault("telemetry.client_id", "")
}

func newGlobalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("coolctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() {}

	fs.BoolP("debug", "g", false, "Show debug information")
	fs.BoolP("verbose", "v", false, "Output additional information")
	fs.String("log-level", "", "Log level (debug, info, warning, error)")
	fs.String("config", "", "Path to configuration file")
	fs.Bool("version", false, "Display the version number")
	fs.BoolP("help", "h", false, "Show help")

	return fs
}

func newCommandFlags(command string) (*pflag.FlagSet, error) {
	fs := pflag.NewFlagSet(command, pflag.ContinueOnError)
	fs.Usage = func() {}

	switch command {
	case CommandShowSensors:
	case CommandControl:
		fs.String("pump", "", "Profile for pump duty: (temperature, duty) tuples or a fixed duty")
		fs.String("fan", "", "Profile for fan duty: (temperature, duty) tuples or a fixed duty")
		fs.String("pump-sensor", DefaultSensor, "Select alternate sensor for pump profile")
		fs.String("fan-sensor", DefaultSensor, "Select alternate sensor for fan profile")
		fs.Float64("interval", DefaultInterval, "Update interval in seconds")
		fs.String("device", "", "Select the device whose description contains this text")
	default:
		return nil, errors.New().WithData(errors.ErrUnknownCommand, command)
	}

	return fs, nil
}

// bindFlags binds the named flags to viper keys, mapping dashes to
// underscores.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		key := strings.ReplaceAll(name, "-", "_")
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return errors.New().Wrap(errors.ErrBindFlags, err)
		}
	}

	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, DefaultConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.New().Wrap(errors.ErrReadConfig, err)
	}

	return nil
}

// Usage describes the command line.
func Usage() string {
	return `Usage:
  coolctl [options] show-sensors
  coolctl [options] control --pump <profile> --fan <profile> [control options]
  coolctl --help
  coolctl --version

Control options:
  --pump <profile>          Profile for pump duty
  --fan <profile>           Profile for fan duty
  --pump-sensor <sensor>    Select alternate sensor for pump profile [default: kraken.coolant]
  --fan-sensor <sensor>     Select alternate sensor for fan profile [default: kraken.coolant]
  --interval <seconds>      Update interval in seconds [default: 2]
  --device <text>           Select the device whose description contains text

Other options:
  --config <path>           Path to configuration file
  --log-level <level>       Log level (debug, info, warning, error)
  -v, --verbose             Output additional information
  -g, --debug               Show debug information
  --version                 Display the version number
  -h, --help                Show this help

Profiles are comma-separated (temperature, duty) tuples, e.g.
"(20,30),(30,50),(34,80),(40,90)", or a single fixed duty, e.g. "35".
Full duty is always applied at the maximum temperature.
`
}
