package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/coolctl/internal/config"
	"codeberg.org/mutker/coolctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coolctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
pump = "(20,50),(40,100)"
fan = "35"
fan_sensor = "coretemp.package_id_0"
interval = 5
max_temperature = 55
fan_min_duty = 30
log_level = "info"

[metrics]
enabled = true
db_path = "/tmp/coolctl/metrics.db"
batch_size = 3

[telemetry]
enabled = true
broker = "tcp://localhost:1883"
topic = "home/cooling"
`)
	t.Setenv("COOLCTL_CONFIG", path)

	cfg, err := config.Load([]string{"control"})
	require.NoError(t, err)

	assert.Equal(t, config.CommandControl, cfg.Command)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "(20,50),(40,100)", cfg.Pump)
	assert.Equal(t, "35", cfg.Fan)
	assert.Equal(t, config.DefaultSensor, cfg.PumpSensor)
	assert.Equal(t, "coretemp.package_id_0", cfg.FanSensor)
	assert.Equal(t, 5*time.Second, cfg.IntervalDuration())
	assert.Equal(t, 55, cfg.MaxTemperature)
	assert.Equal(t, config.DefaultPumpMinDuty, cfg.PumpMinDuty)
	assert.Equal(t, 30, cfg.FanMinDuty)
	assert.Equal(t, config.LogLevelInfo, cfg.EffectiveLogLevel())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/tmp/coolctl/metrics.db", cfg.Metrics.DBPath)
	assert.Equal(t, 3, cfg.Metrics.BatchSize)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.Telemetry.Broker)
	assert.Equal(t, "home/cooling", cfg.Telemetry.Topic)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COOLCTL_CONFIG", "")

	cfg, err := config.Load([]string{"show-sensors"})
	require.NoError(t, err)

	assert.Equal(t, config.CommandShowSensors, cfg.Command)
	assert.Equal(t, 2*time.Second, cfg.IntervalDuration())
	assert.Equal(t, config.DefaultSensor, cfg.PumpSensor)
	assert.Equal(t, config.DefaultSensor, cfg.FanSensor)
	assert.Equal(t, 60, cfg.MaxTemperature)
	assert.Equal(t, 50, cfg.PumpMinDuty)
	assert.Equal(t, 25, cfg.FanMinDuty)
	assert.Equal(t, 100, cfg.MaxDuty)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, config.DefaultBatchTimeout, cfg.Metrics.BatchTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.PIDFile)
	assert.Equal(t, config.DefaultLogLevel, cfg.EffectiveLogLevel())
}

func TestLoadFlags(t *testing.T) {
	path := writeConfig(t, `
pump = "40"
fan = "40"
interval = 5
`)
	t.Setenv("COOLCTL_CONFIG", path)

	cfg, err := config.Load([]string{
		"--debug", "control",
		"--pump", "(20,60),(40,90)",
		"--fan-sensor", "nvidia.gpu_0",
		"--interval", "0.5",
	})
	require.NoError(t, err)

	assert.Equal(t, "(20,60),(40,90)", cfg.Pump, "flag overrides file")
	assert.Equal(t, "40", cfg.Fan, "file value kept")
	assert.Equal(t, "nvidia.gpu_0", cfg.FanSensor)
	assert.Equal(t, 500*time.Millisecond, cfg.IntervalDuration())
	assert.Equal(t, config.LogLevelDebug, cfg.EffectiveLogLevel())
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("COOLCTL_CONFIG", "")
	t.Setenv("COOLCTL_FAN_MIN_DUTY", "40")
	t.Setenv("COOLCTL_METRICS_BATCH_SIZE", "7")

	cfg, err := config.Load([]string{"control", "--pump", "60", "--fan", "60"})
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.FanMinDuty)
	assert.Equal(t, 7, cfg.Metrics.BatchSize)
}

func TestLoadEnvPrefix(t *testing.T) {
	t.Setenv("COOLCTL_CONFIG", "")
	t.Setenv("KRAKEN_PUMP_SENSOR", "coretemp.package_id_0")
	t.Setenv("COOLCTL_PUMP_SENSOR", "ignored")

	cfg, err := config.Load([]string{"control", "--pump", "60", "--fan", "60"}, config.WithEnvPrefix("KRAKEN"))
	require.NoError(t, err)
	assert.Equal(t, "coretemp.package_id_0", cfg.PumpSensor)
}

func TestLoadHelpAndVersion(t *testing.T) {
	t.Setenv("COOLCTL_CONFIG", "")

	cfg, err := config.Load([]string{"--help"})
	require.NoError(t, err)
	assert.True(t, cfg.ShowHelp)

	cfg, err = config.Load([]string{"--version"})
	require.NoError(t, err)
	assert.True(t, cfg.ShowVersion)

	cfg, err = config.Load([]string{"control", "--help"})
	require.NoError(t, err)
	assert.True(t, cfg.ShowHelp)

	assert.Contains(t, config.Usage(), "show-sensors")
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("COOLCTL_CONFIG", "")

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"no command", nil, errors.ErrUnknownCommand},
		{"unknown command", []string{"status"}, errors.ErrUnknownCommand},
		{"missing fan profile", []string{"control", "--pump", "50"}, errors.ErrMissingProfile},
		{"zero interval", []string{"control", "--pump", "50", "--fan", "50", "--interval", "0"}, errors.ErrInvalidInterval},
		{"bad interval", []string{"control", "--interval", "soon"}, errors.ErrBindFlags},
		{"unknown flag", []string{"show-sensors", "--pump", "50"}, errors.ErrBindFlags},
		{"extra argument", []string{"show-sensors", "now"}, errors.ErrInvalidArgument},
		{"bad log level", []string{"--log-level", "loud", "show-sensors"}, errors.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.args)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("COOLCTL_CONFIG", path)

	_, err := config.Load([]string{"show-sensors"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoadInvalidDutyBounds(t *testing.T) {
	path := writeConfig(t, `
fan_min_duty = 120
`)

	_, err := config.Load([]string{"show-sensors"}, config.WithConfigFile(path))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
}
