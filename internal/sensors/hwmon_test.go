package sensors_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/coolctl/internal/logger"
	"codeberg.org/mutker/coolctl/internal/sensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func TestHwmonReadAll(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"hwmon0/name":        "acpitz\n",
		"hwmon0/temp1_input": "27800\n",

		"hwmon1/name":         "coretemp\n",
		"hwmon1/temp1_input":  "48000\n",
		"hwmon1/temp1_label":  "Package id 0\n",
		"hwmon1/temp10_input": "45000\n",
		"hwmon1/temp10_label": "Core 8\n",
		"hwmon1/temp2_input":  "46000\n",
		"hwmon1/temp2_label":  "Core 0\n",

		"hwmon2/name":        "broken\n",
		"hwmon2/temp1_input": "n/a\n",

		"hwmon3/temp1_input": "30000\n",
	})

	src := sensors.NewHwmonSource(root, logger.Nop())
	require.True(t, src.Available())

	samples, err := src.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []sensors.Sample{
		{Key: "acpitz.temp1", Celsius: 27.8},
		{Key: "coretemp.package_id_0", Celsius: 48},
		{Key: "coretemp.core_0", Celsius: 46},
		{Key: "coretemp.core_8", Celsius: 45},
	}, samples)
}

func TestHwmonDeviceOrderIsNumeric(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"hwmon10/name":        "nvme\n",
		"hwmon10/temp1_input": "38000\n",
		"hwmon2/name":         "k10temp\n",
		"hwmon2/temp1_input":  "51000\n",
		"hwmon2/temp1_label":  "Tctl\n",
		"hwmon1/name":         "amdgpu\n",
		"hwmon1/temp1_input":  "44000\n",
		"hwmon1/temp1_label":  "edge\n",
	})

	samples, err := sensors.NewHwmonSource(root, logger.Nop()).ReadAll(context.Background())
	require.NoError(t, err)

	keys := make([]string, 0, len(samples))
	for _, s := range samples {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"amdgpu.edge", "k10temp.tctl", "nvme.temp1"}, keys)
}

func TestHwmonUnavailable(t *testing.T) {
	src := sensors.NewHwmonSource(filepath.Join(t.TempDir(), "missing"), logger.Nop())
	assert.False(t, src.Available())

	samples, err := src.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, samples)
}
