package sensors

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
)

const (
	DefaultHwmonRoot = "/sys/class/hwmon"
	milliDegrees     = 1000.0
)

// HwmonSource reads temperature channels exposed by Linux hwmon drivers.
type HwmonSource struct {
	root string
	log  logger.Logger
}

func NewHwmonSource(root string, log logger.Logger) *HwmonSource {
	return &HwmonSource{root: root, log: log}
}

func (*HwmonSource) Name() string {
	return "hwmon"
}

// Available reports whether the hwmon class directory exists.
func (h *HwmonSource) Available() bool {
	info, err := os.Stat(h.root)
	return err == nil && info.IsDir()
}

func (*HwmonSource) Close() error {
	return nil
}

// ReadAll returns one sample per temp*_input channel, keyed by driver name and
// channel label. Channels without a label use the channel name (temp1).
func (h *HwmonSource) ReadAll(ctx context.Context) ([]Sample, error) {
	names, err := filepath.Glob(filepath.Join(h.root, "hwmon*", "name"))
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrSensorRead, err)
	}
	sortByIndex(names, func(path string) string {
		return strings.TrimPrefix(filepath.Base(filepath.Dir(path)), "hwmon")
	})

	var samples []Sample
	for _, namePath := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := filepath.Dir(namePath)
		module, err := readTrimmed(namePath)
		if err != nil || module == "" {
			h.log.Debug().Str("path", namePath).Msg("Skipping hwmon device without name")
			continue
		}

		for _, ch := range temperatureChannels(dir) {
			raw, err := readTrimmed(filepath.Join(dir, ch+"_input"))
			if err != nil {
				h.log.Debug().Err(err).Str("device", module).Str("channel", ch).Msg("Skipping unreadable channel")
				continue
			}
			milli, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				h.log.Debug().Str("device", module).Str("channel", ch).Str("value", raw).Msg("Skipping malformed channel")
				continue
			}

			label, err := readTrimmed(filepath.Join(dir, ch+"_label"))
			if err != nil || label == "" {
				label = ch
			}

			samples = append(samples, Sample{Key: Key(module, label), Celsius: milli / milliDegrees})
		}
	}

	return samples, nil
}

// temperatureChannels lists tempN channel names in a hwmon directory, ordered
// by N.
func temperatureChannels(dir string) []string {
	inputs, _ := filepath.Glob(filepath.Join(dir, "temp*_input"))

	channels := make([]string, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSuffix(filepath.Base(in), "_input")
		if _, err := strconv.Atoi(strings.TrimPrefix(name, "temp")); err != nil {
			continue
		}
		channels = append(channels, name)
	}
	sortByIndex(channels, func(name string) string {
		return strings.TrimPrefix(name, "temp")
	})

	return channels
}

// sortByIndex orders items by the integer that suffix extracts. Items
// without a numeric suffix sort last, by name.
func sortByIndex(items []string, suffix func(string) string) {
	index := func(s string) (int, bool) {
		n, err := strconv.Atoi(suffix(s))
		return n, err == nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, aok := index(items[i])
		b, bok := index(items[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		}
		return items[i] < items[j]
	})
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}
