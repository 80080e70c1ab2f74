// Package sensors collects temperature readings from the cooling device and
// from the host into a single keyed snapshot.
package sensors

import "strings"

// DefaultKey is the key of the device's liquid temperature, the sensor
// profiles are driven by unless another one is selected.
const DefaultKey = "kraken.coolant"

// Sample is a single named temperature in degrees Celsius.
type Sample struct {
	Key     string
	Celsius float64
}

// Reading is a flat snapshot of sensor values. Keys keep discovery order for
// display; lookups are by key only.
type Reading struct {
	keys   []string
	values map[string]float64
}

func NewReading() *Reading {
	return &Reading{values: make(map[string]float64)}
}

// Set stores a value. A repeated key keeps its original position.
func (r *Reading) Set(key string, celsius float64) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = celsius
}

func (r *Reading) Get(key string) (float64, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Reading) Len() int {
	return len(r.keys)
}

// Samples returns the values in discovery order.
func (r *Reading) Samples() []Sample {
	out := make([]Sample, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Sample{Key: k, Celsius: r.values[k]})
	}

	return out
}

// Key builds a sensor key from a hardware module name and a channel label:
// "coretemp" and "Package id 0" become "coretemp.package_id_0".
func Key(module, label string) string {
	return module + "." + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}
