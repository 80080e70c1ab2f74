// Package device drives liquid coolers through the liquidctl command line
// tool.
package device

import (
	"context"
	"strconv"
	"strings"
)

// Actuator channels.
const (
	ChannelPump = "pump"
	ChannelFan  = "fan"
)

// Device is a cooling device that reports status and accepts duty commands.
// Connect must succeed before Status or SetSpeed are used.
type Device interface {
	Description() string
	Connect(ctx context.Context) error
	Disconnect() error
	Status(ctx context.Context) ([]StatusItem, error)
	SetSpeed(ctx context.Context, channel string, duty int) error
}

// StatusItem is one (label, value, unit) entry of a device status report.
type StatusItem struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Unit  string `json:"unit"`
}

// Float returns the value as a number when it is one.
func (s StatusItem) Float() (float64, bool) {
	switch v := s.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}

	return 0, false
}

// Info identifies a device as listed by liquidctl.
type Info struct {
	Description  string `json:"description"`
	Bus          string `json:"bus"`
	Address      string `json:"address"`
	Driver       string `json:"driver"`
	SerialNumber string `json:"serial_number"`
	Experimental bool   `json:"experimental"`
}
