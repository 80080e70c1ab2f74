package metrics

import (
	"time"

	"codeberg.org/mutker/coolctl/internal/controller"
)

// Collector stores completed control loop ticks.
type Collector interface {
	controller.Observer
	Close() error
}

// Repository persists tick records.
type Repository interface {
	Record(record *TickRecord) error
	Close() error
}

// TickRecord is the stored form of a controller tick.
type TickRecord struct {
	Timestamp       time.Time
	PumpSensor      string
	PumpTemperature float64
	PumpDuty        int
	FanSensor       string
	FanTemperature  float64
	FanDuty         int
}

func newTickRecord(t controller.Tick) *TickRecord {
	return &TickRecord{
		Timestamp:       t.Time,
		PumpSensor:      t.PumpSensor,
		PumpTemperature: t.PumpTemperature,
		PumpDuty:        t.PumpDuty,
		FanSensor:       t.FanSensor,
		FanTemperature:  t.FanTemperature,
		FanDuty:         t.FanDuty,
	}
}

var (
	_ Collector = (*service)(nil)
	_ Collector = (*noopCollector)(nil)
)
