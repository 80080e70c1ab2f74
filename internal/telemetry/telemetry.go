// Package telemetry publishes control loop ticks to an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"codeberg.org/mutker/coolctl/internal/controller"
	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends each completed tick to the broker.
type Publisher interface {
	controller.Observer
	Close() error
}

// Client is the subset of mqtt.Client used for publishing.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
	Disconnect(quiesce uint)
}

// Status is the JSON payload published on <topic>/status.
type Status struct {
	Timestamp int64   `json:"timestamp"`
	Pump      Channel `json:"pump"`
	Fan       Channel `json:"fan"`
}

type Channel struct {
	Sensor      string  `json:"sensor"`
	Temperature float64 `json:"temperature"`
	Duty        int     `json:"duty"`
}

type publisher struct {
	client Client
	topic  string
	logger logger.Logger
}

type noopPublisher struct{}

var (
	_ Publisher = (*publisher)(nil)
	_ Publisher = (*noopPublisher)(nil)
)

// NewPublisher connects to the configured broker, or returns a no-op
// publisher when telemetry is disabled.
func NewPublisher(cfg Config, log logger.Logger) (Publisher, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Telemetry disabled, using no-op publisher")
		return &noopPublisher{}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.clientID()).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultConnectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, errFactory.WithData(ErrConnect, cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, errFactory.Wrap(ErrConnect, err)
	}

	log.Info().
		Str("broker", cfg.Broker).
		Str("topic", cfg.topic()).
		Msg("Connected to MQTT broker")

	return NewPublisherWithClient(client, cfg.topic(), log), nil
}

// NewPublisherWithClient wraps an already connected client.
func NewPublisherWithClient(client Client, topic string, log logger.Logger) Publisher {
	if topic == "" {
		topic = defaultTopic
	}
	return &publisher{client: client, topic: topic, logger: log}
}

// StatusTopic is the topic ticks are published on.
func StatusTopic(base string) string {
	return base + "/status"
}

// NewStatus converts a tick into its published form.
func NewStatus(t controller.Tick) Status {
	return Status{
		Timestamp: t.Time.Unix(),
		Pump: Channel{
			Sensor:      t.PumpSensor,
			Temperature: t.PumpTemperature,
			Duty:        t.PumpDuty,
		},
		Fan: Channel{
			Sensor:      t.FanSensor,
			Temperature: t.FanTemperature,
			Duty:        t.FanDuty,
		},
	}
}

func (p *publisher) Observe(ctx context.Context, tick controller.Tick) error {
	errFactory := errors.New()

	payload, err := json.Marshal(NewStatus(tick))
	if err != nil {
		return errFactory.Wrap(ErrPublish, err)
	}

	token := p.client.Publish(StatusTopic(p.topic), 0, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return errFactory.Wrap(ErrTimeout, ctx.Err())
	case <-time.After(defaultPublishTimeout):
		return errFactory.WithData(ErrTimeout, StatusTopic(p.topic))
	}

	if err := token.Error(); err != nil {
		return errFactory.Wrap(ErrPublish, err)
	}

	p.logger.Debug().
		Str("topic", StatusTopic(p.topic)).
		Int("pump_duty", tick.PumpDuty).
		Int("fan_duty", tick.FanDuty).
		Msg("Published tick")

	return nil
}

func (p *publisher) Close() error {
	p.client.Disconnect(disconnectQuiesceMs)
	p.logger.Info().Msg("Disconnected from MQTT broker")
	return nil
}

func (*noopPublisher) Observe(context.Context, controller.Tick) error {
	return nil
}

func (*noopPublisher) Close() error {
	return nil
}
