package telemetry

import (
	"time"

	"codeberg.org/mutker/coolctl/internal/errors"
)

const (
	defaultTopic          = "coolctl"
	defaultClientID       = "coolctl"
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesceMs   = 250
)

type Config struct {
	Enabled  bool
	Broker   string
	Topic    string
	ClientID string
}

func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return errors.New().New(ErrInvalidBroker)
	}
	return nil
}

func (c Config) topic() string {
	if c.Topic == "" {
		return defaultTopic
	}
	return c.Topic
}

func (c Config) clientID() string {
	if c.ClientID == "" {
		return defaultClientID
	}
	return c.ClientID
}
