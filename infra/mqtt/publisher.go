// Package mqtt publishes simulation events to an MQTT broker so external
// dashboards can follow the world without polling the HTTP API.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/ridegrid/ridegrid/core/events"
	"github.com/ridegrid/ridegrid/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT publisher.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "ridegrid"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "ridegrid"
	}
}

// Publisher sends simulation events to a broker.
type Publisher interface {
	PublishEvent(topic string, payload any) error
	Close()
}

// Envelope wraps every published payload with a unique message id.
type Envelope struct {
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
	Event     any       `json:"event"`
}

// PahoPublisher implements Publisher using Eclipse Paho.
type PahoPublisher struct {
	cli    paho.Client
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPahoPublisher connects to the MQTT broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	log := logger.New("mqtt-publisher")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected") }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

// PublishEvent serialises the payload and publishes it under the configured
// topic prefix.
func (p *PahoPublisher) PublishEvent(topic string, payload any) error {
	data, err := json.Marshal(Envelope{
		MessageID: uuid.New().String(),
		SentAt:    time.Now().UTC(),
		Event:     payload,
	})
	if err != nil {
		return err
	}
	full := fmt.Sprintf("%s/%s", p.prefix, topic)
	if token := p.cli.Publish(full, p.qos, false, data); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() { p.cli.Disconnect(250) }

// TopicFor maps a bus event to its topic suffix. The empty string means the
// event is not published.
func TopicFor(ev any) string {
	switch ev.(type) {
	case events.AssignmentEvent:
		return "assignments"
	case events.TripCompletedEvent:
		return "trips"
	case events.RequestQueuedEvent:
		return "queue"
	case events.TickEvent:
		return "ticks"
	default:
		return ""
	}
}
