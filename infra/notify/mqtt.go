package notify

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/relayops/modbalance/infra/logger"
)

// Config holds the MQTT notifier settings.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "modbalance"
	}
	if c.Topic == "" {
		c.Topic = "modbalance/runs"
	}
}

// Validate checks mandatory fields for an enabled notifier.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("notify broker is required")
	}
	return nil
}

type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTNotifier publishes run summaries as JSON on a configured topic.
type MQTTNotifier struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewMQTTNotifier connects to the broker.
func NewMQTTNotifier(cfg Config) (*MQTTNotifier, error) {
	log := logger.New("notify")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTNotifier{cli: c, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// NotifyRunComplete publishes the summary.
func (n *MQTTNotifier) NotifyRunComplete(s RunSummary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	token := n.cli.Publish(n.topic, n.qos, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publish timeout on %s", n.topic)
	}
	if err := token.Error(); err != nil {
		return err
	}
	n.log.Infof("run %s published on %s", s.RunID, n.topic)
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() error {
	n.cli.Disconnect(250)
	return nil
}
