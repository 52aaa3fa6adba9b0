package notify

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/relayops/modbalance/core/balancer"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connectErr   error
	publishErr   error
	published    [][]byte
	topics       []string
	disconnected bool
}

func (c *fakeClient) Connect() paho.Token { return &fakeToken{err: c.connectErr} }
func (c *fakeClient) Disconnect(uint)     { c.disconnected = true }
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topics = append(c.topics, topic)
	c.published = append(c.published, payload.([]byte))
	return &fakeToken{err: c.publishErr}
}

func withFakeClient(t *testing.T, c *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return c }
	t.Cleanup(func() { newMQTTClient = orig })
}

func TestNotifyRunComplete(t *testing.T) {
	fake := &fakeClient{}
	withFakeClient(t, fake)

	n, err := NewMQTTNotifier(Config{Enabled: true, Broker: "tcp://localhost:1883", Topic: "balance/runs"})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	sum := Summarize(&balancer.Result{RunID: "run-1", Objective: 3.5, MovedCount: 2}, time.Now())
	if err := n.NotifyRunComplete(sum); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(fake.published) != 1 || fake.topics[0] != "balance/runs" {
		t.Fatalf("published %d messages on %v", len(fake.published), fake.topics)
	}
	var decoded RunSummary
	if err := json.Unmarshal(fake.published[0], &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.RunID != "run-1" || decoded.MovedInstances != 2 {
		t.Fatalf("payload = %+v", decoded)
	}

	if err := n.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !fake.disconnected {
		t.Fatal("close did not disconnect")
	}
}

func TestNotifyConnectError(t *testing.T) {
	withFakeClient(t, &fakeClient{connectErr: errors.New("refused")})
	if _, err := NewMQTTNotifier(Config{Enabled: true, Broker: "tcp://localhost:1883"}); err == nil {
		t.Fatal("expected a connect error")
	}
}

func TestNotifyPublishError(t *testing.T) {
	fake := &fakeClient{publishErr: errors.New("broker gone")}
	withFakeClient(t, fake)

	n, err := NewMQTTNotifier(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	if err := n.NotifyRunComplete(RunSummary{RunID: "run-1"}); err == nil {
		t.Fatal("expected a publish error")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error without a broker")
	}
	cfg.SetDefaults()
	if cfg.ClientID == "" || cfg.Topic == "" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	disabled := Config{}
	if err := disabled.Validate(); err != nil {
		t.Fatalf("disabled notifier rejected: %v", err)
	}
}
