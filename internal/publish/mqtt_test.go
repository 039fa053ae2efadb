package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/muurk/bleradar/internal/discovery"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  interface{}
}

type fakeClient struct {
	connected    bool
	publishErr   error
	messages     []message
	disconnected bool
}

func (c *fakeClient) Connect() pahomqtt.Token { return newToken(nil) }
func (c *fakeClient) IsConnected() bool       { return c.connected }
func (c *fakeClient) Disconnect(uint)         { c.disconnected = true }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	c.messages = append(c.messages, message{topic, qos, retained, payload})
	return newToken(c.publishErr)
}

func TestMQTT_PublishRetained(t *testing.T) {
	client := &fakeClient{connected: true}
	m := newMQTT(MQTTConfig{Prefix: "home/ble", QoS: 1}, client)

	if err := m.Publish(context.Background(), sampleSnapshot("hci0", 3)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(client.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(client.messages))
	}
	msg := client.messages[0]
	if msg.topic != "home/ble/hci0/snapshot" {
		t.Errorf("topic = %q", msg.topic)
	}
	if !msg.retained || msg.qos != 1 {
		t.Errorf("retained = %v, qos = %d, want true, 1", msg.retained, msg.qos)
	}

	var got discovery.Snapshot
	if err := json.Unmarshal(msg.payload.([]byte), &got); err != nil {
		t.Fatal(err)
	}
	if got.Cycle != 3 || len(got.Devices) != 1 {
		t.Errorf("payload = %+v", got)
	}
}

func TestMQTT_NotConnected(t *testing.T) {
	m := newMQTT(MQTTConfig{}, &fakeClient{})
	if err := m.Publish(context.Background(), sampleSnapshot("a", 1)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() = %v, want ErrNotConnected", err)
	}
}

func TestMQTT_PublishError(t *testing.T) {
	m := newMQTT(MQTTConfig{}, &fakeClient{connected: true, publishErr: errors.New("refused")})
	if err := m.Publish(context.Background(), sampleSnapshot("a", 1)); err == nil {
		t.Error("Publish() should surface the broker error")
	}
}

func TestMQTT_Close(t *testing.T) {
	client := &fakeClient{connected: true}
	m := newMQTT(MQTTConfig{ClientID: "radar-1"}, client)

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if !client.disconnected {
		t.Error("Close() did not disconnect")
	}
	if len(client.messages) != 1 || client.messages[0].topic != "bleradar/status" {
		t.Fatalf("messages = %+v, want one status message", client.messages)
	}
	var status map[string]string
	if err := json.Unmarshal([]byte(client.messages[0].payload.(string)), &status); err != nil {
		t.Fatal(err)
	}
	if status["status"] != "offline" || status["client_id"] != "radar-1" {
		t.Errorf("status payload = %v", status)
	}
}

func TestTopics(t *testing.T) {
	if got := SnapshotTopic("bleradar/", "sim0"); got != "bleradar/sim0/snapshot" {
		t.Errorf("SnapshotTopic() = %q", got)
	}
	if got := StatusTopic("bleradar"); got != "bleradar/status" {
		t.Errorf("StatusTopic() = %q", got)
	}
}
