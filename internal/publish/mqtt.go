package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/bleradar/internal/discovery"
	"github.com/muurk/bleradar/internal/logging"
)

const (
	// defaultConnectTimeout is the maximum time to wait for the initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for a publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time in milliseconds allowed for pending
	// operations on disconnect.
	defaultDisconnectQuiesce = 1000

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// DefaultTopicPrefix is used when no prefix is configured.
	DefaultTopicPrefix = "bleradar"
)

// MQTTConfig describes the broker connection.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Prefix   string
	QoS      byte
}

// mqttClient is the subset of the paho client used for publishing.
type mqttClient interface {
	Connect() pahomqtt.Token
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes each snapshot as a retained JSON message on
// <prefix>/<adapter>/snapshot, so a new subscriber always receives the
// latest cycle. <prefix>/status carries online/offline with a broker-held
// last will.
type MQTT struct {
	cfg    MQTTConfig
	client mqttClient
}

// ConnectMQTT connects to the broker and announces the online status.
func ConnectMQTT(cfg MQTTConfig) (*MQTT, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultTopicPrefix
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("invalid MQTT QoS %d", cfg.QoS)
	}

	opts := buildClientOptions(cfg)
	m := &MQTT{cfg: cfg}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		logging.Info("MQTT connected", zap.String("broker", cfg.Broker))
		m.publishStatus("online")
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logging.Warn("MQTT connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
	})

	m.client = pahomqtt.NewClient(opts)
	token := m.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: connect timeout after %v", ErrNotConnected, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	return m, nil
}

func newMQTT(cfg MQTTConfig, client mqttClient) *MQTT {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultTopicPrefix
	}
	return &MQTT{cfg: cfg, client: client}
}

func buildClientOptions(cfg MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	// The broker publishes this if we disappear without a clean disconnect.
	opts.SetWill(StatusTopic(cfg.Prefix), statusPayload(cfg.ClientID, "offline"), 1, true)
	return opts
}

// SnapshotTopic returns the retained topic for an adapter's snapshots.
func SnapshotTopic(prefix, adapter string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + adapter + "/snapshot"
}

// StatusTopic returns the online/offline topic.
func StatusTopic(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/status"
}

func statusPayload(clientID, status string) string {
	return fmt.Sprintf(`{"status":%q,"client_id":%q,"timestamp":%q}`,
		status, clientID, time.Now().UTC().Format(time.RFC3339))
}

func (m *MQTT) publishStatus(status string) {
	m.client.Publish(StatusTopic(m.cfg.Prefix), 1, true, statusPayload(m.cfg.ClientID, status))
}

// Publish implements Publisher.
func (m *MQTT) Publish(ctx context.Context, snap *discovery.Snapshot) error {
	if !m.client.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	topic := SnapshotTopic(m.cfg.Prefix, snap.Adapter)
	token := m.client.Publish(topic, m.cfg.QoS, true, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(defaultPublishTimeout):
		return fmt.Errorf("%w: %s after %v", ErrPublishTimeout, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Close publishes a graceful offline status and disconnects.
func (m *MQTT) Close() error {
	if m.client == nil {
		return nil
	}
	if m.client.IsConnected() {
		token := m.client.Publish(StatusTopic(m.cfg.Prefix), 1, true, statusPayload(m.cfg.ClientID, "offline"))
		token.WaitTimeout(defaultPublishTimeout)
	}
	m.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}
