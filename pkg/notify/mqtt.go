package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

const (
	alertQoS = 1

	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 2 * time.Second
)

var ErrMQTTConnect = errors.New("notify: mqtt connection failed")

// Publisher is the part of mqtt.Client the notifier uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTNotifier publishes notifications as JSON to
// <prefix>/<kind>/<id>/alerts. Notify hands the message to the client and
// returns; delivery is confirmed in the background.
type MQTTNotifier struct {
	client   Publisher
	prefix   string
	timeout  time.Duration
	inFlight sync.WaitGroup
}

func NewMQTTNotifier(client Publisher, topicPrefix string) *MQTTNotifier {
	return &MQTTNotifier{
		client:  client,
		prefix:  topicPrefix,
		timeout: defaultPublishTimeout,
	}
}

func (m *MQTTNotifier) Topic(kind device.Kind, deviceID string) string {
	return fmt.Sprintf("%s/%s/%s/alerts", m.prefix, kind, deviceID)
}

func (m *MQTTNotifier) Notify(n device.Notification) {
	topic := m.Topic(n.Kind, n.DeviceID)
	logger := common.GetCategoryLogger(common.LoggerNameNotify, common.LoggerCategoryMqtt, zap.String("topic", topic))

	payload, err := json.Marshal(n)
	if err != nil {
		logger.Error("Failed to encode notification", zap.Error(err))
		return
	}

	token := m.client.Publish(topic, alertQoS, false, payload)
	m.inFlight.Add(1)
	go func() {
		defer m.inFlight.Done()
		m.confirm(token, logger)
	}()
}

func (m *MQTTNotifier) confirm(token mqtt.Token, logger *zap.Logger) {
	if !token.WaitTimeout(m.timeout) {
		logger.Error("Notification publish timed out", zap.Duration("timeout", m.timeout))
		return
	}
	if err := token.Error(); err != nil {
		logger.Error("Notification publish failed", zap.Error(err))
		return
	}

	logger.Info("Notification published")
}

// Wait blocks until every published notification is confirmed or has timed
// out.
func (m *MQTTNotifier) Wait() {
	m.inFlight.Wait()
}

// ConnectMQTT connects a client with auto-reconnect enabled.
func ConnectMQTT(broker string, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)

	logger := common.GetCategoryLogger(common.LoggerNameNotify, common.LoggerCategoryMqtt, zap.String("broker", broker))
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrMQTTConnect, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMQTTConnect, err)
	}

	logger.Info("MQTT connected", zap.String("client_id", clientID))
	return client, nil
}
