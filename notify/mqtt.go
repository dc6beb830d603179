package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/types"
)

const publishTimeout = 5 * time.Second

type alertPayload struct {
	Message        string                `json:"message"`
	Classification prices.Classification `json:"classification"`
	Price          float64               `json:"price"`
	StartDate      time.Time             `json:"startDate"`
	EndDate        time.Time             `json:"endDate"`
	Lower          float64               `json:"lower"`
	Upper          float64               `json:"upper"`
	At             time.Time             `json:"at"`
}

type statusPayload struct {
	Current        types.PricePoint      `json:"current"`
	Next           types.PricePoint      `json:"next"`
	Classification prices.Classification `json:"classification"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// Mqtt publishes alerts to "<topic>/alert" and the latest prices, retained, to "<topic>/status".
type Mqtt struct {
	client mqtt.Client
	logger *slog.Logger
	topic  string
}

func NewMqtt(broker string, port int16, username, password, topic string) *Mqtt {
	logger := slog.Default().With("module", "mqtt")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID(fmt.Sprintf("spotprice-%d", time.Now().Unix()))
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected", slog.String("broker", broker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqtt.CRITICAL = newMqttLogger(logger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(logger, slog.LevelError)
	mqtt.WARN = newMqttLogger(logger, slog.LevelWarn)

	return &Mqtt{
		client: mqtt.NewClient(opts),
		logger: logger,
		topic:  strings.TrimSuffix(topic, "/"),
	}
}

func (m *Mqtt) Connect() error {
	m.logger.Debug("connecting MQTT client")
	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (m *Mqtt) Disconnect() {
	m.logger.Info("disconnecting MQTT client")
	m.client.Disconnect(250)
}

func (m *Mqtt) Notify(ctx context.Context, a prices.Alert) error {
	return m.publish(ctx, m.topic+"/alert", false, alertPayload{
		Message:        a.Message(),
		Classification: a.Classification,
		Price:          a.Point.Price,
		StartDate:      a.Point.StartDate,
		EndDate:        a.Point.EndDate,
		Lower:          a.Limits.Lower,
		Upper:          a.Limits.Upper,
		At:             a.At,
	})
}

func (m *Mqtt) PublishStatus(ctx context.Context, current, next types.PricePoint, c prices.Classification, updatedAt time.Time) error {
	return m.publish(ctx, m.topic+"/status", true, statusPayload{
		Current:        current,
		Next:           next,
		Classification: c,
		UpdatedAt:      updatedAt,
	})
}

func (m *Mqtt) publish(ctx context.Context, topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding mqtt payload: %w", err)
	}

	token := m.client.Publish(topic, 1, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publishing to %s: %w", topic, ctx.Err())
	case <-time.After(publishTimeout):
		return fmt.Errorf("timeout when publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	m.logger.Debug("published", slog.String("topic", topic))
	return nil
}
