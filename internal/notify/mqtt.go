// Package notify publishes the countdown to an MQTT broker so status
// bars and home-automation setups can subscribe to it.
package notify

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
	"github.com/smokyabdulrahman/salah-clock/internal/watch"
)

const (
	qos            = 1
	publishTimeout = 5 * time.Second
	disconnectWait = 250 // ms
)

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Message is the retained payload published on every change.
type Message struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Time      string    `json:"time"`
	Remaining string    `json:"remaining"`
	Minutes   int       `json:"minutes"`
	Wrapped   bool      `json:"wrapped"`
	At        time.Time `json:"at"`
	Error     string    `json:"error,omitempty"`
}

// NewClient connects to broker (e.g. tcp://localhost:1883).
func NewClient(broker, clientID string, log zerolog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("connected to mqtt broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("mqtt connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, token.Error())
	}
	return client, nil
}

// Publisher is a watch.Sink publishing each update to one topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	lang   string
	log    zerolog.Logger
}

// NewPublisher publishes to topic over client. lang selects the Label.
func NewPublisher(client mqtt.Client, topic, lang string, log zerolog.Logger) *Publisher {
	return &Publisher{client: client, topic: topic, lang: lang, log: log}
}

// Publish sends one update as a retained message.
func (p *Publisher) Publish(u watch.Update) error {
	msg := Message{At: u.Reading.At}
	if u.Err != nil {
		msg.Error = u.Err.Error()
	} else {
		msg.Name = u.Result.Name
		msg.Label = prayer.Label(u.Result.Name, p.lang)
		msg.Time = u.Result.Time
		msg.Remaining = u.Result.Remaining
		msg.Minutes = u.Result.Minutes
		msg.Wrapped = u.Result.Wrapped
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mqtt message: %w", err)
	}

	token := p.client.Publish(p.topic, qos, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	return nil
}

// Send implements watch.Sink. Failures are logged.
func (p *Publisher) Send(u watch.Update) {
	if err := p.Publish(u); err != nil {
		p.log.Warn().Err(err).Str("topic", p.topic).Msg("mqtt publish failed")
		return
	}
	p.log.Debug().
		Str("topic", p.topic).
		Str("prayer", u.Result.Name).
		Str("remaining", u.Result.Remaining).
		Msg("published next prayer")
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(disconnectWait)
}
