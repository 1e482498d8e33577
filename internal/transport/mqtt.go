// Package transport connects the session to the MQTT broker. Payloads are
// decoded into event variants right here, at the subscription boundary;
// reconnect pacing stays with the session, which calls Connect on its own
// cooldown and Reset after repeated failures.
package transport

import (
	"errors"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/soundshelf/coverscreen/internal/event"
)

const (
	keepAlive      = 60 * time.Second
	connectTimeout = 4 * time.Second
	publishTimeout = 2 * time.Second

	// eventBuffer absorbs bursts (retained messages replay on subscribe).
	// Arrival order is preserved; overflow drops the newest with a log.
	eventBuffer = 64
)

// ErrTimeout is returned when the broker does not answer within the
// operation deadline.
var ErrTimeout = errors.New("transport: broker operation timed out")

// Options configures the broker connection.
type Options struct {
	BrokerURL string
	Username  string
	Password  string
	ClientID  string
	TopicBase string

	// RemoteToggle also subscribes to the display on/off topic.
	RemoteToggle bool
}

// MQTT is the paho-backed transport. Auto-reconnect is off: the session
// owns the retry cadence.
type MQTT struct {
	opts   Options
	log    *zap.Logger
	client paho.Client
	events chan event.Event
}

func New(opts Options, log *zap.Logger) *MQTT {
	t := &MQTT{
		opts:   opts,
		log:    log,
		events: make(chan event.Event, eventBuffer),
	}
	t.client = t.newClient()
	return t
}

// Events delivers decoded inbound events in arrival order.
func (t *MQTT) Events() <-chan event.Event { return t.events }

func (t *MQTT) Connected() bool { return t.client.IsConnectionOpen() }

// Connect attempts one bounded connection. Callers pace their retries.
func (t *MQTT) Connect() error {
	token := t.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return ErrTimeout
	}
	return token.Error()
}

// Reset tears the client down and builds a fresh one. Used as the
// escalation after a run of failed connects.
func (t *MQTT) Reset() {
	if t.client.IsConnectionOpen() {
		t.client.Disconnect(250)
	}
	t.client = t.newClient()
	t.log.Info("transport reset", zap.String("broker", t.opts.BrokerURL))
}

// PublishDisplayState publishes the display power state retained, so
// controllers coming online later still see the current value.
func (t *MQTT) PublishDisplayState(on bool) error {
	topic := t.opts.TopicBase + "/display_state"
	token := t.client.Publish(topic, 0, true, event.FormatBoolToken(on))
	if !token.WaitTimeout(publishTimeout) {
		return ErrTimeout
	}
	return token.Error()
}

func (t *MQTT) Close() {
	if t.client.IsConnectionOpen() {
		t.client.Disconnect(250)
	}
}

func (t *MQTT) newClient() paho.Client {
	co := paho.NewClientOptions().
		AddBroker(t.opts.BrokerURL).
		SetClientID(t.clientID()).
		SetKeepAlive(keepAlive).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetCleanSession(true).
		SetOnConnectHandler(t.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			t.log.Warn("broker connection lost", zap.Error(err))
		})
	if t.opts.Username != "" {
		co.SetUsername(t.opts.Username)
		co.SetPassword(t.opts.Password)
	}
	return paho.NewClient(co)
}

func (t *MQTT) clientID() string {
	if t.opts.ClientID != "" {
		return t.opts.ClientID
	}
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return "coverscreen-" + host
}

func (t *MQTT) onConnect(c paho.Client) {
	subs := []string{
		"cover", "artist", "title",
		"play_start", "play_resume", "play_end",
		"active_start", "active_end",
	}
	if t.opts.RemoteToggle {
		subs = append(subs, "display")
	}
	for _, sub := range subs {
		topic := t.opts.TopicBase + "/" + sub
		token := c.Subscribe(topic, 0, t.onMessage)
		if token.Wait() && token.Error() != nil {
			t.log.Error("subscribe failed", zap.String("topic", topic), zap.Error(token.Error()))
		}
	}
	t.log.Info("subscribed", zap.String("base", t.opts.TopicBase), zap.Int("topics", len(subs)))
}

func (t *MQTT) onMessage(_ paho.Client, msg paho.Message) {
	sub := strings.TrimPrefix(msg.Topic(), t.opts.TopicBase+"/")
	ev, err := event.Decode(sub, msg.Payload())
	if err != nil {
		t.log.Debug("ignoring message", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}
	select {
	case t.events <- ev:
	default:
		t.log.Warn("event queue full, dropping", zap.String("topic", msg.Topic()))
	}
}
