// Command covertrans bridges raw shairport-sync metadata to the display:
// it subscribes to the source topic tree, converts cover art into the
// packed monochrome bitmap format, and republishes every subtopic under
// the extension base with MQTT retention so late subscribers catch up.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/soundshelf/coverscreen/internal/coverimg"
	"github.com/soundshelf/coverscreen/internal/event"
)

type translator struct {
	log      *zap.Logger
	client   paho.Client
	topicIn  string
	topicOut string
	size     int
}

func main() {
	_ = godotenv.Load()

	host := flag.String("host", envOr("MQTT_BROKER", "localhost"), "broker host")
	port := flag.Int("port", envIntOr("MQTT_PORT", 1883), "broker port")
	user := flag.String("user", envOr("MQTT_USER", ""), "broker username")
	pass := flag.String("password", envOr("MQTT_PASS", ""), "broker password")
	topicIn := flag.String("topic-in", envOr("MQTT_TOPIC_IN", "iotstack/shairport"), "source topic base")
	topicOut := flag.String("topic-out", envOr("MQTT_TOPIC_OUT", "iotstack/shairport-extension"), "destination topic base")
	size := flag.Int("size", 48, "cover edge length in pixels")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	var (
		logger *zap.Logger
		err    error
	)
	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Println("logger init error:", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	t := &translator{
		log:      logger,
		topicIn:  strings.TrimSuffix(*topicIn, "/"),
		topicOut: strings.TrimSuffix(*topicOut, "/"),
		size:     *size,
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", *host, *port)).
		SetClientID(clientID()).
		SetAutoReconnect(true).
		SetOnConnectHandler(t.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("broker connection lost", zap.Error(err))
		})
	if *user != "" {
		opts.SetUsername(*user)
		opts.SetPassword(*pass)
	}
	t.client = paho.NewClient(opts)

	if token := t.client.Connect(); token.Wait() && token.Error() != nil {
		logger.Fatal("broker connect failed", zap.Error(token.Error()))
	}
	logger.Info("covertrans running",
		zap.String("in", t.topicIn),
		zap.String("out", t.topicOut),
		zap.Int("cover_size", t.size))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	t.client.Disconnect(250)
	logger.Info("covertrans stopped")
}

func (t *translator) onConnect(c paho.Client) {
	topic := t.topicIn + "/#"
	if token := c.Subscribe(topic, 0, t.onMessage); token.Wait() && token.Error() != nil {
		t.log.Error("subscribe failed", zap.String("topic", topic), zap.Error(token.Error()))
		return
	}
	t.log.Info("subscribed", zap.String("topic", topic))
}

func (t *translator) onMessage(_ paho.Client, msg paho.Message) {
	if !strings.HasPrefix(msg.Topic(), t.topicIn+"/") {
		return
	}
	sub := msg.Topic()[len(t.topicIn)+1:]
	out := t.topicOut + "/" + sub
	payload := msg.Payload()

	// Covers are converted; the "no cover" sentinel passes through as-is.
	if sub == "cover" && string(payload) != event.ClearSentinel {
		converted, err := coverimg.Convert(payload, t.size)
		if err != nil {
			t.log.Warn("cover convert failed", zap.Int("bytes", len(payload)), zap.Error(err))
			return
		}
		t.log.Debug("cover converted", zap.Int("in", len(payload)), zap.Int("out", len(converted)))
		payload = converted
	}

	if token := t.client.Publish(out, 0, true, payload); token.Wait() && token.Error() != nil {
		t.log.Error("publish failed", zap.String("topic", out), zap.Error(token.Error()))
	}
}

func clientID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return "covertrans-" + host
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
