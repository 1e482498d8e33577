// Package config loads the daemon configuration: a YAML file for geometry
// and behavior, with broker credentials overlaid from the environment so
// secrets stay out of config files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML fields written as "5m" or "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// MQTT holds the broker connection settings. Username and password
// normally arrive via MQTT_USER / MQTT_PASS rather than the YAML file.
type MQTT struct {
	Broker    string `yaml:"broker"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	TopicBase string `yaml:"topic_base"`
	ClientID  string `yaml:"client_id"`
}

// Screen holds the display geometry. Rotation unifies the two mounting
// variants; 180 flips the frame for an upside-down panel.
type Screen struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	CoverSize    int    `yaml:"cover_size"`
	CoverOffsetX int    `yaml:"cover_offset_x"`
	Rotation     int    `yaml:"rotation"`
	Device       string `yaml:"device"`
}

// Fonts selects the TrueType file and per-region point sizes. An empty
// path uses the built-in bitmap face.
type Fonts struct {
	Path       string  `yaml:"path"`
	ArtistSize float64 `yaml:"artist_size"`
	TitleSize  float64 `yaml:"title_size"`
	LabelSize  float64 `yaml:"label_size"`
}

// Behavior holds the timeouts and policy switches.
type Behavior struct {
	ActivityTimeout    Duration `yaml:"activity_timeout"`
	PendingTimeout     Duration `yaml:"pending_timeout"`
	Tick               Duration `yaml:"tick"`
	ReconnectCooldown  Duration `yaml:"reconnect_cooldown"`
	ResetAfterFailures int      `yaml:"reset_after_failures"`
	ShowPlaceholders   bool     `yaml:"show_placeholders"`
	RemoteToggle       bool     `yaml:"remote_toggle"`
	OfflineQR          bool     `yaml:"offline_qr"`
}

type Config struct {
	MQTT     MQTT     `yaml:"mqtt"`
	Screen   Screen   `yaml:"screen"`
	Fonts    Fonts    `yaml:"fonts"`
	Behavior Behavior `yaml:"behavior"`
}

// Default mirrors the reference firmware: 128×64 panel, 48 px cover,
// 5 minute activity timeout.
func Default() Config {
	return Config{
		MQTT: MQTT{
			Broker:    "localhost",
			Port:      1883,
			TopicBase: "iotstack/shairport-extension",
		},
		Screen: Screen{
			Width:     128,
			Height:    64,
			CoverSize: 48,
			Device:    "/dev/fb0",
		},
		Fonts: Fonts{
			ArtistSize: 12,
			TitleSize:  14,
			LabelSize:  12,
		},
		Behavior: Behavior{
			ActivityTimeout:    Duration(5 * time.Minute),
			PendingTimeout:     Duration(10 * time.Second),
			Tick:               Duration(100 * time.Millisecond),
			ReconnectCooldown:  Duration(5 * time.Second),
			ResetAfterFailures: 5,
			ShowPlaceholders:   true,
			RemoteToggle:       true,
		},
	}
}

// Load reads the YAML file at path (empty path keeps defaults), applies
// environment overrides, and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv uses the same variable names as the reference scripts.
func (c *Config) applyEnv() {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.MQTT.Port = p
		}
	}
	if v := os.Getenv("MQTT_USER"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASS"); v != "" {
		c.MQTT.Password = v
	}
	if v := os.Getenv("MQTT_TOPIC_BASE"); v != "" {
		c.MQTT.TopicBase = v
	}
}

func (c Config) Validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("config: bad screen size %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Screen.CoverSize <= 0 || c.Screen.CoverSize > c.Screen.Height {
		return fmt.Errorf("config: cover size %d does not fit a %d px tall screen", c.Screen.CoverSize, c.Screen.Height)
	}
	if c.Screen.CoverSize*c.Screen.CoverSize%8 != 0 {
		return fmt.Errorf("config: cover size %d does not pack to whole bytes", c.Screen.CoverSize)
	}
	if c.Screen.Rotation != 0 && c.Screen.Rotation != 180 {
		return fmt.Errorf("config: rotation must be 0 or 180, got %d", c.Screen.Rotation)
	}
	if c.Behavior.Tick.Std() <= 0 {
		return fmt.Errorf("config: tick must be positive")
	}
	if c.Behavior.ActivityTimeout.Std() <= 0 || c.Behavior.PendingTimeout.Std() <= 0 {
		return fmt.Errorf("config: timeouts must be positive")
	}
	if c.MQTT.Broker == "" || c.MQTT.Port <= 0 {
		return fmt.Errorf("config: broker %q:%d is not usable", c.MQTT.Broker, c.MQTT.Port)
	}
	if c.MQTT.TopicBase == "" {
		return fmt.Errorf("config: topic_base must not be empty")
	}
	return nil
}

// BrokerURL is the paho connection URL.
func (c Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTT.Broker, c.MQTT.Port)
}
