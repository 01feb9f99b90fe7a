package config

import (
	"time"

	"github.com/Guliveer/fh-car-models/internal/model"
)

// Config represents the full configuration of the plugin and its host runner.
// It is loaded from a YAML file and optionally overlaid with environment variables.
type Config struct {
	Games []string `yaml:"games"`

	PropertyKey string `yaml:"property_key"`

	OnStop string `yaml:"on_stop"`

	Lookup LookupConfig `yaml:"lookup"`

	Feed FeedConfig `yaml:"feed"`

	Server ServerConfig `yaml:"server"`

	Chat ChatConfig `yaml:"chat"`

	Notifications NotificationsConfig `yaml:"notifications"`
}

// LookupConfig holds the lookup table locations.
type LookupConfig struct {
	Path    string `yaml:"path"`
	PerGame bool   `yaml:"per_game"`
	Dir     string `yaml:"dir,omitempty"`
}

// FeedConfig holds the telemetry feed connection settings.
type FeedConfig struct {
	URL          string        `yaml:"url"`
	ReconnectMin time.Duration `yaml:"reconnect_min"`
	ReconnectMax time.Duration `yaml:"reconnect_max"`
}

// ServerConfig holds settings for the property HTTP server.
type ServerConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Addr    string `yaml:"addr"`
}

// ChatConfig holds settings for the stream chat announcer.
type ChatConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Token    string `yaml:"token,omitempty"`
	Channel  string `yaml:"channel"`
	Command  string `yaml:"command"`
	Announce bool   `yaml:"announce"`
}

// NotificationsConfig holds all notification provider configurations.
type NotificationsConfig struct {
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`
	Discord  *DiscordConfig  `yaml:"discord,omitempty"`
	Webhook  *WebhookConfig  `yaml:"webhook,omitempty"`
	Matrix   *MatrixConfig   `yaml:"matrix,omitempty"`
	Pushover *PushoverConfig `yaml:"pushover,omitempty"`
	Gotify   *GotifyConfig   `yaml:"gotify,omitempty"`
}

// TelegramConfig holds Telegram notification settings.
type TelegramConfig struct {
	Enabled             bool     `yaml:"enabled"`
	Token               string   `yaml:"token,omitempty"`
	ChatID              string   `yaml:"chat_id,omitempty"`
	Events              []string `yaml:"events"`
	DisableNotification bool     `yaml:"disable_notification"`
}

// DiscordConfig holds Discord notification settings.
type DiscordConfig struct {
	Enabled    bool     `yaml:"enabled"`
	WebhookURL string   `yaml:"webhook_url,omitempty"`
	Events     []string `yaml:"events"`
}

// WebhookConfig holds generic webhook notification settings.
type WebhookConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Endpoint string   `yaml:"endpoint,omitempty"`
	Method   string   `yaml:"method"`
	Events   []string `yaml:"events"`
}

// MatrixConfig holds Matrix notification settings.
type MatrixConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Homeserver  string   `yaml:"homeserver,omitempty"`
	RoomID      string   `yaml:"room_id,omitempty"`
	AccessToken string   `yaml:"access_token,omitempty"`
	Events      []string `yaml:"events"`
}

// PushoverConfig holds Pushover notification settings.
type PushoverConfig struct {
	Enabled  bool     `yaml:"enabled"`
	UserKey  string   `yaml:"user_key,omitempty"`
	APIToken string   `yaml:"api_token,omitempty"`
	Events   []string `yaml:"events"`
}

// GotifyConfig holds Gotify notification settings.
type GotifyConfig struct {
	Enabled bool     `yaml:"enabled"`
	URL     string   `yaml:"url,omitempty"`
	Token   string   `yaml:"token,omitempty"`
	Events  []string `yaml:"events"`
}

// GameSet returns the configured supported games.
func (c *Config) GameSet() model.GameSet {
	return model.NewGameSet(c.Games...)
}

// StopPolicy returns the parsed on_stop policy. Unknown values fall back to
// keep; Validate reports them.
func (c *Config) StopPolicy() model.StopPolicy {
	policy, _ := model.ParseStopPolicy(c.OnStop)
	return policy
}

// ServerEnabled returns whether the property HTTP server should run.
// If the Enabled field is not set (nil), it defaults to true.
func (s ServerConfig) ServerEnabled() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}
