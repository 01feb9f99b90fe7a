// Package config handles loading, parsing, and validating the YAML
// configuration of the car model plugin and its host runner. It supports a
// .env file and environment variable overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/fh-car-models/internal/constants"
	"github.com/Guliveer/fh-car-models/internal/model"
)

// DefaultConfigPath is the default configuration file.
const DefaultConfigPath = "config.yaml"

// LoadDotEnv loads environment variables from path without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from a YAML file, then applies defaults and
// environment variable overrides. A missing file yields the default
// configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Games) == 0 {
		cfg.Games = append([]string(nil), constants.DefaultGames...)
	}

	if cfg.PropertyKey == "" {
		cfg.PropertyKey = constants.PropertyKey
	}

	if cfg.OnStop == "" {
		cfg.OnStop = model.StopKeep.String()
	}

	if cfg.Lookup.Path == "" {
		cfg.Lookup.Path = filepath.Join(constants.LookupDir, constants.SharedLookupFile)
	}
	if cfg.Lookup.Dir == "" {
		cfg.Lookup.Dir = filepath.Dir(cfg.Lookup.Path)
	}

	if cfg.Feed.ReconnectMin == 0 {
		cfg.Feed.ReconnectMin = constants.DefaultFeedReconnectMin
	}
	if cfg.Feed.ReconnectMax == 0 {
		cfg.Feed.ReconnectMax = constants.DefaultFeedReconnectMax
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = constants.DefaultServerAddr
	}

	if cfg.Chat.Command == "" {
		cfg.Chat.Command = constants.DefaultChatCommand
	}
}

// applyEnvOverrides overlays environment variables for secrets and
// deployment-specific locations.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOOKUP_PATH"); v != "" {
		cfg.Lookup.Path = v
	}

	if v := os.Getenv("FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}

	if v := os.Getenv("CHAT_TOKEN"); v != "" {
		cfg.Chat.Token = v
	}

	if cfg.Notifications.Telegram != nil {
		if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
			cfg.Notifications.Telegram.Token = v
		}
		if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
			cfg.Notifications.Telegram.ChatID = v
		}
	}

	if cfg.Notifications.Discord != nil {
		if v := os.Getenv("DISCORD_WEBHOOK"); v != "" {
			cfg.Notifications.Discord.WebhookURL = v
		}
	}

	if cfg.Notifications.Webhook != nil {
		if v := os.Getenv("WEBHOOK_URL"); v != "" {
			cfg.Notifications.Webhook.Endpoint = v
		}
	}

	if m := cfg.Notifications.Matrix; m != nil {
		if v := os.Getenv("MATRIX_HOMESERVER"); v != "" {
			m.Homeserver = v
		}
		if v := os.Getenv("MATRIX_ROOM_ID"); v != "" {
			m.RoomID = v
		}
		if v := os.Getenv("MATRIX_ACCESS_TOKEN"); v != "" {
			m.AccessToken = v
		}
	}

	if p := cfg.Notifications.Pushover; p != nil {
		if v := os.Getenv("PUSHOVER_USER_KEY"); v != "" {
			p.UserKey = v
		}
		if v := os.Getenv("PUSHOVER_API_TOKEN"); v != "" {
			p.APIToken = v
		}
	}

	if g := cfg.Notifications.Gotify; g != nil {
		if v := os.Getenv("GOTIFY_URL"); v != "" {
			g.URL = v
		}
		if v := os.Getenv("GOTIFY_TOKEN"); v != "" {
			g.Token = v
		}
	}
}

// Validate checks the configuration for common errors.
func Validate(cfg *Config) error {
	if cfg.GameSet().Len() == 0 {
		return fmt.Errorf("at least one supported game is required")
	}

	if _, ok := model.ParseStopPolicy(cfg.OnStop); !ok {
		return fmt.Errorf("on_stop must be %q or %q, got %q", model.StopKeep, model.StopClear, cfg.OnStop)
	}

	if strings.TrimSpace(cfg.PropertyKey) == "" {
		return fmt.Errorf("property_key must not be blank")
	}

	if cfg.Feed.ReconnectMin > cfg.Feed.ReconnectMax {
		return fmt.Errorf("feed.reconnect_min (%s) exceeds feed.reconnect_max (%s)", cfg.Feed.ReconnectMin, cfg.Feed.ReconnectMax)
	}

	if cfg.Feed.URL != "" && !strings.HasPrefix(cfg.Feed.URL, "ws://") && !strings.HasPrefix(cfg.Feed.URL, "wss://") {
		return fmt.Errorf("feed.url must be a ws:// or wss:// URL, got %q", cfg.Feed.URL)
	}

	if cfg.Chat.Enabled {
		if cfg.Chat.Username == "" || cfg.Chat.Channel == "" {
			return fmt.Errorf("chat enabled but username or channel not set")
		}
		if cfg.Chat.Token == "" {
			return fmt.Errorf("chat enabled but token not set (use env var CHAT_TOKEN)")
		}
	}

	if cfg.Notifications.Telegram != nil && cfg.Notifications.Telegram.Enabled {
		if cfg.Notifications.Telegram.Token == "" || cfg.Notifications.Telegram.ChatID == "" {
			return fmt.Errorf("telegram enabled but token or chat_id not set (use env vars TELEGRAM_TOKEN and TELEGRAM_CHAT_ID)")
		}
	}

	if cfg.Notifications.Discord != nil && cfg.Notifications.Discord.Enabled {
		if cfg.Notifications.Discord.WebhookURL == "" {
			return fmt.Errorf("discord enabled but webhook_url not set (use env var DISCORD_WEBHOOK)")
		}
	}

	if cfg.Notifications.Webhook != nil && cfg.Notifications.Webhook.Enabled {
		if cfg.Notifications.Webhook.Endpoint == "" {
			return fmt.Errorf("webhook enabled but endpoint not set (use env var WEBHOOK_URL)")
		}
	}

	if m := cfg.Notifications.Matrix; m != nil && m.Enabled {
		if m.Homeserver == "" || m.RoomID == "" || m.AccessToken == "" {
			return fmt.Errorf("matrix enabled but homeserver, room_id or access_token not set (use env vars MATRIX_HOMESERVER, MATRIX_ROOM_ID and MATRIX_ACCESS_TOKEN)")
		}
	}

	if p := cfg.Notifications.Pushover; p != nil && p.Enabled {
		if p.UserKey == "" || p.APIToken == "" {
			return fmt.Errorf("pushover enabled but user_key or api_token not set (use env vars PUSHOVER_USER_KEY and PUSHOVER_API_TOKEN)")
		}
	}

	if g := cfg.Notifications.Gotify; g != nil && g.Enabled {
		if g.URL == "" || g.Token == "" {
			return fmt.Errorf("gotify enabled but url or token not set (use env vars GOTIFY_URL and GOTIFY_TOKEN)")
		}
	}

	return nil
}
