// Package notify forwards runner events to chat, push and webhook providers
// (Telegram, Discord, Matrix, Pushover, Gotify, generic webhook). Each
// provider picks the events it cares about.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Guliveer/fh-car-models/internal/config"
	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/model"
)

const (
	defaultHTTPTimeout = 5 * time.Second
	defaultTitle       = "Forza Car Models"
)

// defaultEvents is used by providers configured without an events list.
var defaultEvents = []model.Event{model.EventCarChanged, model.EventLookupUnavailable}

// Message is a single notification.
type Message struct {
	Event  model.Event
	Title  string
	Text   string
	Fields map[string]string
}

// FieldKeys returns the field names in sorted order.
func (m Message) FieldKeys() []string {
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatPlain renders the text followed by one "key: value" line per field.
func formatPlain(msg Message) string {
	var b strings.Builder
	b.WriteString(msg.Text)
	for _, k := range msg.FieldKeys() {
		fmt.Fprintf(&b, "\n%s: %s", k, msg.Fields[k])
	}
	return b.String()
}

// Notifier is implemented by every notification provider.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	Name() string
	ShouldNotify(event model.Event) bool
}

// Dispatcher fans a message out to the providers subscribed to its event.
type Dispatcher struct {
	notifiers []Notifier
	log       *logger.Logger
}

// NewDispatcher builds the enabled providers from cfg.
func NewDispatcher(cfg config.NotificationsConfig, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{log: log}

	httpClient := &http.Client{
		Timeout: defaultHTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		},
	}

	if t := cfg.Telegram; t != nil && t.Enabled {
		d.Add(&Telegram{
			baseNotifier:        newBase("Telegram", t.Events),
			apiBase:             telegramAPIBase,
			token:               t.Token,
			chatID:              t.ChatID,
			disableNotification: t.DisableNotification,
			httpClient:          httpClient,
		})
	}

	if dc := cfg.Discord; dc != nil && dc.Enabled {
		d.Add(&Discord{
			baseNotifier: newBase("Discord", dc.Events),
			webhookURL:   dc.WebhookURL,
			httpClient:   httpClient,
		})
	}

	if w := cfg.Webhook; w != nil && w.Enabled {
		method := w.Method
		if method == "" {
			method = http.MethodPost
		}
		d.Add(&Webhook{
			baseNotifier: newBase("Webhook", w.Events),
			url:          w.Endpoint,
			method:       method,
			httpClient:   httpClient,
		})
	}

	if m := cfg.Matrix; m != nil && m.Enabled {
		d.Add(&Matrix{
			baseNotifier: newBase("Matrix", m.Events),
			homeserver:   m.Homeserver,
			accessToken:  m.AccessToken,
			roomID:       m.RoomID,
			httpClient:   httpClient,
		})
	}

	if p := cfg.Pushover; p != nil && p.Enabled {
		d.Add(&Pushover{
			baseNotifier: newBase("Pushover", p.Events),
			apiURL:       pushoverAPIURL,
			token:        p.APIToken,
			userKey:      p.UserKey,
			httpClient:   httpClient,
		})
	}

	if g := cfg.Gotify; g != nil && g.Enabled {
		d.Add(&Gotify{
			baseNotifier: newBase("Gotify", g.Events),
			url:          g.URL,
			token:        g.Token,
			httpClient:   httpClient,
		})
	}

	return d
}

// Add registers a provider.
func (d *Dispatcher) Add(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Dispatch sends msg to every provider subscribed to its event. Sends run in
// their own goroutines; failures are logged.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	if msg.Title == "" {
		msg.Title = defaultTitle
	}
	for _, n := range d.notifiers {
		if !n.ShouldNotify(msg.Event) {
			continue
		}
		go func(notifier Notifier) {
			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultHTTPTimeout)
			defer cancel()
			if err := notifier.Send(sendCtx, msg); err != nil {
				d.log.Warn("Notification send failed",
					"provider", notifier.Name(),
					"event", string(msg.Event),
					"error", err,
				)
			}
		}(n)
	}
}

// NotifyFunc adapts the Dispatcher to the logger's event callback.
func (d *Dispatcher) NotifyFunc() logger.NotifyFunc {
	return func(ctx context.Context, event model.Event, message string, fields map[string]string) {
		d.Dispatch(ctx, Message{Event: event, Text: message, Fields: fields})
	}
}

// HasNotifiers reports whether any provider is configured.
func (d *Dispatcher) HasNotifiers() bool {
	return len(d.notifiers) > 0
}

func parseEvents(names []string) []model.Event {
	if len(names) == 0 {
		return defaultEvents
	}
	events := make([]model.Event, 0, len(names))
	for _, name := range names {
		if e := model.ParseEvent(name); e != "" {
			events = append(events, e)
		}
	}
	return events
}
