package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/fh-car-models/internal/config"
	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/model"
)

type captured struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   []byte
}

func captureServer(t *testing.T, status int) (*httptest.Server, <-chan captured) {
	t.Helper()
	ch := make(chan captured, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		ch <- captured{method: r.Method, path: r.URL.Path, query: q, header: r.Header.Clone(), body: body}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func receive(t *testing.T, ch <-chan captured) captured {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("no request received")
		return captured{}
	}
}

var carChanged = Message{
	Event:  model.EventCarChanged,
	Title:  "Forza Car Models",
	Text:   "Car changed",
	Fields: map[string]string{"game": "FH5", "model": "Ford GT"},
}

func TestShouldNotify(t *testing.T) {
	def := newBase("Webhook", nil)
	assert.True(t, def.ShouldNotify(model.EventCarChanged))
	assert.True(t, def.ShouldNotify(model.EventLookupUnavailable))
	assert.True(t, def.ShouldNotify(model.EventTest))
	assert.False(t, def.ShouldNotify(model.EventCarUnknown))

	custom := newBase("Webhook", []string{"GAME_DETECTED", "BOGUS"})
	assert.True(t, custom.ShouldNotify(model.EventGameDetected))
	assert.False(t, custom.ShouldNotify(model.EventCarChanged))
	assert.Equal(t, []model.Event{model.EventGameDetected}, custom.events)
}

func TestWebhookPost(t *testing.T) {
	srv, ch := captureServer(t, http.StatusOK)
	w := &Webhook{baseNotifier: newBase("Webhook", nil), url: srv.URL, method: "post", httpClient: srv.Client()}

	require.NoError(t, w.Send(context.Background(), carChanged))

	got := receive(t, ch)
	assert.Equal(t, http.MethodPost, got.method)
	var payload webhookPayload
	require.NoError(t, json.Unmarshal(got.body, &payload))
	assert.Equal(t, "CAR_CHANGED", payload.Event)
	assert.Equal(t, "Car changed", payload.Message)
	assert.Equal(t, "Ford GT", payload.Fields["model"])
}

func TestWebhookGet(t *testing.T) {
	srv, ch := captureServer(t, http.StatusOK)
	w := &Webhook{baseNotifier: newBase("Webhook", nil), url: srv.URL + "/hook?token=abc", method: http.MethodGet, httpClient: srv.Client()}

	require.NoError(t, w.Send(context.Background(), carChanged))

	got := receive(t, ch)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/hook", got.path)
	assert.Equal(t, "abc", got.query["token"])
	assert.Equal(t, "CAR_CHANGED", got.query["event"])
	assert.Equal(t, "FH5", got.query["game"])
}

func TestWebhookErrors(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError)

	w := &Webhook{url: srv.URL, method: http.MethodPost, httpClient: srv.Client()}
	err := w.Send(context.Background(), carChanged)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")

	w.method = http.MethodPut
	err = w.Send(context.Background(), carChanged)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported method")
}

func TestDiscordPayload(t *testing.T) {
	srv, ch := captureServer(t, http.StatusNoContent)
	d := &Discord{baseNotifier: newBase("Discord", nil), webhookURL: srv.URL, httpClient: srv.Client()}

	require.NoError(t, d.Send(context.Background(), carChanged))

	var payload discordPayload
	require.NoError(t, json.Unmarshal(receive(t, ch).body, &payload))
	assert.Equal(t, "Forza Car Models", payload.Username)
	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]
	assert.Equal(t, discordColors[model.EventCarChanged], embed.Color)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "game", embed.Fields[0].Name)
	assert.Equal(t, "model", embed.Fields[1].Name)
}

func TestTelegram(t *testing.T) {
	srv, ch := captureServer(t, http.StatusOK)
	tg := &Telegram{baseNotifier: newBase("Telegram", nil), apiBase: srv.URL, token: "T0K", chatID: "42", httpClient: srv.Client()}

	require.NoError(t, tg.Send(context.Background(), Message{
		Event:  model.EventCarChanged,
		Title:  "Forza Car Models",
		Text:   "Car <changed>",
		Fields: map[string]string{"model": "Ford GT"},
	}))

	got := receive(t, ch)
	assert.Equal(t, "/botT0K/sendMessage", got.path)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(got.body, &payload))
	assert.Equal(t, "42", payload["chat_id"])
	text := payload["text"].(string)
	assert.True(t, strings.HasPrefix(text, "<b>Forza Car Models</b>\n"))
	assert.Contains(t, text, "Car &lt;changed&gt;")
	assert.Contains(t, text, "<i>model</i>: Ford GT")
}

func TestDispatcherFiltersEvents(t *testing.T) {
	srv, ch := captureServer(t, http.StatusOK)
	d := NewDispatcher(config.NotificationsConfig{
		Webhook: &config.WebhookConfig{Enabled: true, Endpoint: srv.URL, Events: []string{"CAR_CHANGED"}},
		Discord: &config.DiscordConfig{Enabled: false, WebhookURL: srv.URL},
	}, logger.Discard())
	require.True(t, d.HasNotifiers())

	notify := d.NotifyFunc()
	notify(context.Background(), model.EventCarUnknown, "Car not in lookup table", map[string]string{"car_id": "999"})
	notify(context.Background(), model.EventCarChanged, "Car changed", map[string]string{"model": "Ford GT"})

	var payload webhookPayload
	require.NoError(t, json.Unmarshal(receive(t, ch).body, &payload))
	assert.Equal(t, "CAR_CHANGED", payload.Event)
	assert.Equal(t, "Forza Car Models", payload.Title)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected request: %s", extra.body)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherWithoutProviders(t *testing.T) {
	d := NewDispatcher(config.NotificationsConfig{}, logger.Discard())
	assert.False(t, d.HasNotifiers())
	d.Dispatch(context.Background(), carChanged)
}

func TestFormatPlain(t *testing.T) {
	assert.Equal(t, "Car changed\ngame: FH5\nmodel: Ford GT", formatPlain(carChanged))
	assert.Equal(t, "ping", formatPlain(Message{Text: "ping"}))
}

func TestMatrix(t *testing.T) {
	srv, ch := captureServer(t, http.StatusOK)
	m := &Matrix{baseNotifier: newBase("Matrix", nil), homeserver: srv.URL, accessToken: "mx", roomID: "!room:example", httpClient: srv.Client()}

	require.NoError(t, m.Send(context.Background(), carChanged))
	require.NoError(t, m.Send(context.Background(), carChanged))

	first, second := receive(t, ch), receive(t, ch)
	assert.Equal(t, http.MethodPut, first.method)
	assert.True(t, strings.HasPrefix(first.path, "/_matrix/client/v3/rooms/!room:example/send/m.room.message/"))
	assert.NotEqual(t, first.path, second.path)
	assert.Equal(t, "Bearer mx", first.header.Get("Authorization"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(first.body, &payload))
	assert.Equal(t, "m.text", payload["msgtype"])
	assert.Equal(t, formatPlain(carChanged), payload["body"])
}

func TestMatrixHomeserverURL(t *testing.T) {
	assert.Equal(t, "https://matrix.org", (&Matrix{homeserver: "matrix.org"}).homeserverURL())
	assert.Equal(t, "http://localhost:8008", (&Matrix{homeserver: "http://localhost:8008/"}).homeserverURL())
}

func TestPushover(t *testing.T) {
	srv, ch := captureServer(t, http.StatusOK)
	p := &Pushover{baseNotifier: newBase("Pushover", nil), apiURL: srv.URL, token: "app", userKey: "user", httpClient: srv.Client()}

	require.NoError(t, p.Send(context.Background(), carChanged))
	require.NoError(t, p.Send(context.Background(), Message{Event: model.EventLookupUnavailable, Title: "Forza Car Models", Text: "Lookup table unavailable"}))

	form, err := url.ParseQuery(string(receive(t, ch).body))
	require.NoError(t, err)
	assert.Equal(t, "app", form.Get("token"))
	assert.Equal(t, "user", form.Get("user"))
	assert.Equal(t, formatPlain(carChanged), form.Get("message"))
	assert.Empty(t, form.Get("priority"))

	form, err = url.ParseQuery(string(receive(t, ch).body))
	require.NoError(t, err)
	assert.Equal(t, "1", form.Get("priority"))
}

func TestGotify(t *testing.T) {
	srv, ch := captureServer(t, http.StatusOK)
	g := &Gotify{baseNotifier: newBase("Gotify", nil), url: srv.URL + "/", token: "gt", httpClient: srv.Client()}

	require.NoError(t, g.Send(context.Background(), carChanged))

	got := receive(t, ch)
	assert.Equal(t, "/message", got.path)
	assert.Equal(t, "gt", got.header.Get("X-Gotify-Key"))

	var payload gotifyPayload
	require.NoError(t, json.Unmarshal(got.body, &payload))
	assert.Equal(t, 5, payload.Priority)
	fields, ok := payload.Extras["carmodels::fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ford GT", fields["model"])
}

func TestDispatcherBuildsPushProviders(t *testing.T) {
	d := NewDispatcher(config.NotificationsConfig{
		Matrix:   &config.MatrixConfig{Enabled: true, Homeserver: "matrix.org", RoomID: "!r", AccessToken: "t"},
		Pushover: &config.PushoverConfig{Enabled: true, UserKey: "u", APIToken: "a"},
		Gotify:   &config.GotifyConfig{Enabled: false},
	}, logger.Discard())

	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"Matrix", "Pushover"}, names)
}
