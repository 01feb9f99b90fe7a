package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/fh-car-models/internal/model"
)

func newBufferLogger(t *testing.T, component string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := Setup(Config{Level: slog.LevelDebug, Output: &buf, Component: component})
	require.NoError(t, err)
	return l, &buf
}

func TestPlainOutput(t *testing.T) {
	l, buf := newBufferLogger(t, "")

	l.Info("Lookup table loaded", "game", "FH5", "entries", 3)

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, " - INFO - Lookup table loaded game=FH5 entries=3")
	assert.NotContains(t, line, "\033[")
}

func TestComponentPrefix(t *testing.T) {
	l, buf := newBufferLogger(t, "")
	feed := l.WithComponent("feed")

	feed.Warn("Feed disconnected")

	assert.Contains(t, buf.String(), "WARN - [feed] Feed disconnected")
}

func TestColoredAttrs(t *testing.T) {
	var buf bytes.Buffer
	l, err := Setup(Config{Level: slog.LevelInfo, Output: &buf, Colored: true})
	require.NoError(t, err)

	l.Info("Car changed", "model", "Ford GT")

	assert.Contains(t, buf.String(), "model="+colorMagenta+"Ford GT"+colorReset)
}

func TestEventNotifies(t *testing.T) {
	l, buf := newBufferLogger(t, "")

	var (
		gotEvent  model.Event
		gotMsg    string
		gotFields map[string]string
	)
	l.SetNotifyFunc(func(_ context.Context, event model.Event, message string, fields map[string]string) {
		gotEvent, gotMsg, gotFields = event, message, fields
	})

	l.Event(context.Background(), model.EventCarChanged, "Car changed", "game", "FH5", "car_id", 101, "dangling")

	assert.Equal(t, model.EventCarChanged, gotEvent)
	assert.Equal(t, "🏎️ Car changed", gotMsg)
	assert.Equal(t, map[string]string{"game": "FH5", "car_id": "101"}, gotFields)
	assert.Contains(t, buf.String(), "event=CAR_CHANGED")
}

func TestDerivedLoggerSharesNotifyFunc(t *testing.T) {
	root := Discard()
	child := root.WithComponent("resolver")

	var calls int
	root.SetNotifyFunc(func(context.Context, model.Event, string, map[string]string) { calls++ })

	child.Event(context.Background(), model.EventTest, "ping")
	assert.Equal(t, 1, calls)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("Error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestGroupedAttrs(t *testing.T) {
	l, buf := newBufferLogger(t, "")

	l.WithGroup("feed").With("url", "ws://host").Info("Connected", "attempt", 2)

	assert.Contains(t, buf.String(), "Connected feed.url=ws://host feed.attempt=2")
}

func TestEveryRunnerEventHasEmoji(t *testing.T) {
	for _, event := range model.AllEvents() {
		if event == model.EventTest {
			continue
		}
		assert.Contains(t, eventEmoji, event, "event %s", event)
	}
}
