package notify

import (
	"slices"

	"github.com/Guliveer/fh-car-models/internal/model"
)

// baseNotifier carries the name and event subscription shared by providers.
type baseNotifier struct {
	name   string
	events []model.Event
}

func newBase(name string, events []string) baseNotifier {
	return baseNotifier{name: name, events: parseEvents(events)}
}

// Name returns the provider name.
func (b *baseNotifier) Name() string { return b.name }

// ShouldNotify reports whether the provider is subscribed to event. TEST is
// always delivered.
func (b *baseNotifier) ShouldNotify(event model.Event) bool {
	return event == model.EventTest || slices.Contains(b.events, event)
}
