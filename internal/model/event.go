package model

// Event represents a plugin event type for notification filtering and logging.
type Event string

// All supported plugin events.
const (
	EventGameDetected      Event = "GAME_DETECTED"
	EventGameStopped       Event = "GAME_STOPPED"
	EventCarChanged        Event = "CAR_CHANGED"
	EventCarUnknown        Event = "CAR_UNKNOWN"
	EventLookupLoaded      Event = "LOOKUP_LOADED"
	EventLookupUnavailable Event = "LOOKUP_UNAVAILABLE"
	EventTest              Event = "TEST"
)

// AllEvents returns a slice of all defined events.
func AllEvents() []Event {
	return []Event{
		EventGameDetected,
		EventGameStopped,
		EventCarChanged,
		EventCarUnknown,
		EventLookupLoaded,
		EventLookupUnavailable,
		EventTest,
	}
}

// String returns the string representation of an Event.
func (e Event) String() string {
	return string(e)
}

// ParseEvent converts a string to an Event. Returns empty string if invalid.
func ParseEvent(s string) Event {
	for _, e := range AllEvents() {
		if string(e) == s {
			return e
		}
	}
	return ""
}

// StopPolicy decides what happens to the resolved car model when the game stops running.
type StopPolicy int

const (
	// StopKeep leaves the last resolved model published until a new game starts.
	StopKeep StopPolicy = iota
	// StopClear withdraws the published model as soon as the game stops.
	StopClear
)

// String returns the string representation of a StopPolicy.
func (p StopPolicy) String() string {
	switch p {
	case StopKeep:
		return "keep"
	case StopClear:
		return "clear"
	default:
		return "keep"
	}
}

// ParseStopPolicy converts a string to a StopPolicy. The boolean is false
// when the string names no known policy.
func ParseStopPolicy(s string) (StopPolicy, bool) {
	switch s {
	case "", "keep":
		return StopKeep, true
	case "clear":
		return StopClear, true
	default:
		return StopKeep, false
	}
}
