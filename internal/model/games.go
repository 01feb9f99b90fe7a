package model

import "sort"

// GameSet is the allow-list of host game names for which car model
// resolution is attempted. Names are compared exactly, the way the host
// reports them ("FH4", "FH5", ...). The zero value supports nothing.
type GameSet struct {
	names map[string]struct{}
}

// NewGameSet builds a GameSet from game names. Empty names are silently ignored.
func NewGameSet(names ...string) GameSet {
	set := GameSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name == "" {
			continue
		}
		set.names[name] = struct{}{}
	}
	return set
}

// Contains reports whether game is supported.
func (s GameSet) Contains(game string) bool {
	_, ok := s.names[game]
	return ok
}

// Len returns the number of supported games.
func (s GameSet) Len() int {
	return len(s.names)
}

// Names returns the supported game names in sorted order.
func (s GameSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
