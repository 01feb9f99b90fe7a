// Package store provides the in-memory host property store the plugin
// publishes into. It is safe for concurrent use: the plugin writes from the
// feed goroutine while the HTTP server and chat announcer read.
package store

import (
	"sort"
	"sync"
	"time"
)

// Property is one published host property.
type Property struct {
	Key       string    `json:"key"`
	Owner     string    `json:"owner"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Properties is a thread-safe key/value property store.
type Properties struct {
	mu      sync.RWMutex
	entries map[string]Property
	now     func() time.Time
}

// NewProperties creates an empty property store.
func NewProperties() *Properties {
	return &Properties{
		entries: make(map[string]Property),
		now:     time.Now,
	}
}

// AddProperty registers key with an initial value. Registering an existing
// key replaces its owner and value.
func (p *Properties) AddProperty(key, owner string, initial any) {
	p.mu.Lock()
	p.entries[key] = Property{Key: key, Owner: owner, Value: initial, UpdatedAt: p.now()}
	p.mu.Unlock()
}

// SetPropertyValue updates the value of key. Keys that were never added are
// created on the fly.
func (p *Properties) SetPropertyValue(key, owner string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prop, ok := p.entries[key]
	if !ok {
		prop = Property{Key: key}
	}
	prop.Owner = owner
	prop.Value = value
	prop.UpdatedAt = p.now()
	p.entries[key] = prop
}

// Get returns the property stored under key.
func (p *Properties) Get(key string) (Property, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prop, ok := p.entries[key]
	return prop, ok
}

// String returns the string value of key. The boolean is false when the key
// is unknown or its value is not a string (e.g. nil for "no value").
func (p *Properties) String(key string) (string, bool) {
	prop, ok := p.Get(key)
	if !ok {
		return "", false
	}
	s, ok := prop.Value.(string)
	return s, ok
}

// All returns every property sorted by key.
func (p *Properties) All() []Property {
	p.mu.RLock()
	out := make([]Property, 0, len(p.entries))
	for _, prop := range p.entries {
		out = append(out, prop)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
