// Package plugin adapts the car model resolver to the telemetry host's
// plugin contract: Init registers the published property, DataUpdate runs
// once per host data-update cycle, and End releases the cached table.
package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/Guliveer/fh-car-models/internal/constants"
	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/model"
	"github.com/Guliveer/fh-car-models/internal/resolver"
)

// PropertyStore is the host's shared key/value property store.
type PropertyStore interface {
	AddProperty(key, owner string, initial any)
	SetPropertyValue(key, owner string, value any)
}

// Change describes a newly published car model.
type Change struct {
	Game  string
	Label string
	Model string
	Found bool
}

// ChangeFunc is called after a new value is published. Implementations
// must not block; DataUpdate is on the host's latency-critical path.
type ChangeFunc func(ctx context.Context, change Change)

// Plugin publishes the resolved car model into the host property store.
type Plugin struct {
	resolver *resolver.Resolver
	key      string
	owner    string
	log      *logger.Logger

	published *string

	mu        sync.RWMutex
	listeners []ChangeFunc
}

// New creates a Plugin publishing under key. An empty key means constants.PropertyKey.
func New(r *resolver.Resolver, key string, log *logger.Logger) *Plugin {
	if key == "" {
		key = constants.PropertyKey
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Plugin{
		resolver: r,
		key:      key,
		owner:    constants.PropertyOwner,
		log:      log,
	}
}

// Key returns the published property key.
func (p *Plugin) Key() string {
	return p.key
}

// Owner returns the owner name used with the property store.
func (p *Plugin) Owner() string {
	return p.owner
}

// OnChange registers fn to be called after every publish. Thread-safe.
func (p *Plugin) OnChange(fn ChangeFunc) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Init registers the published property with its current value.
func (p *Plugin) Init(store PropertyStore) {
	p.log.Info("Starting plugin", "property", p.key)
	carModel, ok := p.resolver.Model()
	store.AddProperty(p.key, p.owner, propertyValue(carModel, ok))
	p.published = nil
	if ok {
		p.published = &carModel
	}
}

// DataUpdate runs one host data-update cycle. It never fails or panics;
// problems are logged and leave the published value as it was.
func (p *Plugin) DataUpdate(ctx context.Context, store PropertyStore, data *model.GameData) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("Recovered from panic in data update", "error", fmt.Sprint(rec))
		}
	}()

	if data == nil {
		return
	}

	carModel, ok := p.resolver.OnTick(data.GameRunning, data.GameName, data.OldCarID(), data.NewCarID())
	if !p.changed(carModel, ok) {
		return
	}

	store.SetPropertyValue(p.key, p.owner, propertyValue(carModel, ok))
	if ok {
		p.published = &carModel
	} else {
		p.published = nil
	}

	p.notify(ctx, Change{
		Game:  data.GameName,
		Label: data.NewCarID(),
		Model: carModel,
		Found: ok,
	})
}

// End releases the cached lookup table. The published value is left to the host.
func (p *Plugin) End(_ PropertyStore) {
	p.resolver.Release()
	p.published = nil
	p.log.Info("Plugin stopped", "property", p.key)
}

// Snapshot returns the resolver state for diagnostics. Not safe to call
// concurrently with DataUpdate.
func (p *Plugin) Snapshot() resolver.State {
	return p.resolver.Snapshot()
}

func (p *Plugin) changed(carModel string, ok bool) bool {
	if p.published == nil {
		return ok
	}
	return !ok || *p.published != carModel
}

func (p *Plugin) notify(ctx context.Context, change Change) {
	p.mu.RLock()
	listeners := p.listeners
	p.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, change)
	}
}

// propertyValue maps an absent model to nil, the host's "no value".
func propertyValue(carModel string, ok bool) any {
	if !ok {
		return nil
	}
	return carModel
}
