// Package resolver translates the car-id label reported by the telemetry
// host into a car model name. It keeps the lookup table of the active game
// and the last resolution, reloading the table only when the game changes
// and resolving again only when the car-id label changes.
//
// A Resolver is not safe for concurrent use. The host calls it serially,
// once per data-update cycle, and none of its operations block except the
// table load on a game change.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Guliveer/fh-car-models/internal/constants"
	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/lookup"
	"github.com/Guliveer/fh-car-models/internal/model"
)

// ErrMalformedCarIDLabel is returned by ParseCarID when a label has no
// numeric second token.
var ErrMalformedCarIDLabel = errors.New("malformed car-id label")

// ParseCarID extracts the numeric car id from a label such as "CAR_101":
// the label is split on '_' and token 1 is parsed as a base-10 integer.
func ParseCarID(label string) (int, error) {
	tokens := strings.Split(label, constants.CarIDSeparator)
	if len(tokens) < 2 {
		return 0, fmt.Errorf("%w: %q has no %q separator", ErrMalformedCarIDLabel, label, constants.CarIDSeparator)
	}
	id, err := strconv.Atoi(tokens[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: token %q is not an integer", ErrMalformedCarIDLabel, label, tokens[1])
	}
	return id, nil
}

// Options configures a Resolver.
type Options struct {
	// Games is the supported game set. Empty means constants.DefaultGames.
	Games model.GameSet
	// Source loads the lookup table when a supported game becomes active.
	Source lookup.Source
	// OnStop decides whether the resolution survives the game stopping.
	OnStop model.StopPolicy
	Log    *logger.Logger
}

// State is a copy of the resolver's session state.
type State struct {
	ActiveGame  string
	TableLoaded bool
	TableSize   int
	LastLabel   string
	Model       string
	Found       bool
}

// Stats counts the work the resolver has done.
type Stats struct {
	// Reloads is the number of lookup table loads attempted.
	Reloads int
	// LoadFailures is the number of loads that degraded to an empty table.
	LoadFailures int
	// Lookups is the number of label parses and table lookups performed.
	Lookups int
}

// Resolver owns the per-session resolution state.
type Resolver struct {
	games  model.GameSet
	source lookup.Source
	onStop model.StopPolicy
	log    *logger.Logger

	activeGame string
	table      *lookup.Table
	lastLabel  string
	model      string
	found      bool

	stats Stats
}

// New creates a Resolver with no active game.
func New(opts Options) *Resolver {
	games := opts.Games
	if games.Len() == 0 {
		games = model.NewGameSet(constants.DefaultGames...)
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{
		games:  games,
		source: opts.Source,
		onStop: opts.OnStop,
		log:    log,
	}
}

// Supports reports whether game is in the supported game set.
func (r *Resolver) Supports(game string) bool {
	return r.games.Contains(game)
}

// OnGameChanged makes game the active game. For a supported game the lookup
// table is replaced by a fresh load; a failed load leaves an empty table.
// For any other game the table is dropped. Either way the previous
// resolution is withdrawn.
func (r *Resolver) OnGameChanged(game string) {
	r.activeGame = game
	r.table = nil
	r.lastLabel = ""
	r.clearModel()

	if !r.games.Contains(game) {
		if game != "" {
			r.log.Debug("Game not supported, car model withheld", "game", game)
		}
		return
	}

	r.log.Event(context.Background(), model.EventGameDetected, "Forza game detected", "game", game)
	r.table = r.loadTable(game)
}

// OnCarIDChanged resolves label against the active table. A label equal to
// the last one returns the cached result without parsing or looking up.
// A malformed label resolves to nothing.
func (r *Resolver) OnCarIDChanged(label string) (string, bool) {
	if label == r.lastLabel {
		return r.model, r.found
	}
	return r.resolve(label)
}

// OnTick is the per-frame entry point. It never fails: every problem
// resolves to an absent model.
func (r *Resolver) OnTick(running bool, game, oldLabel, newLabel string) (string, bool) {
	if !running {
		r.stop()
		return r.model, r.found
	}

	if game != r.activeGame {
		r.OnGameChanged(game)
		if r.table == nil {
			return r.model, r.found
		}
		return r.resolve(newLabel)
	}

	if r.table != nil && oldLabel != "" && newLabel != "" && oldLabel != newLabel {
		return r.OnCarIDChanged(newLabel)
	}

	return r.model, r.found
}

// Model returns the current resolution.
func (r *Resolver) Model() (string, bool) {
	return r.model, r.found
}

// Release drops the lookup table and all cached state.
func (r *Resolver) Release() {
	r.activeGame = ""
	r.table = nil
	r.lastLabel = ""
	r.clearModel()
}

// Snapshot returns a copy of the session state.
func (r *Resolver) Snapshot() State {
	return State{
		ActiveGame:  r.activeGame,
		TableLoaded: r.table != nil,
		TableSize:   r.table.Len(),
		LastLabel:   r.lastLabel,
		Model:       r.model,
		Found:       r.found,
	}
}

// Stats returns the work counters.
func (r *Resolver) Stats() Stats {
	return r.stats
}

func (r *Resolver) stop() {
	if r.activeGame != "" {
		r.log.Event(context.Background(), model.EventGameStopped, "Game stopped", "game", r.activeGame)
	}
	r.activeGame = ""

	if r.onStop == model.StopClear {
		r.lastLabel = ""
		r.clearModel()
	}
}

// resolve parses label and looks it up, bypassing the last-label cache.
func (r *Resolver) resolve(label string) (string, bool) {
	r.stats.Lookups++
	r.lastLabel = label
	r.clearModel()

	id, err := ParseCarID(label)
	if err != nil {
		r.log.Debug("Car id not resolvable", "game", r.activeGame, "label", label, "error", err)
		return r.model, r.found
	}

	name, ok := r.table.Lookup(id)
	if !ok {
		r.log.Event(context.Background(), model.EventCarUnknown, "Car id not in lookup table",
			"game", r.activeGame, "car_id", id)
		return r.model, r.found
	}

	r.model, r.found = name, true
	r.log.Event(context.Background(), model.EventCarChanged, "Car model resolved",
		"game", r.activeGame, "car_id", id, "model", name)
	return r.model, r.found
}

func (r *Resolver) loadTable(game string) *lookup.Table {
	r.stats.Reloads++

	if r.source == nil {
		r.stats.LoadFailures++
		r.log.Event(context.Background(), model.EventLookupUnavailable,
			"No lookup source configured, car models unavailable", "game", game)
		return lookup.Empty()
	}

	table, err := r.source.Load(game)
	if err != nil {
		r.stats.LoadFailures++
		r.log.Event(context.Background(), model.EventLookupUnavailable,
			"Lookup table unavailable, car models unavailable", "game", game, "error", err)
		return lookup.Empty()
	}

	r.log.Event(context.Background(), model.EventLookupLoaded, "Lookup table loaded",
		"game", game, "cars", table.Len())
	return table
}

func (r *Resolver) clearModel() {
	r.model, r.found = "", false
}
