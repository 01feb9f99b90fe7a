// Package host runs the car model plugin outside of a telemetry application.
// It wires the lookup source, resolver, plugin and property store together,
// feeds them frames from the telemetry WebSocket, and exposes the result over
// HTTP, stream chat, and notifications.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Guliveer/fh-car-models/internal/chat"
	"github.com/Guliveer/fh-car-models/internal/config"
	"github.com/Guliveer/fh-car-models/internal/constants"
	"github.com/Guliveer/fh-car-models/internal/feed"
	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/lookup"
	"github.com/Guliveer/fh-car-models/internal/model"
	"github.com/Guliveer/fh-car-models/internal/notify"
	"github.com/Guliveer/fh-car-models/internal/plugin"
	"github.com/Guliveer/fh-car-models/internal/resolver"
	"github.com/Guliveer/fh-car-models/internal/server"
	"github.com/Guliveer/fh-car-models/internal/store"
	"github.com/Guliveer/fh-car-models/internal/workerpool"
)

// Host owns one plugin instance and the components around it. It implements
// feed.FrameHandler.
type Host struct {
	cfg *config.Config
	log *logger.Logger

	props  *store.Properties
	plugin *plugin.Plugin

	// mu serialises data updates with Init and End.
	mu sync.Mutex

	feed   *feed.Client
	server *server.PropertyServer
	chat   *chat.Manager
	notify *notify.Dispatcher
}

// New builds a Host from cfg. Components that are not configured are left
// out: no feed URL means frames only arrive through HandleFrame, and chat
// and notifications stay off unless enabled.
func New(cfg *config.Config, log *logger.Logger) *Host {
	h := &Host{
		cfg:   cfg,
		log:   log,
		props: store.NewProperties(),
	}

	h.notify = notify.NewDispatcher(cfg.Notifications, log.WithComponent("notify"))
	if h.notify.HasNotifiers() {
		log.SetNotifyFunc(h.notify.NotifyFunc())
	}

	r := resolver.New(resolver.Options{
		Games:  cfg.GameSet(),
		Source: newSource(cfg, log),
		OnStop: cfg.StopPolicy(),
		Log:    log.WithComponent("resolver"),
	})
	h.plugin = plugin.New(r, cfg.PropertyKey, log.WithComponent("plugin"))

	if cfg.Feed.URL != "" {
		h.feed = feed.NewClient(cfg.Feed.URL, h, log.WithComponent("feed"), cfg.Feed.ReconnectMin, cfg.Feed.ReconnectMax)
	}

	if cfg.Server.ServerEnabled() {
		h.server = server.NewPropertyServer(cfg.Server.Addr, h.props, log.WithComponent("server"))
		h.server.SetStatusFunc(h.Status)
	}

	if cfg.Chat.Enabled {
		h.chat = chat.NewManager(
			cfg.Chat.Username,
			cfg.Chat.Token,
			cfg.Chat.Channel,
			cfg.Chat.Command,
			cfg.Chat.Announce,
			h.CurrentModel,
			log.WithComponent("chat"),
		)
		h.plugin.OnChange(h.chat.Listener())
	}

	return h
}

func newSource(cfg *config.Config, log *logger.Logger) *lookup.FileSource {
	src := lookup.NewFileSource(cfg.Lookup.Path, log.WithComponent("lookup"))
	src.PerGame = cfg.Lookup.PerGame
	if cfg.Lookup.Dir != "" {
		src.Dir = cfg.Lookup.Dir
	}
	return src
}

// Properties returns the property store the plugin publishes into.
func (h *Host) Properties() *store.Properties {
	return h.props
}

// Plugin returns the hosted plugin.
func (h *Host) Plugin() *plugin.Plugin {
	return h.plugin
}

// HandleFrame passes one telemetry frame to the plugin.
func (h *Host) HandleFrame(ctx context.Context, frame *model.GameData) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.plugin.DataUpdate(ctx, h.props, frame)
}

// CurrentModel returns the published car model.
func (h *Host) CurrentModel() (string, bool) {
	return h.props.String(h.plugin.Key())
}

// Status reports the runner health for the HTTP server.
func (h *Host) Status() server.Status {
	st := server.Status{
		Games:       h.cfg.GameSet().Names(),
		PropertyKey: h.plugin.Key(),
	}
	if h.feed != nil {
		st.FeedConnected = h.feed.Connected()
		st.Frames = h.feed.Frames()
		st.Rejected = h.feed.Rejected()
	}
	return st
}

// Run registers the plugin, runs the configured components until ctx is
// cancelled or one of them fails, then ends the plugin. Cancellation is not
// reported as an error.
func (h *Host) Run(ctx context.Context) error {
	startTime := time.Now()

	h.mu.Lock()
	h.plugin.Init(h.props)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.plugin.End(h.props)
		h.mu.Unlock()
	}()

	g, gctx := errgroup.WithContext(ctx)

	if h.feed != nil {
		g.Go(func() error { return h.feed.Run(gctx) })
	} else {
		h.log.Warn("No telemetry feed configured, waiting for shutdown")
	}

	if h.server != nil {
		g.Go(func() error { return h.server.Run(gctx) })
	}

	if h.chat != nil {
		g.Go(func() error { return h.chat.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})

	h.log.Info("✅ Runner started",
		"games", h.cfg.GameSet().Names(),
		"property", h.plugin.Key(),
		"on_stop", h.cfg.StopPolicy().String(),
		"startup", time.Since(startTime).Round(time.Millisecond).String(),
	)

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// LookupReport describes the lookup table a game would use.
type LookupReport struct {
	Game    string
	Path    string
	Entries int
	// Err is set when the table could not be loaded.
	Err error
}

// CheckLookups loads the lookup table of every supported game concurrently
// and reports each one. The error joins every game whose table could not be
// loaded.
func CheckLookups(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]LookupReport, error) {
	src := newSource(cfg, log)

	return workerpool.Map(ctx, cfg.GameSet().Names(), constants.CheckWorkers,
		func(_ context.Context, game string) (LookupReport, error) {
			report := LookupReport{Game: game, Path: src.PathFor(game)}
			table, err := src.Load(game)
			if err != nil {
				report.Err = fmt.Errorf("%s: %w", game, err)
				return report, report.Err
			}
			report.Entries = table.Len()
			return report, nil
		})
}
