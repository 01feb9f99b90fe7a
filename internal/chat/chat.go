// Package chat announces the current car model in a Twitch stream chat and
// answers the car command. It uses the go-twitch-irc library which handles
// PING/PONG keepalive and automatic reconnection internally.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/gempir/go-twitch-irc/v4"

	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/plugin"
)

// Manager owns the IRC connection to a single channel.
type Manager struct {
	mu sync.Mutex

	client  *twitch.Client
	handler *Handler

	channel string
	running bool

	log *logger.Logger
}

// NewManager creates a chat Manager for channel. current reports the car
// model currently published.
func NewManager(username, authToken, channel, command string, announce bool, current CurrentFunc, log *logger.Logger) *Manager {
	channel = strings.ToLower(strings.TrimPrefix(channel, "#"))
	client := twitch.NewClient(username, "oauth:"+strings.TrimPrefix(authToken, "oauth:"))

	manager := &Manager{
		client:  client,
		channel: channel,
		log:     log,
	}
	manager.handler = NewHandler(channel, command, announce, current, client.Say, log)

	client.OnPrivateMessage(manager.handler.OnPrivateMessage)
	client.OnConnect(manager.handler.OnConnect)
	client.OnReconnectMessage(func(twitch.ReconnectMessage) {
		manager.handler.OnReconnect()
	})
	client.OnSelfJoinMessage(manager.handler.OnSelfJoinMessage)

	return manager
}

// Handler returns the message handler, for registering as a change listener.
func (m *Manager) Handler() *Handler {
	return m.handler
}

// Run connects to Twitch IRC and joins the channel. It blocks until the
// context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	m.running = true
	m.client.Join(m.channel)
	m.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		err := m.client.Connect()
		if err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		m.Close()
		return ctx.Err()
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			m.log.Error("IRC connection error", "error", err)
			return err
		}
		return ctx.Err()
	}
}

// Close leaves the channel and shuts down the IRC client.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false

	m.client.Depart(m.channel)
	if err := m.client.Disconnect(); err != nil {
		m.log.Debug("IRC disconnect", "error", err)
	}

	m.log.Info("Chat announcer closed", "channel", m.channel)
}

// Listener returns a plugin change listener that announces new car models.
func (m *Manager) Listener() plugin.ChangeFunc {
	return m.handler.Announce
}
