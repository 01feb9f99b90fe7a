package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/gempir/go-twitch-irc/v4"

	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/plugin"
)

// CurrentFunc returns the car model currently published.
type CurrentFunc func() (string, bool)

// SayFunc sends a message to a channel.
type SayFunc func(channel, message string)

// Handler answers the car command and formats announcements.
type Handler struct {
	channel  string
	command  string
	announce bool
	current  CurrentFunc
	say      SayFunc
	log      *logger.Logger
}

// NewHandler creates a chat message Handler.
func NewHandler(channel, command string, announce bool, current CurrentFunc, say SayFunc, log *logger.Logger) *Handler {
	return &Handler{
		channel:  strings.ToLower(channel),
		command:  strings.ToLower(command),
		announce: announce,
		current:  current,
		say:      say,
		log:      log,
	}
}

// OnPrivateMessage is called when a chat message is received. Messages whose
// first word is the car command get the current model as reply.
func (h *Handler) OnPrivateMessage(msg twitch.PrivateMessage) {
	fields := strings.Fields(msg.Message)
	if len(fields) == 0 || strings.ToLower(fields[0]) != h.command {
		return
	}

	reply := "No car detected right now."
	if model, ok := h.current(); ok {
		reply = fmt.Sprintf("Currently driving: %s", model)
	}

	h.log.Debug("Answering car command", "nick", msg.User.DisplayName, "channel", msg.Channel)
	h.say(msg.Channel, fmt.Sprintf("@%s %s", msg.User.DisplayName, reply))
}

// Announce posts a newly resolved car model to the channel. Unknown cars are
// not announced.
func (h *Handler) Announce(_ context.Context, change plugin.Change) {
	if !h.announce || !change.Found {
		return
	}
	h.say(h.channel, fmt.Sprintf("🏎️ Now driving: %s (%s)", change.Model, change.Game))
}

// OnConnect is called when the IRC client connects to the server.
func (h *Handler) OnConnect() {
	h.log.Info("💬 Connected to Twitch IRC")
}

// OnReconnect is called when the IRC client reconnects to the server.
func (h *Handler) OnReconnect() {
	h.log.Info("💬 Reconnected to Twitch IRC")
}

// OnSelfJoinMessage is called when the announcer joins the channel.
func (h *Handler) OnSelfJoinMessage(msg twitch.UserJoinMessage) {
	h.log.Info("💬 Joined IRC chat", "channel", msg.Channel)
}
