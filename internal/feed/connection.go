package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Guliveer/fh-car-models/internal/constants"
	"github.com/Guliveer/fh-car-models/internal/logger"
	"github.com/Guliveer/fh-car-models/internal/model"
)

// FrameHandler processes decoded telemetry frames. Frames are delivered
// serially from a single goroutine, in the order they were received.
type FrameHandler interface {
	HandleFrame(ctx context.Context, frame *model.GameData)
}

// FrameHandlerFunc adapts a function to the FrameHandler interface.
type FrameHandlerFunc func(ctx context.Context, frame *model.GameData)

// HandleFrame calls f(ctx, frame).
func (f FrameHandlerFunc) HandleFrame(ctx context.Context, frame *model.GameData) {
	f(ctx, frame)
}

// Client keeps a WebSocket connection to the telemetry source open and hands
// every frame to its handler.
type Client struct {
	url     string
	handler FrameHandler
	log     *logger.Logger

	minBackoff   time.Duration
	maxBackoff   time.Duration
	pingInterval time.Duration

	connected atomic.Bool
	frames    atomic.Int64
	rejected  atomic.Int64
}

// NewClient creates a feed Client for url. Zero backoff bounds use the defaults.
func NewClient(url string, handler FrameHandler, log *logger.Logger, minBackoff, maxBackoff time.Duration) *Client {
	if minBackoff <= 0 {
		minBackoff = constants.DefaultFeedReconnectMin
	}
	if maxBackoff < minBackoff {
		maxBackoff = constants.DefaultFeedReconnectMax
	}
	return &Client{
		url:          url,
		handler:      handler,
		log:          log,
		minBackoff:   minBackoff,
		maxBackoff:   maxBackoff,
		pingInterval: constants.FeedPingInterval,
	}
}

// Connected reports whether the feed connection is currently up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Frames returns the number of frames handed to the handler.
func (c *Client) Frames() int64 {
	return c.frames.Load()
}

// Rejected returns the number of messages that were not telemetry frames.
func (c *Client) Rejected() int64 {
	return c.rejected.Load()
}

// Run connects to the feed and processes frames. Lost connections are
// re-established with exponential backoff. It blocks until the context is
// cancelled.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.minBackoff

	for {
		established, err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if established {
			backoff = c.minBackoff
		}

		c.log.Warn("Telemetry feed lost, reconnecting",
			"url", c.url, "error", err, "backoff", backoff.Round(time.Millisecond))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(math.Min(float64(backoff*2), float64(c.maxBackoff)))
	}
}

// session dials the feed and reads frames until the connection fails. The
// boolean reports whether the dial succeeded.
func (c *Client) session(ctx context.Context) (bool, error) {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("dialing telemetry feed: %w", err)
	}
	conn.SetReadLimit(constants.FeedReadLimit)

	c.connected.Store(true)
	c.log.Info("Telemetry feed connected", "url", c.url)

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.connected.Store(false)
		conn.Close(websocket.StatusNormalClosure, "closing")
	}()

	go c.pingLoop(ctx, conn)

	return true, c.readLoop(ctx, conn)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var raw map[string]any
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return errors.New("feed closed by server")
			}
			return fmt.Errorf("reading telemetry frame: %w", err)
		}

		frame, err := DecodeFrame(raw)
		if err != nil {
			c.rejected.Add(1)
			c.log.Debug("Ignoring feed message", "error", err)
			continue
		}

		c.frames.Add(1)
		c.handler.HandleFrame(ctx, frame)
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, constants.FeedPingTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					c.log.Warn("Telemetry feed ping failed, closing connection", "error", err)
					conn.Close(websocket.StatusGoingAway, "ping timeout")
				}
				return
			}
			c.log.Debug("Telemetry feed ping ok")
		}
	}
}
