// Package channel owns the bidirectional streaming connection for one
// coaching session: binary PCM frames out, typed JSON events in.
package channel

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-go/coach/pkg/coach"
	"github.com/vango-go/coach/pkg/coach/protocol"
)

// Sinks receive classified inbound events. All callbacks are invoked from
// the channel's read goroutine, in arrival order. Nil callbacks are
// skipped.
type Sinks struct {
	Suggestion func(protocol.ServerSuggestion)
	Transcript func(protocol.ServerTranscript)
	Audio      func(protocol.ServerAudio)

	// Fault is invoked once if the transport fails. It does not imply
	// teardown: ending the session remains the caller's decision.
	Fault func(error)
}

// Channel is one open event-stream connection. A Channel is created by
// Dial and torn down by Close; it is not reusable.
type Channel struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	stopped bool // stop control sent; no binary frame may follow

	closeOnce sync.Once
	done      chan struct{}
}

// Option configures a Channel.
type Option func(*Channel)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) { c.logger = l }
}

// Dial opens the event channel at url and starts the read loop.
func Dial(ctx context.Context, url string, sinks Sinks, opts ...Option) (*Channel, error) {
	c := &Channel{
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	dialer := &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := http.Header{}
	header.Set("X-Connect-Id", uuid.NewString())

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, coach.NewChannelError("dial event channel", err)
	}
	c.conn = conn

	go c.readLoop(sinks)
	return c, nil
}

// SendFrame writes one binary PCM frame. Frames are written in call order,
// never batched or reordered. Once the stop control has been sent, or if a
// write fails, the frame is dropped silently: buffering stale audio has no
// value in a real-time session.
func (c *Channel) SendFrame(frame []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.stopped {
		return
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.logger.Debug("dropping audio frame: write failed", "error", err)
	}
}

// Close sends the stop control and closes the connection. The stop message
// is the last outbound frame: any SendFrame racing with Close either wins
// the write lock first or is dropped.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.stopped = true
		if werr := c.conn.WriteJSON(protocol.NewStopControl()); werr != nil {
			c.logger.Debug("stop control write failed", "error", werr)
		}
		c.writeMu.Unlock()

		close(c.done)

		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = c.conn.Close()
	})
	return err
}

// readLoop classifies inbound messages and dispatches them to the sinks.
// Malformed payloads are dropped with a diagnostic; they never crash the
// channel.
func (c *Channel) readLoop(sinks Sinks) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// Closed locally; not a fault.
			default:
				if sinks.Fault != nil {
					sinks.Fault(coach.NewChannelError("event channel read", err))
				}
			}
			return
		}

		msg, err := protocol.DecodeServerMessage(data)
		if err != nil {
			c.logger.Warn("dropping inbound message", "error", err)
			continue
		}

		switch m := msg.(type) {
		case protocol.ServerSuggestion:
			if sinks.Suggestion != nil {
				sinks.Suggestion(m)
			}
		case protocol.ServerTranscript:
			if sinks.Transcript != nil {
				sinks.Transcript(m)
			}
		case protocol.ServerAudio:
			if sinks.Audio != nil {
				sinks.Audio(m)
			}
		}
	}
}
