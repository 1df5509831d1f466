// Package session implements the coaching-session lifecycle state machine.
// The machine is the only component that drives the capture pipeline, the
// event channel, the feed aggregator, and the playback queue; the others
// are reactive producers or consumers.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-go/coach/pkg/coach"
	"github.com/vango-go/coach/pkg/coach/audio"
	"github.com/vango-go/coach/pkg/coach/channel"
	"github.com/vango-go/coach/pkg/coach/protocol"
)

// API is the control surface of the coaching service.
type API interface {
	CreateSession(ctx context.Context, sc coach.SessionContext) (string, error)
	SessionSummary(ctx context.Context, sessionID string) (*coach.SessionSummary, error)
	ChannelURL(sessionID string) (string, error)
}

// EventChannel is one open realtime connection for a session.
type EventChannel interface {
	SendFrame(frame []byte)
	Close() error
}

// ChannelDialer opens the event channel for a session.
type ChannelDialer func(ctx context.Context, url string, sinks channel.Sinks) (EventChannel, error)

// CapturePipeline produces PCM16 frames while recording.
type CapturePipeline interface {
	Start() error
	Pause()
	Resume()
	Close()
}

// CaptureFactory acquires the microphone and wires the frame sink.
type CaptureFactory func(sink func(frame []byte)) (CapturePipeline, error)

// Player consumes synthesized-speech payloads from the channel.
type Player interface {
	Enqueue(dataB64 string)
}

// Hooks are optional observer callbacks for the UI layer. They are invoked
// from the channel's read goroutine and must not block.
type Hooks struct {
	// Transcript is called for each appended transcript entry.
	Transcript func(coach.TranscriptEntry)
	// Suggestion is called with the updated suggestion view after each
	// inserted suggestion, most recent first.
	Suggestion func([]coach.Suggestion)
	// Warning is called for channel faults on an active session.
	Warning func(error)
	// Level is called with the RMS energy of each captured frame.
	Level func(float64)
}

// Session owns all per-session resources: the session id, the capture
// pipeline, and the event channel exist exactly while the session is
// active (recording or paused), never across sessions.
type Session struct {
	api        API
	dial       ChannelDialer
	newCapture CaptureFactory
	player     Player
	hooks      Hooks
	logger     *slog.Logger

	mu      sync.Mutex
	state   State
	id      string
	ch      EventChannel
	capture CapturePipeline
	fault   error
	feed    *Feed
}

// Option configures a Session.
type Option func(*Session)

// WithDialer overrides how the event channel is opened.
func WithDialer(d ChannelDialer) Option {
	return func(s *Session) { s.dial = d }
}

// WithCaptureFactory overrides how the microphone is acquired.
func WithCaptureFactory(f CaptureFactory) Option {
	return func(s *Session) { s.newCapture = f }
}

// WithPlayer sets the playback queue for inbound audio payloads. Without a
// player, audio payloads are dropped with a debug log.
func WithPlayer(p Player) Option {
	return func(s *Session) { s.player = p }
}

// WithHooks sets the observer callbacks.
func WithHooks(h Hooks) Option {
	return func(s *Session) { s.hooks = h }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session machine in the Idle state.
func New(api API, opts ...Option) *Session {
	s := &Session{
		api:    api,
		logger: slog.Default(),
		feed:   NewFeed(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dial == nil {
		s.dial = func(ctx context.Context, url string, sinks channel.Sinks) (EventChannel, error) {
			return channel.Dial(ctx, url, sinks, channel.WithLogger(s.logger))
		}
	}
	if s.newCapture == nil {
		s.newCapture = func(sink func(frame []byte)) (CapturePipeline, error) {
			capOpts := []audio.CaptureOption{audio.WithCaptureLogger(s.logger)}
			if s.hooks.Level != nil {
				capOpts = append(capOpts, audio.WithLevelFunc(s.hooks.Level))
			}
			return audio.NewCapture(sink, capOpts...)
		}
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the active session id, or "" when idle.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Transcript returns the transcript accumulated so far, in arrival order.
func (s *Session) Transcript() []coach.TranscriptEntry {
	return s.feed.Transcript()
}

// Suggestions returns the current suggestion view, most recent first.
func (s *Session) Suggestions() []coach.Suggestion {
	return s.feed.Suggestions()
}

// Start creates a remote session and brings up the full pipeline:
// (a) acquire the microphone, (b) open the event channel keyed by the
// returned session id, (c) start frame production. Failure at any step
// releases everything already acquired and returns the machine to Idle;
// there is never a partial state.
func (s *Session) Start(ctx context.Context, sc coach.SessionContext) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return coach.NewStateError("session already active: state " + s.state.String())
	}
	s.state = StateCreating
	s.fault = nil
	s.mu.Unlock()

	id, err := s.api.CreateSession(ctx, sc)
	if err != nil {
		s.toIdle()
		return err
	}

	capture, err := s.newCapture(s.onFrame)
	if err != nil {
		s.toIdle()
		return err
	}

	url, err := s.api.ChannelURL(id)
	if err != nil {
		capture.Close()
		s.toIdle()
		return coach.NewRequestError("derive channel address", err)
	}

	ch, err := s.dial(ctx, url, channel.Sinks{
		Suggestion: s.onSuggestion,
		Transcript: s.onTranscript,
		Audio:      s.onAudio,
		Fault:      s.onFault,
	})
	if err != nil {
		capture.Close()
		s.toIdle()
		return err
	}

	s.mu.Lock()
	s.id = id
	s.ch = ch
	s.capture = capture
	s.mu.Unlock()

	if err := capture.Start(); err != nil {
		capture.Close()
		_ = ch.Close()
		s.clear()
		return err
	}

	s.mu.Lock()
	if s.fault != nil {
		// The channel died before the session ever reached Active.
		fault := s.fault
		s.mu.Unlock()
		capture.Close()
		_ = ch.Close()
		s.clear()
		return fault
	}
	s.state = StateRecording
	s.mu.Unlock()

	s.logger.Info("session started", "session_id", id)
	return nil
}

// Pause suspends audio delivery at the source. The channel stays open and
// the session stays active. No effect if already paused.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRecording:
		s.capture.Pause()
		s.state = StatePaused
		s.logger.Debug("session paused", "session_id", s.id)
		return nil
	case StatePaused:
		return nil
	default:
		return coach.NewStateError("pause: session not active")
	}
}

// Resume restores audio delivery after a pause, on the same channel and
// session. No effect if already recording.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePaused:
		s.capture.Resume()
		s.state = StateRecording
		s.logger.Debug("session resumed", "session_id", s.id)
		return nil
	case StateRecording:
		return nil
	default:
		return coach.NewStateError("resume: session not active")
	}
}

// End tears the session down in strict order: stop frame production and
// release the microphone, send the stop control and close the channel,
// then request the summary for the closed session. The ordering is
// load-bearing: the pipeline must stop producing before the channel
// closes, and the summary request must follow the close so the service has
// the complete audio stream. A summary failure does not block teardown:
// the machine still clears all state and returns to Idle.
func (s *Session) End(ctx context.Context) (*coach.SessionSummary, error) {
	s.mu.Lock()
	if !s.state.active() {
		s.mu.Unlock()
		return nil, coach.NewStateError("end: session not active")
	}
	s.state = StateEnding
	capture := s.capture
	ch := s.ch
	id := s.id
	s.mu.Unlock()

	capture.Close()
	if err := ch.Close(); err != nil {
		s.logger.Warn("event channel close", "error", err)
	}

	summary, sumErr := s.api.SessionSummary(ctx, id)

	s.clear()
	s.logger.Info("session ended", "session_id", id)

	if sumErr != nil {
		return nil, sumErr
	}
	return summary, nil
}

// onFrame is the capture pipeline's sink. It runs on the audio thread:
// frames are forwarded opportunistically and never queued.
func (s *Session) onFrame(frame []byte) {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	if ch != nil {
		ch.SendFrame(frame)
	}
}

func (s *Session) onSuggestion(msg protocol.ServerSuggestion) {
	s.feed.AddSuggestion(coach.Suggestion{
		Text:      msg.Text,
		Type:      msg.Kind,
		Priority:  msg.Priority,
		Timestamp: msg.Timestamp,
	})
	if s.hooks.Suggestion != nil {
		s.hooks.Suggestion(s.feed.Suggestions())
	}
}

func (s *Session) onTranscript(msg protocol.ServerTranscript) {
	entry := coach.TranscriptEntry{
		Speaker:   coach.Speaker(msg.Speaker),
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	}
	s.feed.AddTranscript(entry)
	if s.hooks.Transcript != nil {
		s.hooks.Transcript(entry)
	}
}

func (s *Session) onAudio(msg protocol.ServerAudio) {
	if s.player == nil {
		s.logger.Debug("dropping audio payload: no player configured")
		return
	}
	s.player.Enqueue(msg.DataB64)
}

// onFault handles a transport failure. On an active session it is surfaced
// as a warning: the user stays in control of ending the session. During
// Creating it is recorded so Start can abort back to Idle.
func (s *Session) onFault(err error) {
	s.mu.Lock()
	state := s.state
	if state == StateCreating {
		s.fault = err
	}
	s.mu.Unlock()

	s.logger.Warn("event channel fault", "state", state.String(), "error", err)
	if state.active() && s.hooks.Warning != nil {
		s.hooks.Warning(err)
	}
}

// toIdle aborts a failed start before any session resources were stored.
func (s *Session) toIdle() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// clear wipes all per-session state and returns to Idle.
func (s *Session) clear() {
	s.feed.Reset()
	s.mu.Lock()
	s.id = ""
	s.ch = nil
	s.capture = nil
	s.fault = nil
	s.state = StateIdle
	s.mu.Unlock()
}
