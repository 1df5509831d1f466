package audio

import (
	"encoding/base64"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// PlaybackRate is the sample rate of synthesized speech from the service.
const PlaybackRate = 24000

// Playback decodes base64 speech payloads from the event channel and plays
// them through the default output device. Chunks are appended to a single
// player buffer in arrival order, so consecutive payloads do not overlap
// audibly. Decode failures are logged and dropped.
type Playback struct {
	otoCtx *oto.Context
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	player  *oto.Player
	buf     []byte
	playing bool
	closed  bool
}

// NewPlayback initializes the output device.
func NewPlayback(logger *slog.Logger) (*Playback, error) {
	if logger == nil {
		logger = slog.Default()
	}

	otoOpts := &oto.NewContextOptions{
		SampleRate:   PlaybackRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
		// ~100ms buffer for low latency
		BufferSize: PlaybackRate * BytesPerSample / 10,
	}
	otoCtx, ready, err := oto.NewContext(otoOpts)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Playback{
		otoCtx: otoCtx,
		logger: logger,
		buf:    make([]byte, 0, PlaybackRate*2*BytesPerSample),
	}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// Enqueue decodes a base64 payload and schedules it for playback.
// Fire-and-forget: errors are logged, never returned to the channel.
func (p *Playback) Enqueue(dataB64 string) {
	data, err := base64.StdEncoding.DecodeString(dataB64)
	if err != nil {
		p.logger.Warn("dropping audio payload: base64 decode failed", "error", err)
		return
	}
	p.write(data)
}

func (p *Playback) write(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.buf = append(p.buf, data...)

	// Start playing on first write.
	if !p.playing {
		p.playing = true
		p.player = p.otoCtx.NewPlayer(p)
		p.player.Play()
	}

	p.cond.Signal()
}

// Read implements io.Reader for oto.Player. Oto pulls audio data from here
// on its own playback goroutine.
func (p *Playback) Read(out []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.buf) == 0 && !p.closed {
		p.cond.Wait()
	}

	if p.closed && len(p.buf) == 0 {
		// Return silence so oto drains gracefully.
		for i := range out {
			out[i] = 0
		}
		return len(out), nil
	}

	n := copy(out, p.buf)
	p.buf = p.buf[n:]
	return n, nil
}

// Flush discards any pending audio without closing the device.
func (p *Playback) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = p.buf[:0]
}

// Close stops playback and releases the player.
func (p *Playback) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cond.Broadcast()
	player := p.player
	p.player = nil
	p.mu.Unlock()

	if player != nil {
		player.Close()
	}
}
