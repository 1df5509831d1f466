package audio

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/vango-go/coach/pkg/coach"
)

// FrameSink receives one encoded PCM16 frame per capture callback, in
// arrival order. Sinks must not block: the callback runs on the audio
// subsystem's thread.
type FrameSink func(frame []byte)

// LevelFunc receives the RMS energy of each delivered frame.
type LevelFunc func(rms float64)

// Capture acquires the default microphone and produces fixed-size PCM16LE
// mono 16 kHz frames for as long as it is recording. While paused, the
// device keeps running but frames are dropped at the pipeline boundary, so
// nothing reaches the sink.
type Capture struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device

	recording atomic.Bool
	sink      FrameSink
	onLevel   LevelFunc
	logger    *slog.Logger

	closeOnce sync.Once
}

// CaptureOption configures a Capture.
type CaptureOption func(*Capture)

// WithLevelFunc registers a per-frame RMS level callback.
func WithLevelFunc(fn LevelFunc) CaptureOption {
	return func(c *Capture) { c.onLevel = fn }
}

// WithCaptureLogger sets the logger. Defaults to slog.Default().
func WithCaptureLogger(l *slog.Logger) CaptureOption {
	return func(c *Capture) { c.logger = l }
}

// NewCapture acquires the default capture device. Frames are not produced
// until Start is called. Errors are categorized: permission failures and
// missing devices surface as distinct coach error types.
func NewCapture(sink FrameSink, opts ...CaptureOption) (*Capture, error) {
	c := &Capture{
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	malgoConfig := malgo.ContextConfig{}
	malgoConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, malgoConfig, nil)
	if err != nil {
		return nil, coach.NewDeviceError("audio subsystem unavailable", err)
	}
	c.malgoCtx = malgoCtx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = Channels
	deviceConfig.SampleRate = SampleRate
	deviceConfig.PeriodSizeInFrames = FrameSamples

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			c.onData(input)
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, classifyDeviceError(err)
	}
	c.device = device

	return c, nil
}

// onData runs on the audio thread once per captured period.
func (c *Capture) onData(input []byte) {
	if !c.recording.Load() {
		return
	}
	frame := EncodeFrame(DecodeFloat32(input))
	c.sink(frame)
	if c.onLevel != nil {
		c.onLevel(RMSEnergy(frame))
	}
}

// Start begins frame production.
func (c *Capture) Start() error {
	if err := c.device.Start(); err != nil {
		return classifyDeviceError(err)
	}
	c.recording.Store(true)
	return nil
}

// Pause suspends frame delivery without releasing the device.
// Safe to call repeatedly.
func (c *Capture) Pause() {
	c.recording.Store(false)
}

// Resume restores frame delivery after a pause. Safe to call repeatedly.
func (c *Capture) Resume() {
	c.recording.Store(true)
}

// Close stops frame production and releases the device and the audio
// context. It runs the full teardown exactly once and is safe on every
// exit path; an in-flight callback observes the pipeline as stopped before
// any resource is released.
func (c *Capture) Close() {
	c.closeOnce.Do(func() {
		c.recording.Store(false)
		if c.device != nil {
			c.device.Uninit()
		}
		if c.malgoCtx != nil {
			if err := c.malgoCtx.Uninit(); err != nil {
				c.logger.Warn("audio context uninit failed", "error", err)
			}
			c.malgoCtx.Free()
		}
	})
}

// classifyDeviceError maps an audio subsystem failure to the coach error
// taxonomy so the caller can show an actionable message per subtype.
func classifyDeviceError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "access denied") || strings.Contains(msg, "permission"):
		return coach.NewPermissionError("microphone access denied", err)
	case strings.Contains(msg, "no device") || strings.Contains(msg, "device not found") || strings.Contains(msg, "no backend"):
		return coach.NewDeviceError("no microphone device found", err)
	default:
		return coach.NewDeviceError("microphone device error", err)
	}
}
