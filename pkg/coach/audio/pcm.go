// Package audio implements the capture and playback ends of a coaching
// session: microphone capture with PCM16 framing on one side, and
// synthesized-speech playback on the other.
package audio

import (
	"encoding/binary"
	"math"
)

const (
	// SampleRate is the capture sample rate in Hz.
	SampleRate = 16000
	// Channels is the capture channel count (mono).
	Channels = 1
	// FrameSamples is the number of samples delivered per capture callback
	// (~256ms at 16 kHz).
	FrameSamples = 4096
	// BytesPerSample is the PCM16 sample width.
	BytesPerSample = 2
)

// EncodeFrame converts float32 samples in [-1.0, 1.0] to 16-bit signed
// little-endian PCM. Samples are clamped, then scaled asymmetrically:
// non-negative samples by 32767 and negative samples by 32768, so the full
// signed range is used without overflow.
func EncodeFrame(samples []float32) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		var v int16
		if s >= 0 {
			v = int16(s * 32767)
		} else {
			v = int16(s * 32768)
		}
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(v))
	}
	return out
}

// DecodeFloat32 reinterprets raw little-endian float32 bytes, as delivered
// by a FormatF32 capture device, as a sample slice.
func DecodeFloat32(raw []byte) []float32 {
	n := len(raw) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}

// RMSEnergy computes the root-mean-square energy of PCM16 little-endian
// audio. Returns a value between 0.0 and 1.0.
func RMSEnergy(pcm []byte) float64 {
	samples := len(pcm) / BytesPerSample
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(pcm)-1; i += BytesPerSample {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}

	return math.Sqrt(sum / float64(samples))
}
