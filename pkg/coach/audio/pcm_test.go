package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func sampleAt(frame []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(frame[i*BytesPerSample:]))
}

func TestEncodeFrame_Conversion(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want int16
	}{
		{"full positive", 1.0, 32767},
		{"full negative", -1.0, -32768},
		{"zero", 0.0, 0},
		{"half positive", 0.5, 16383},
		{"half negative", -0.5, -16384},
		{"clamped high", 2.5, 32767},
		{"clamped low", -3.0, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := EncodeFrame([]float32{tt.in})
			if got := sampleAt(frame, 0); got != tt.want {
				t.Errorf("EncodeFrame(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeFrame_Length(t *testing.T) {
	samples := make([]float32, FrameSamples)
	frame := EncodeFrame(samples)
	if len(frame) != FrameSamples*BytesPerSample {
		t.Errorf("frame length = %d, want %d", len(frame), FrameSamples*BytesPerSample)
	}
}

func TestDecodeFloat32_RoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 1, -1}
	raw := make([]byte, len(in)*4)
	for i, s := range in {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}

	out := DecodeFloat32(raw)
	if len(out) != len(in) {
		t.Fatalf("decoded %d samples, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestRMSEnergy(t *testing.T) {
	if got := RMSEnergy(nil); got != 0 {
		t.Errorf("RMSEnergy(nil) = %v, want 0", got)
	}

	silence := make([]byte, 64)
	if got := RMSEnergy(silence); got != 0 {
		t.Errorf("RMSEnergy(silence) = %v, want 0", got)
	}

	// A full-scale positive square wave has RMS close to 1.0.
	loud := EncodeFrame([]float32{1, 1, 1, 1})
	if got := RMSEnergy(loud); got < 0.99 || got > 1.0 {
		t.Errorf("RMSEnergy(full scale) = %v, want ~1.0", got)
	}
}
