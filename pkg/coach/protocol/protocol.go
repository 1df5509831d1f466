// Package protocol defines the wire messages exchanged on a session's
// realtime event channel. Outbound traffic is raw binary PCM16 frames plus
// a single JSON stop control; inbound traffic is JSON objects discriminated
// by a "type" field.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// TypeSuggestion marks a live coaching suggestion.
	TypeSuggestion = "suggestion"
	// TypeTranscript marks a transcribed utterance.
	TypeTranscript = "transcript"
	// TypeAudio marks a synthesized-speech payload.
	TypeAudio = "audio"
)

// DecodeError describes a frame the client could not classify. Such frames
// are dropped after logging; they never tear down the channel.
type DecodeError struct {
	Code    string
	Message string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func badFrame(message string) *DecodeError {
	return &DecodeError{Code: "bad_frame", Message: message}
}

func unsupported(message string) *DecodeError {
	return &DecodeError{Code: "unsupported", Message: message}
}

// ServerSuggestion is a live coaching suggestion for the user.
type ServerSuggestion struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Kind      string `json:"kind,omitempty"`
	Priority  string `json:"priority,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ServerTranscript is one transcribed utterance attributed to a speaker.
type ServerTranscript struct {
	Type      string `json:"type"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// ServerAudio carries synthesized speech as base64-encoded PCM16 bytes.
type ServerAudio struct {
	Type    string `json:"type"`
	DataB64 string `json:"data"`
}

// StopControl is the single outbound control message, sent immediately
// before closing the channel to signal end-of-audio to the service.
type StopControl struct {
	Type string `json:"type"`
}

// NewStopControl returns the stop control message.
func NewStopControl() StopControl {
	return StopControl{Type: "stop"}
}

// DecodeServerMessage classifies an inbound JSON frame by its type
// discriminator. It returns one of ServerSuggestion, ServerTranscript, or
// ServerAudio, or a *DecodeError for frames that cannot be classified.
func DecodeServerMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, badFrame("invalid json frame")
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return nil, badFrame("missing type")
	}

	switch typ {
	case TypeSuggestion:
		var msg ServerSuggestion
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badFrame("invalid suggestion frame")
		}
		if strings.TrimSpace(msg.Text) == "" {
			return nil, badFrame("suggestion.text is required")
		}
		return msg, nil
	case TypeTranscript:
		var msg ServerTranscript
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badFrame("invalid transcript frame")
		}
		if strings.TrimSpace(msg.Speaker) == "" {
			return nil, badFrame("transcript.speaker is required")
		}
		switch msg.Speaker {
		case "user", "coach":
		default:
			return nil, unsupported("unsupported transcript speaker")
		}
		return msg, nil
	case TypeAudio:
		var msg ServerAudio
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badFrame("invalid audio frame")
		}
		if strings.TrimSpace(msg.DataB64) == "" {
			return nil, badFrame("audio.data is required")
		}
		return msg, nil
	default:
		return nil, unsupported("unsupported message type")
	}
}
