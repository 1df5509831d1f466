package coach

import "time"

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerCoach Speaker = "coach"
)

// SessionContext is the caller-supplied context for a coaching session.
// It is submitted once at session creation and never written by the client
// afterwards. UserName is required; every other field is free text and
// optional.
type SessionContext struct {
	UserName     string `json:"user_name"`
	EventDetails string `json:"event_details,omitempty"`
	Goals        string `json:"goals,omitempty"`
	Participants string `json:"participants,omitempty"`
	Tone         string `json:"tone,omitempty"`
}

// TranscriptEntry is one line of the session transcript. Entries are
// append-only and ordered by arrival, not by timestamp.
type TranscriptEntry struct {
	Speaker   Speaker `json:"speaker"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
}

// Suggestion is one piece of live coaching feedback.
type Suggestion struct {
	Text      string `json:"text"`
	Type      string `json:"type,omitempty"`
	Priority  string `json:"priority,omitempty"`
	Timestamp string `json:"timestamp"`
}

// SessionSummary is the terminal feedback record produced by the coaching
// service once per session, after the audio stream has been closed.
type SessionSummary struct {
	Stars            []string `json:"stars"`
	Wish             string   `json:"wish"`
	FillerPercentage float64  `json:"filler_percentage"`
	Takeaways        []string `json:"takeaways"`
	SummaryBullets   []string `json:"summary_bullets"`
}

// CreateSessionRequest is the body of the session-creation request.
// Empty optional fields are substituted with the "general" sentinel before
// sending so the service always receives a complete context.
type CreateSessionRequest struct {
	UserName     string `json:"user_name"`
	EventDetails string `json:"event_details"`
	Goals        string `json:"goals"`
	Participants string `json:"participants"`
	Tone         string `json:"tone"`
}

// CreateSessionResponse carries the opaque session identifier used to
// address the event channel and the summary request.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// requestTimeout bounds the session-creation and summary requests. The
// event channel itself carries no timeout; a stalled peer simply produces
// no events.
const requestTimeout = 30 * time.Second
