package coach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateSession_SubstitutesDefaults(t *testing.T) {
	var got CreateSessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/sessions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(CreateSessionResponse{SessionID: "sess-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	id, err := c.CreateSession(context.Background(), SessionContext{UserName: "Ana"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if id != "sess-42" {
		t.Errorf("session id = %q, want sess-42", id)
	}

	if got.UserName != "Ana" {
		t.Errorf("user_name = %q, want Ana", got.UserName)
	}
	for name, v := range map[string]string{
		"event_details": got.EventDetails,
		"goals":         got.Goals,
		"participants":  got.Participants,
		"tone":          got.Tone,
	} {
		if v != "general" {
			t.Errorf("%s = %q, want general", name, v)
		}
	}
}

func TestCreateSession_RequiresUserName(t *testing.T) {
	c := NewClient("http://example.invalid")
	if _, err := c.CreateSession(context.Background(), SessionContext{}); TypeOf(err) != ErrRequest {
		t.Fatalf("error = %v, want request error", err)
	}
}

func TestCreateSession_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateSession(context.Background(), SessionContext{UserName: "Ana"})
	if TypeOf(err) != ErrRequest {
		t.Fatalf("error = %v, want request error", err)
	}
}

func TestSessionSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/sess-42/summary" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(SessionSummary{
			Stars:            []string{"clear intro"},
			Wish:             "pause more",
			FillerPercentage: 12.5,
			Takeaways:        []string{"practice openings"},
			SummaryBullets:   []string{"good energy"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	summary, err := c.SessionSummary(context.Background(), "sess-42")
	if err != nil {
		t.Fatalf("SessionSummary: %v", err)
	}
	if summary.Wish != "pause more" || summary.FillerPercentage != 12.5 {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.Stars) != 1 || len(summary.Takeaways) != 1 || len(summary.SummaryBullets) != 1 {
		t.Errorf("summary lists = %+v", summary)
	}
}

func TestChannelURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://coach.local:8080", "ws://coach.local:8080/v1/sessions/sess-1/stream"},
		{"https://coach.example.com", "wss://coach.example.com/v1/sessions/sess-1/stream"},
		{"wss://coach.example.com", "wss://coach.example.com/v1/sessions/sess-1/stream"},
	}

	for _, tt := range tests {
		c := NewClient(tt.base)
		got, err := c.ChannelURL("sess-1")
		if err != nil {
			t.Fatalf("ChannelURL(%q): %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("ChannelURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestProbeHealth_FailureIsNonFatal(t *testing.T) {
	// Server that always errors; the probe must swallow it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.ProbeHealth(context.Background())

	// Unreachable host must not panic either.
	c2 := NewClient("http://127.0.0.1:1")
	c2.ProbeHealth(context.Background())
}
