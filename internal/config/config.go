// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config carries everything the coach CLI needs to talk to the service.
type Config struct {
	// BaseURL is the HTTP origin of the coaching service.
	BaseURL string
	// APIKey authenticates session creation and summary requests.
	// Empty is allowed for locally running services with auth disabled.
	APIKey string

	// Session context defaults. Empty fields are substituted server-side
	// visible defaults by the client before the create request is sent.
	UserName     string
	EventDetails string
	Goals        string
	Participants string
	Tone         string

	// RequestTimeout bounds each control-plane HTTP request.
	RequestTimeout time.Duration

	// Debug enables verbose logging and the live mic level meter.
	Debug bool
}

// FromEnv builds a Config from COACH_* environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		BaseURL:        envOr("COACH_BASE_URL", "http://localhost:8080"),
		APIKey:         strings.TrimSpace(os.Getenv("COACH_API_KEY")),
		UserName:       envOr("COACH_USER_NAME", ""),
		EventDetails:   envOr("COACH_EVENT_DETAILS", ""),
		Goals:          envOr("COACH_GOALS", ""),
		Participants:   envOr("COACH_PARTICIPANTS", ""),
		Tone:           envOr("COACH_TONE", ""),
		RequestTimeout: envDurationOr("COACH_REQUEST_TIMEOUT", 30*time.Second),
		Debug:          envBoolOr("COACH_DEBUG", false),
	}

	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return Config{}, fmt.Errorf("COACH_BASE_URL must start with http:// or https://")
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("COACH_REQUEST_TIMEOUT must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	}
	return def
}
