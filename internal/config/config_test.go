package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "https://coach.example.com")
	t.Setenv("COACH_API_KEY", "  sk-test  ")
	t.Setenv("COACH_USER_NAME", "Dana")
	t.Setenv("COACH_REQUEST_TIMEOUT", "5s")
	t.Setenv("COACH_DEBUG", "yes")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.BaseURL != "https://coach.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want trimmed", cfg.APIKey)
	}
	if cfg.UserName != "Dana" {
		t.Errorf("UserName = %q", cfg.UserName)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestFromEnvRejectsBadBaseURL(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "coach.example.com")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for scheme-less base URL")
	}
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("COACH_REQUEST_TIMEOUT", "soon")
	t.Setenv("COACH_DEBUG", "maybe")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want default", cfg.RequestTimeout)
	}
	if cfg.Debug {
		t.Error("unparseable COACH_DEBUG should keep default")
	}
}
