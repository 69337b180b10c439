package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_URL", "http://localhost:8080/api")
	t.Setenv("CSRF_SECRET", "secret")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("MESSAGE_POLL_INTERVAL", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DatabasePath != "./portal.db" {
		t.Errorf("DatabasePath = %q", c.DatabasePath)
	}
	if c.Addr() != "0.0.0.0:3000" {
		t.Errorf("Addr = %q", c.Addr())
	}
	if c.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v", c.PollInterval)
	}
}

func TestLoadRequiresBackendURL(t *testing.T) {
	setRequired(t)
	t.Setenv("BACKEND_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing BACKEND_URL")
	}
}

func TestLoadRequiresCSRFSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("CSRF_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing CSRF_SECRET")
	}
}

func TestLoadPollInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("MESSAGE_POLL_INTERVAL", "250ms")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v", c.PollInterval)
	}

	t.Setenv("MESSAGE_POLL_INTERVAL", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad MESSAGE_POLL_INTERVAL")
	}
}
