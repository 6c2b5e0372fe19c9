package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	if err := SaveConfig(dir, &Config{UserID: "alice"}); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.UserID != "alice" {
		t.Errorf("UserID = %q, want alice", cfg.UserID)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %q, want %q", cfg.Version, CurrentVersion)
	}

	if _, err := os.Stat(filepath.Join(dir, ".roomsync", "config.json")); err != nil {
		t.Errorf("config file not at expected path: %v", err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadConfig error = %v, want ErrNotFound", err)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".roomsync"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(dir), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(dir)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("LoadConfig error = %v, want parse error", err)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Feed != FeedMemory {
		t.Errorf("Feed = %q, want memory", s.Feed)
	}
	if s.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %s, want 5s", s.PollInterval)
	}
	if s.SuccessionLookahead != 5 || s.MaxSuccessionHops != 2 {
		t.Errorf("succession = %d/%d, want 5/2", s.SuccessionLookahead, s.MaxSuccessionHops)
	}
	if s.NATSSubjectPrefix != "roomsync.changes" {
		t.Errorf("NATSSubjectPrefix = %q", s.NATSSubjectPrefix)
	}
}

func TestLoadSettings_Overrides(t *testing.T) {
	t.Setenv("ROOMSYNC_FEED", "nats")
	t.Setenv("ROOMSYNC_POLL_INTERVAL", "250ms")
	t.Setenv("ROOMSYNC_USER_ID", "bob")
	t.Setenv("ROOMSYNC_OTEL_ENABLED", "true")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Feed != FeedNATS || s.PollInterval != 250*time.Millisecond || s.UserID != "bob" || !s.OTelEnabled {
		t.Errorf("LoadSettings = %+v", s)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "unknown feed", key: "ROOMSYNC_FEED", value: "kafka", want: "ROOMSYNC_FEED"},
		{name: "bad duration", key: "ROOMSYNC_POLL_INTERVAL", value: "soon", want: "parse env:"},
		{name: "zero hops", key: "ROOMSYNC_MAX_SUCCESSION_HOPS", value: "0", want: "ROOMSYNC_MAX_SUCCESSION_HOPS"},
		{name: "log format", key: "ROOMSYNC_LOG_FORMAT", value: "xml", want: "ROOMSYNC_LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadSettings()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadSettings error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
