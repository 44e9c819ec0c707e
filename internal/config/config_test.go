package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		os.Unsetenv("POSTFORGE_SERVER__PORT")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 8080 {
			t.Errorf("Load() port = %v, want 8080", cfg.Server.Port)
		}
		if cfg.Generator.Provider != "gemini" {
			t.Errorf("Load() generator provider = %q, want gemini", cfg.Generator.Provider)
		}
		if cfg.Generator.MaxChars != 2900 {
			t.Errorf("Load() max_chars = %v, want 2900", cfg.Generator.MaxChars)
		}
		if cfg.Storage.Type != "memory" {
			t.Errorf("Load() storage type = %q, want memory", cfg.Storage.Type)
		}
		if !cfg.Telemetry.Enabled {
			t.Error("Load() telemetry should default to enabled")
		}
	})

	t.Run("env var override", func(t *testing.T) {
		os.Setenv("POSTFORGE_SERVER__PORT", "9000")
		defer os.Unsetenv("POSTFORGE_SERVER__PORT")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 9000 {
			t.Errorf("Load() port = %v, want 9000", cfg.Server.Port)
		}
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
linkedin:
  access_token: ${POSTFORGE_TEST_TOKEN}
  person_id: u123
generator:
  provider: groq
  model: llama-3.3-70b-versatile
schedule:
  - topic: go concurrency
    every: 6h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	os.Setenv("POSTFORGE_TEST_TOKEN", "secret-token")
	defer os.Unsetenv("POSTFORGE_TEST_TOKEN")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.LinkedIn.AccessToken != "secret-token" {
		t.Errorf("access token = %q, want substituted value", cfg.LinkedIn.AccessToken)
	}
	if cfg.LinkedIn.PersonID != "u123" {
		t.Errorf("person id = %q, want u123", cfg.LinkedIn.PersonID)
	}
	if cfg.Generator.Provider != "groq" {
		t.Errorf("provider = %q, want groq", cfg.Generator.Provider)
	}
	if len(cfg.Schedule) != 1 {
		t.Fatalf("expected 1 schedule entry, got %d", len(cfg.Schedule))
	}

	iv, err := cfg.Schedule[0].Interval()
	if err != nil {
		t.Fatalf("Interval() error = %v", err)
	}
	if iv != 6*time.Hour {
		t.Errorf("interval = %v, want 6h", iv)
	}
}

func TestScheduleIntervalDefault(t *testing.T) {
	iv, err := (ScheduleConfig{Topic: "x"}).Interval()
	if err != nil {
		t.Fatalf("Interval() error = %v", err)
	}
	if iv != 24*time.Hour {
		t.Errorf("interval = %v, want 24h", iv)
	}
}
