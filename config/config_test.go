package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Base.Name != "saiten" {
		t.Errorf("expected default name saiten, got %q", cfg.Base.Name)
	}
	if !cfg.Base.Debug {
		t.Error("development environment should enable debug")
	}
	if cfg.Identify.Threshold != 0.75 {
		t.Errorf("expected default threshold 0.75, got %g", cfg.Identify.Threshold)
	}
	if cfg.Identify.SampleCap != 3 {
		t.Errorf("expected default sample cap 3, got %d", cfg.Identify.SampleCap)
	}
	if cfg.Diarization.Timeout != 300*time.Second {
		t.Errorf("expected diarization timeout 300s, got %v", cfg.Diarization.Timeout)
	}
	if cfg.Transcription.Backend != "whisper" {
		t.Errorf("expected default transcription backend whisper, got %q", cfg.Transcription.Backend)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"bad environment", func(c *Config) { c.Base.Environment = "prod" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad backend", func(c *Config) { c.Transcription.Backend = "deepgram" }, true},
		{"openai requires key", func(c *Config) { c.Transcription.Backend = "openai" }, true},
		{"openai with key", func(c *Config) {
			c.Transcription.Backend = "openai"
			c.Transcription.APIKey = "sk-test"
		}, false},
		{"threshold above one", func(c *Config) { c.Identify.Threshold = 1.5 }, true},
		{"zero sample cap", func(c *Config) { c.Identify.SampleCap = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := []byte(`
base:
  name: saiten-test
  environment: production
server:
  port: 9000
identify:
  threshold: 0.8
  sample_cap: 5
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Base.Name != "saiten-test" {
		t.Errorf("expected name from file, got %q", cfg.Base.Name)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Identify.Threshold != 0.8 {
		t.Errorf("expected threshold 0.8, got %g", cfg.Identify.Threshold)
	}
	if cfg.Identify.SampleCap != 5 {
		t.Errorf("expected sample cap 5, got %d", cfg.Identify.SampleCap)
	}
	// unset sections still get defaults
	if cfg.Database.Path != "saiten.db" {
		t.Errorf("expected default database path, got %q", cfg.Database.Path)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Run("env-only keys apply without a config file", func(t *testing.T) {
		t.Setenv("SAITEN_SERVER_PORT", "9001")
		t.Setenv("SAITEN_TRANSCRIPTION_API_KEY", "sk-from-env")
		t.Setenv("SAITEN_SERVER_MAX_UPLOAD_MB", "50")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Port != 9001 {
			t.Errorf("SAITEN_SERVER_PORT ignored: got port %d", cfg.Server.Port)
		}
		if cfg.Transcription.APIKey != "sk-from-env" {
			t.Errorf("SAITEN_TRANSCRIPTION_API_KEY ignored: got %q", cfg.Transcription.APIKey)
		}
		if cfg.Server.MaxUploadMB != 50 {
			t.Errorf("multi-word env key ignored: got %d", cfg.Server.MaxUploadMB)
		}
	})

	t.Run("env wins over file values", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yml")
		content := []byte(`
server:
  port: 8000
transcription:
  api_key: sk-from-file
`)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SAITEN_SERVER_PORT", "9001")
		t.Setenv("SAITEN_TRANSCRIPTION_API_KEY", "sk-from-env")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Port != 9001 {
			t.Errorf("expected env port 9001 over file, got %d", cfg.Server.Port)
		}
		if cfg.Transcription.APIKey != "sk-from-env" {
			t.Errorf("expected env api key over file, got %q", cfg.Transcription.APIKey)
		}
	})

	t.Run("duration keys parse from env", func(t *testing.T) {
		t.Setenv("SAITEN_EMBEDDING_TIMEOUT", "90s")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Embedding.Timeout != 90*time.Second {
			t.Errorf("expected env timeout 90s, got %v", cfg.Embedding.Timeout)
		}
	})
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
