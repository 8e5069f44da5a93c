// Package config loads and validates service configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kikuchi-mizuki/saiten/logger"
)

// Config is the root configuration for the service.
type Config struct {
	Base          BaseConfig          `yaml:"base" mapstructure:"base"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Database      DatabaseConfig      `yaml:"database" mapstructure:"database"`
	Diarization   SidecarConfig       `yaml:"diarization" mapstructure:"diarization"`
	Embedding     SidecarConfig       `yaml:"embedding" mapstructure:"embedding"`
	Transcription TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	Identify      IdentifyConfig      `yaml:"identify" mapstructure:"identify"`
}

// BaseConfig holds service identity settings.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	MaxUploadMB  int    `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// DatabaseConfig holds voiceprint store settings.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SidecarConfig holds settings for an HTTP model sidecar.
type SidecarConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TranscriptionConfig selects and configures the transcription backend.
type TranscriptionConfig struct {
	// Backend is "whisper" (sidecar) or "openai".
	Backend  string        `yaml:"backend" mapstructure:"backend"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// IdentifyConfig holds speaker identification policy settings.
type IdentifyConfig struct {
	// Threshold is the minimum voiceprint similarity for a positive match.
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	// SampleCap is the number of earliest segments sampled per speaker.
	SampleCap int `yaml:"sample_cap" mapstructure:"sample_cap"`
	// Parallelism bounds concurrent embedding extraction calls.
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism"`
}

// ApplyDefaults applies default values across all sections.
func (c *Config) ApplyDefaults() {
	if c.Base.Name == "" {
		c.Base.Name = "saiten"
	}
	if c.Base.Environment == "" {
		c.Base.Environment = "development"
	}
	if c.Base.Environment == "development" {
		c.Base.Debug = true
	}
	c.Logging.ApplyDefaults()

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8386
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 600
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 600
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 200
	}

	if c.Database.Path == "" {
		c.Database.Path = "saiten.db"
	}

	if c.Diarization.BaseURL == "" {
		c.Diarization.BaseURL = "http://localhost:8388"
	}
	if c.Diarization.Timeout == 0 {
		c.Diarization.Timeout = 300 * time.Second
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "http://localhost:8389"
	}
	if c.Embedding.Timeout == 0 {
		c.Embedding.Timeout = 60 * time.Second
	}

	if c.Transcription.Backend == "" {
		c.Transcription.Backend = "whisper"
	}
	if c.Transcription.Timeout == 0 {
		c.Transcription.Timeout = 300 * time.Second
	}

	if c.Identify.Threshold == 0 {
		c.Identify.Threshold = 0.75
	}
	if c.Identify.SampleCap == 0 {
		c.Identify.SampleCap = 3
	}
	if c.Identify.Parallelism == 0 {
		c.Identify.Parallelism = 3
	}
}

// Validate validates all sections.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, e := range validEnvs {
		if c.Base.Environment == e {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("base.environment must be one of %v (got: %s)", validEnvs, c.Base.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got: %d)", c.Server.Port)
	}
	if c.Transcription.Backend != "whisper" && c.Transcription.Backend != "openai" {
		return fmt.Errorf("transcription.backend must be whisper or openai (got: %s)", c.Transcription.Backend)
	}
	if c.Transcription.Backend == "openai" && c.Transcription.APIKey == "" {
		return fmt.Errorf("transcription.api_key is required for the openai backend")
	}
	if c.Identify.Threshold <= 0 || c.Identify.Threshold > 1 {
		return fmt.Errorf("identify.threshold must be in (0, 1] (got: %g)", c.Identify.Threshold)
	}
	if c.Identify.SampleCap < 1 {
		return fmt.Errorf("identify.sample_cap must be at least 1 (got: %d)", c.Identify.SampleCap)
	}
	if c.Identify.Parallelism < 1 {
		return fmt.Errorf("identify.parallelism must be at least 1 (got: %d)", c.Identify.Parallelism)
	}
	return nil
}
