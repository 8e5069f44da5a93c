// Package ecapa implements embedding.Provider against a SpeechBrain
// ECAPA-TDNN HTTP sidecar producing 192-dimension speaker embeddings.
package ecapa

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kikuchi-mizuki/saiten/embedding"
	"github.com/kikuchi-mizuki/saiten/provider"
	"github.com/kikuchi-mizuki/saiten/sidecar"
)

const (
	// ProviderName is the registered name for the ECAPA provider.
	ProviderName = "ecapa"

	defaultBaseURL = "http://localhost:8389"
	defaultTimeout = 60 * time.Second
)

// Config holds configuration for the ECAPA embedding provider.
type Config struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// Provider implements embedding.Provider using the ECAPA HTTP sidecar.
type Provider struct {
	client *sidecar.Client
}

// NewProvider creates a new ECAPA embedding provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		client: sidecar.NewClient(cfg.BaseURL, cfg.Timeout),
	}
}

// Factory returns a provider.Factory that creates ECAPA Provider instances
// from a generic config map.
func Factory() provider.Factory[embedding.Provider] {
	return func(cfg map[string]any) (embedding.Provider, error) {
		ec := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			ec.BaseURL = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			ec.Timeout = v
		}
		return NewProvider(ec), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the ECAPA sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Healthy(ctx)
}

// Extract sends an audio window to the ECAPA sidecar and returns the raw
// speaker embedding. A zero End means the whole file is embedded.
func (p *Provider) Extract(ctx context.Context, req embedding.Request) ([]float64, error) {
	fields := map[string]string{}
	if req.End > 0 {
		fields["start_time"] = strconv.FormatFloat(req.Start, 'f', -1, 64)
		fields["end_time"] = strconv.FormatFloat(req.End, 'f', -1, 64)
	}

	var result sidecarResponse
	err := p.client.PostMultipart(ctx, "/embed",
		sidecar.FileField{FieldName: "audio", Path: req.AudioPath}, fields, &result)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("embedding error: %s", result.Error)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response contains no vector")
	}

	return result.Embedding, nil
}

// --- internal sidecar API types ---

type sidecarResponse struct {
	Embedding []float64 `json:"embedding"`
	Dim       int       `json:"dim,omitempty"`
	Error     string    `json:"error,omitempty"`
}
