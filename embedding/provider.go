// Package embedding defines the provider interface for voice-embedding
// backends. Extractors return raw fixed-dimension vectors; normalization is
// the caller's responsibility.
package embedding

import (
	"context"

	"github.com/kikuchi-mizuki/saiten/provider"
)

// Request holds parameters for an embedding extraction call.
type Request struct {
	// AudioPath is the path to the audio file.
	AudioPath string `json:"audio_path"`
	// Start is the extraction window start in seconds. Zero with End zero
	// means the whole file.
	Start float64 `json:"start,omitempty"`
	// End is the extraction window end in seconds.
	End float64 `json:"end,omitempty"`
}

// Provider is the interface that voice-embedding backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Extract returns the speaker embedding for the requested audio window.
	// The vector is not L2-normalized.
	Extract(ctx context.Context, req Request) ([]float64, error)
}

// NewRegistry creates a new provider registry for embedding providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
