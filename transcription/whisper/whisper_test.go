package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kikuchi-mizuki/saiten/transcription"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}
	return path
}

func TestTranscribe(t *testing.T) {
	var gotModel, gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		json.NewEncoder(w).Encode(map[string]any{
			"text":     "hello world",
			"language": "ja",
			"segments": []map[string]any{
				{"start": 0.0, "end": 2.5, "text": "hello"},
				{"start": 2.5, "end": 5.0, "text": "world"},
			},
		})
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL, Model: "small", Language: "ja"})

	resp, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeTempAudio(t)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotModel != "small" || gotLanguage != "ja" {
		t.Errorf("expected model=small language=ja, got %q %q", gotModel, gotLanguage)
	}
	if resp.Text != "hello world" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if len(resp.Segments) != 2 || resp.Segments[1].Text != "world" {
		t.Errorf("unexpected segments %+v", resp.Segments)
	}
	if resp.Duration != 5.0 {
		t.Errorf("expected duration from last segment end, got %g", resp.Duration)
	}
}

func TestTranscribeRequestOverridesConfig(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		gotModel = r.FormValue("model")
		json.NewEncoder(w).Encode(map[string]any{"text": "", "segments": []any{}})
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL, Model: "base"})
	_, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeTempAudio(t),
		Model:     "large-v3",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotModel != "large-v3" {
		t.Errorf("request model must override config, got %q", gotModel)
	}
}

func TestTranscribeSidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	if _, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeTempAudio(t)}); err == nil {
		t.Error("expected error on sidecar failure")
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected available against healthy sidecar")
	}

	srv.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("expected unavailable against closed sidecar")
	}
}
