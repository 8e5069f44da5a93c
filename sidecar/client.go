// Package sidecar provides the shared HTTP client used to talk to the local
// model sidecars (diarization, embedding, transcription). All sidecars share
// the same surface: a GET /health probe and JSON responses to multipart
// audio uploads.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// Client is an HTTP client bound to one sidecar base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the sidecar at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured sidecar base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Healthy reports whether the sidecar's /health endpoint answers 200.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// FileField is the audio file part of a multipart upload.
type FileField struct {
	// FieldName is the form field name (e.g. "audio", "file").
	FieldName string
	// Path is the local file to upload.
	Path string
	// FileName is the file name sent to the server. Defaults to "audio.wav".
	FileName string
}

// PostMultipart uploads the file plus extra form fields to the given path
// and decodes the JSON response into out. Non-200 responses become errors
// carrying the response body.
func (c *Client) PostMultipart(ctx context.Context, path string, file FileField, fields map[string]string, out any) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("read audio file: %w", err)
	}
	defer f.Close()

	name := file.FileName
	if name == "" {
		name = "audio.wav"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(file.FieldName, name)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("write audio data: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sidecar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sidecar error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode sidecar response: %w", err)
	}
	return nil
}
