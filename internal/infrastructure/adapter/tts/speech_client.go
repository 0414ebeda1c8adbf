package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const (
	pathGenerateSpeech = "/v1/generate/speech"
	pathHealth         = "/health"

	contentTypeJSON = "application/json"
	contentTypeWAV  = "audio/wav"

	defaultLanguage    = "en"
	defaultTemperature = 0.75
)

// SpeechRequest is the inference server's request body
type SpeechRequest struct {
	Text        string  `json:"text"`
	Description string  `json:"description,omitempty"`
	Language    string  `json:"language"`
	Temperature float64 `json:"temperature"`
}

// speechError is the inference server's structured error body
type speechError struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// SpeechClient talks to the speech inference server over HTTP
type SpeechClient struct {
	httpClient  *http.Client
	baseURL     string
	language    string
	temperature float64
}

// NewSpeechClient creates a client. Empty language and zero temperature use the server defaults.
func NewSpeechClient(baseURL string, timeout time.Duration, language string, temperature float64) *SpeechClient {
	if language == "" {
		language = defaultLanguage
	}
	if temperature == 0 {
		temperature = defaultTemperature
	}
	return &SpeechClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		language:    language,
		temperature: temperature,
	}
}

// GenerateSpeech returns WAV audio for text spoken in the voice description asks for
func (c *SpeechClient) GenerateSpeech(ctx context.Context, text, description string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text cannot be empty")
	}

	body, err := json.Marshal(SpeechRequest{
		Text:        text,
		Description: description,
		Language:    c.language,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathGenerateSpeech, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeWAV)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to speech service at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != contentTypeWAV {
		return nil, fmt.Errorf("unexpected content type: expected %s, got %q", contentTypeWAV, resp.Header.Get("Content-Type"))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("received empty audio data")
	}
	return audio, nil
}

// HealthCheck reports whether the inference server is up
func (c *SpeechClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHealth, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed for speech service at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}
	return nil
}

func parseErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body speechError
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return fmt.Errorf("speech service error (%s): %s (code: %s)", resp.Status, body.Detail, body.ErrorCode)
	}
	return fmt.Errorf("speech service returned non-OK status: %s, body: %s", resp.Status, string(raw))
}
