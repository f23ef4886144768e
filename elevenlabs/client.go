// Package elevenlabs is a small client for the ElevenLabs text-to-speech API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voicebridge/apiv1/utils"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultModel   = "eleven_multilingual_v2"
	AudioMIME      = "audio/mpeg"
)

var ErrNotConfigured = errors.New("elevenlabs: ELEVENLABS_API_KEY is not set")

// APIError is a non-2xx answer from the vendor.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return utils.ErrVendor }

type VoiceSettings struct {
	Stability       float64  `json:"stability"`
	SimilarityBoost float64  `json:"similarity_boost"`
	Speed           *float64 `json:"speed,omitempty"`
}

type SynthesisRequest struct {
	Text     string
	VoiceID  string
	Settings VoiceSettings
}

type Voice struct {
	VoiceID    string            `json:"voice_id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Labels     map[string]string `json:"labels"`
	PreviewURL string            `json:"preview_url"`
}

type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(apiKey, baseURL, model string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize returns MP3 audio for the request.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]any{
		"text":           req.Text,
		"model_id":       c.model,
		"voice_settings": req.Settings,
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/v1/text-to-speech/" + url.PathEscape(req.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", AudioMIME)

	return c.do(httpReq)
}

func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("elevenlabs: decode voices: %w", err)
	}
	return payload.Voices, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w: %w", utils.ErrVendor, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
