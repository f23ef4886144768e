package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AudioPlayer plays encoded audio, returning when playback ends or ctx is done.
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte, contentType string) error
}

type VendorOption func(*VendorSpeaker)

func WithVoice(voiceID string) VendorOption {
	return func(v *VendorSpeaker) { v.voiceID = voiceID }
}

func WithAccessToken(token string) VendorOption {
	return func(v *VendorSpeaker) { v.token = token }
}

func WithHTTPClient(hc *http.Client) VendorOption {
	return func(v *VendorSpeaker) { v.http = hc }
}

// VendorSpeaker asks the VoiceBridge server for synthesized audio and plays it.
type VendorSpeaker struct {
	baseURL string
	voiceID string
	token   string
	http    *http.Client
	player  AudioPlayer
	slot    slot
}

func NewVendorSpeaker(baseURL string, player AudioPlayer, opts ...VendorOption) *VendorSpeaker {
	v := &VendorSpeaker{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		player:  player,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type ttsRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
}

type ttsResponse struct {
	Success     bool   `json:"success"`
	Audio       string `json:"audio"`
	ContentType string `json:"contentType"`
	Error       string `json:"error"`
}

func (v *VendorSpeaker) Speak(ctx context.Context, text string) error {
	ctx, run := v.slot.begin(ctx)
	defer v.slot.end(run)

	audio, contentType, err := v.fetch(ctx, text)
	if err != nil {
		return err
	}
	return v.player.Play(ctx, audio, contentType)
}

func (v *VendorSpeaker) Cancel() { v.slot.cancel() }

func (v *VendorSpeaker) fetch(ctx context.Context, text string) ([]byte, string, error) {
	body, err := json.Marshal(ttsRequest{Text: text, VoiceID: v.voiceID})
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("speech: tts request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, "", fmt.Errorf("speech: read tts response: %w", err)
	}
	var out ttsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, "", fmt.Errorf("speech: decode tts response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		if out.Error == "" {
			out.Error = resp.Status
		}
		return nil, "", fmt.Errorf("speech: tts failed: %s", out.Error)
	}

	audio, err := base64.StdEncoding.DecodeString(out.Audio)
	if err != nil {
		return nil, "", fmt.Errorf("speech: decode audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", errors.New("speech: empty audio")
	}
	return audio, out.ContentType, nil
}
