package routes

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/voicebridge/apiv1/elevenlabs"
	"github.com/voicebridge/apiv1/utils"
)

type TTSRequest struct {
	Text            string   `json:"text" validate:"required"`
	VoiceID         string   `json:"voiceId"`
	Stability       *float64 `json:"stability" validate:"omitempty,gte=0,lte=1"`
	SimilarityBoost *float64 `json:"similarityBoost" validate:"omitempty,gte=0,lte=1"`
}

type TherapyTTSRequest struct {
	Text    string   `json:"text" validate:"required"`
	VoiceID string   `json:"voiceId"`
	Speed   *float64 `json:"speed" validate:"omitempty,gte=0.7,lte=1.2"`
}

func (r *TTSRequest) trim()        { r.Text = strings.TrimSpace(r.Text) }
func (r *TherapyTTSRequest) trim() { r.Text = strings.TrimSpace(r.Text) }

func (h *Handler) TTS(w http.ResponseWriter, r *http.Request) {
	const op = "routes.TTS"

	req, err := DecodeValidBody[TTSRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_TEXT_ERROR)
		return
	}

	settings := elevenlabs.DefaultSettings
	if req.Stability != nil {
		settings.Stability = *req.Stability
	}
	if req.SimilarityBoost != nil {
		settings.SimilarityBoost = *req.SimilarityBoost
	}
	h.synthesize(w, r, op, elevenlabs.SynthesisRequest{
		Text:     req.Text,
		VoiceID:  elevenlabs.ResolveVoice(req.VoiceID, elevenlabs.DefaultVoice),
		Settings: settings,
	})
}

// TherapyTTS always uses the calm therapy preset; only the speed is adjustable.
func (h *Handler) TherapyTTS(w http.ResponseWriter, r *http.Request) {
	const op = "routes.TherapyTTS"

	req, err := DecodeValidBody[TherapyTTSRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_TEXT_ERROR)
		return
	}

	speed := elevenlabs.DefaultTherapySpeed
	if req.Speed != nil {
		speed = *req.Speed
	}
	settings := elevenlabs.TherapySettings
	settings.Speed = &speed
	h.synthesize(w, r, op, elevenlabs.SynthesisRequest{
		Text:     req.Text,
		VoiceID:  elevenlabs.ResolveVoice(req.VoiceID, elevenlabs.TherapyVoice),
		Settings: settings,
	})
}

func (h *Handler) synthesize(w http.ResponseWriter, r *http.Request, op string, req elevenlabs.SynthesisRequest) {
	audio, err := h.speech.Synthesize(r.Context(), req)
	if err != nil {
		h.serverError(w, r, op, err, utils.TTS_ERROR)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{
		"audio":       base64.StdEncoding.EncodeToString(audio),
		"contentType": elevenlabs.AudioMIME,
	})
}

func (h *Handler) Voices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.speech.Voices(r.Context())
	if err != nil {
		h.serverError(w, r, "routes.Voices", err, utils.VOICES_ERROR)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"voices": voices})
}
