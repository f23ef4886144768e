package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voicebridge/apiv1/ai"
	"github.com/voicebridge/apiv1/utils"
)

type CorrectRequest struct {
	RawTranscript string `json:"rawTranscript" validate:"required_without=AudioBase64"`
	AudioBase64   string `json:"audioBase64" validate:"required_without=RawTranscript"`
	MimeType      string `json:"mimeType"`
}

type ColorReporterRequest struct {
	Color     string `json:"color" validate:"required"`
	AudioData string `json:"audioData" validate:"required"`
	MimeType  string `json:"mimeType"`
	Persona   string `json:"persona"`
}

type MirrorRequest struct {
	Text      string `json:"text" validate:"required_without=AudioData"`
	AudioData string `json:"audioData" validate:"required_without=Text"`
	MimeType  string `json:"mimeType"`
	Persona   string `json:"persona"`
}

type PlayRequest struct {
	Scenario   string           `json:"scenario" validate:"required"`
	ChildInput string           `json:"childInput" validate:"required"`
	History    []ai.HistoryTurn `json:"history"`
	Persona    string           `json:"persona"`
}

type WorldBuildRequest struct {
	Text      string `json:"text" validate:"required_without=AudioData"`
	AudioData string `json:"audioData" validate:"required_without=Text"`
	MimeType  string `json:"mimeType"`
	Persona   string `json:"persona"`
}

type AnalyzeRequest struct {
	TargetText      string `json:"targetText" validate:"required"`
	TranscribedText string `json:"transcribedText"`
	AudioData       string `json:"audioData"`
	MimeType        string `json:"mimeType"`
	Audience        string `json:"audience" validate:"omitempty,oneof=child adult"`
	Persona         string `json:"persona"`
}

type EmotionRequest struct {
	AudioBase64 string `json:"audioBase64" validate:"required"`
	MimeType    string `json:"mimeType"`
}

func (r *CorrectRequest) trim() {
	r.RawTranscript = strings.TrimSpace(r.RawTranscript)
	r.AudioBase64 = strings.TrimSpace(r.AudioBase64)
}

func (r *ColorReporterRequest) trim() {
	r.Color = strings.TrimSpace(r.Color)
	r.AudioData = strings.TrimSpace(r.AudioData)
}

func (r *MirrorRequest) trim() {
	r.Text = strings.TrimSpace(r.Text)
	r.AudioData = strings.TrimSpace(r.AudioData)
}

func (r *PlayRequest) trim() {
	r.Scenario = strings.TrimSpace(r.Scenario)
	r.ChildInput = strings.TrimSpace(r.ChildInput)
}

func (r *WorldBuildRequest) trim() {
	r.Text = strings.TrimSpace(r.Text)
	r.AudioData = strings.TrimSpace(r.AudioData)
}

func (r *AnalyzeRequest) trim() {
	r.TargetText = strings.TrimSpace(r.TargetText)
}

func (r *EmotionRequest) trim() {
	r.AudioBase64 = strings.TrimSpace(r.AudioBase64)
}

// optionalAudio decodes audio when present. A nil result with a nil error
// means none was sent.
func optionalAudio(encoded, mimeType string) (*ai.Audio, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	return ai.DecodeAudio(encoded, mimeType)
}

// decodeAudioOrReject answers 400 on undecodable audio.
func (h *Handler) decodeAudioOrReject(w http.ResponseWriter, r *http.Request, op, encoded, mimeType string) (*ai.Audio, bool) {
	audio, err := optionalAudio(encoded, mimeType)
	if err != nil {
		h.log.InfoContext(r.Context(), "rejected audio", slog.String("op", op), utils.Err(err))
		writeError(w, http.StatusBadRequest, utils.INVALID_AUDIO_ERROR)
		return nil, false
	}
	return audio, true
}

func (h *Handler) aiFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, ai.ErrNotConfigured) {
		h.log.WarnContext(r.Context(), "GEMINI_API_KEY is not set", slog.String("op", op))
	}
	h.serverError(w, r, op, err, utils.AI_SERVICE_ERROR)
}

func (h *Handler) BridgeCorrect(w http.ResponseWriter, r *http.Request) {
	const op = "routes.BridgeCorrect"

	req, err := DecodeValidBody[CorrectRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_TRANSCRIPT_OR_AUDIO_ERROR)
		return
	}
	audio, ok := h.decodeAudioOrReject(w, r, op, req.AudioBase64, req.MimeType)
	if !ok {
		return
	}

	result, err := h.assistant.CorrectSpeech(r.Context(), req.RawTranscript, audio)
	if err != nil {
		h.aiFailure(w, r, op, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": result})
}

func (h *Handler) ColorReporter(w http.ResponseWriter, r *http.Request) {
	const op = "routes.ColorReporter"

	req, err := DecodeValidBody[ColorReporterRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_COLOR_REPORT_FIELDS_ERROR)
		return
	}
	audio, ok := h.decodeAudioOrReject(w, r, op, req.AudioData, req.MimeType)
	if !ok {
		return
	}

	result, err := h.assistant.ColorReport(r.Context(), req.Color, audio, req.Persona)
	if err != nil {
		h.aiFailure(w, r, op, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": result})
}

func (h *Handler) Mirror(w http.ResponseWriter, r *http.Request) {
	const op = "routes.Mirror"

	req, err := DecodeValidBody[MirrorRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_TEXT_OR_AUDIO_ERROR)
		return
	}
	audio, ok := h.decodeAudioOrReject(w, r, op, req.AudioData, req.MimeType)
	if !ok {
		return
	}

	result, err := h.assistant.Mirror(r.Context(), req.Text, audio, req.Persona)
	if err != nil {
		h.aiFailure(w, r, op, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": result})
}

func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	const op = "routes.Play"

	req, err := DecodeValidBody[PlayRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_PLAY_FIELDS_ERROR)
		return
	}

	result, err := h.assistant.Play(r.Context(), req.Scenario, req.ChildInput, req.History, req.Persona)
	if err != nil {
		h.aiFailure(w, r, op, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": result})
}

// WorldBuild writes the story and then tries to illustrate it. A failed or
// skipped illustration still returns the story.
func (h *Handler) WorldBuild(w http.ResponseWriter, r *http.Request) {
	const op = "routes.WorldBuild"

	req, err := DecodeValidBody[WorldBuildRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_TEXT_OR_AUDIO_ERROR)
		return
	}
	audio, ok := h.decodeAudioOrReject(w, r, op, req.AudioData, req.MimeType)
	if !ok {
		return
	}

	story, err := h.assistant.WorldBuild(r.Context(), req.Text, audio, req.Persona)
	if err != nil {
		h.aiFailure(w, r, op, err)
		return
	}
	if story.ImagePrompt != "" {
		imageURL, err := h.assistant.Illustrate(r.Context(), story.ImagePrompt)
		if err != nil {
			h.log.WarnContext(r.Context(), "illustration skipped", slog.String("op", op), utils.Err(err))
		} else {
			story.ImageURL = imageURL
		}
	}
	writeSuccess(w, http.StatusOK, envelope{"data": story})
}

func (h *Handler) TherapyAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "routes.TherapyAnalyze"

	req, err := DecodeValidBody[AnalyzeRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_TARGET_TEXT_ERROR)
		return
	}
	audio, ok := h.decodeAudioOrReject(w, r, op, req.AudioData, req.MimeType)
	if !ok {
		return
	}

	if audio == nil && strings.TrimSpace(req.TranscribedText) == "" {
		writeSuccess(w, http.StatusOK, envelope{"data": silentAttempt()})
		return
	}

	result, err := h.assistant.AnalyzeSpeech(r.Context(), ai.AnalyzeInput{
		TargetText:      req.TargetText,
		TranscribedText: req.TranscribedText,
		Audio:           audio,
		Audience:        req.Audience,
		Persona:         req.Persona,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "request failed", slog.String("op", op), utils.Err(err))
		writeJSON(w, http.StatusInternalServerError, envelope{
			"success": false,
			"error":   utils.AI_SERVICE_ERROR,
			"details": err.Error(),
		})
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": result})
}

// silentAttempt is the analysis of an attempt where nothing was heard.
func silentAttempt() *ai.SpeechAnalysis {
	return &ai.SpeechAnalysis{
		Feedback:      utils.NO_SPEECH_FEEDBACK,
		Mispronounced: []ai.WordFeedback{},
		Encouragement: utils.NO_SPEECH_ENCOURAGEMENT,
	}
}

func (h *Handler) TherapyEmotion(w http.ResponseWriter, r *http.Request) {
	const op = "routes.TherapyEmotion"

	req, err := DecodeValidBody[EmotionRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_AUDIO_ERROR)
		return
	}
	audio, ok := h.decodeAudioOrReject(w, r, op, req.AudioBase64, req.MimeType)
	if !ok {
		return
	}
	if audio == nil {
		writeError(w, http.StatusBadRequest, utils.MISSING_AUDIO_ERROR)
		return
	}

	result, err := h.assistant.ClassifyEmotion(r.Context(), audio)
	if err != nil {
		h.aiFailure(w, r, op, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": result})
}
