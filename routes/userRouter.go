package routes

import (
	"errors"
	"net/http"

	"github.com/voicebridge/apiv1/middlewares"
	"github.com/voicebridge/apiv1/models"
	"github.com/voicebridge/apiv1/utils"
)

// SettingsUpdate carries only the fields the client wants to change.
type SettingsUpdate struct {
	VoiceID       *string  `json:"voiceId" validate:"omitempty,max=64"`
	SpeechRate    *float64 `json:"speechRate" validate:"omitempty,gte=0.5,lte=2"`
	FontMode      *string  `json:"fontMode" validate:"omitempty,oneof=standard dyslexic"`
	TextSize      *string  `json:"textSize" validate:"omitempty,oneof=small medium large xlarge"`
	HighContrast  *bool    `json:"highContrast"`
	ReducedMotion *bool    `json:"reducedMotion"`
}

func (u SettingsUpdate) applyTo(s models.Settings) models.Settings {
	if u.VoiceID != nil {
		s.VoiceID = *u.VoiceID
	}
	if u.SpeechRate != nil {
		s.SpeechRate = *u.SpeechRate
	}
	if u.FontMode != nil {
		s.FontMode = *u.FontMode
	}
	if u.TextSize != nil {
		s.TextSize = *u.TextSize
	}
	if u.HighContrast != nil {
		s.HighContrast = *u.HighContrast
	}
	if u.ReducedMotion != nil {
		s.ReducedMotion = *u.ReducedMotion
	}
	return s
}

// currentUser loads the account behind the request's access token.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request, op string) (models.User, bool) {
	claims, ok := middlewares.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, utils.UNAUTHORIZED_ERROR)
		return models.User{}, false
	}
	user, err := h.users.GetUserByID(r.Context(), claims.Subject)
	if errors.Is(err, utils.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, utils.UNAUTHORIZED_ERROR)
		return models.User{}, false
	}
	if err != nil {
		h.serverError(w, r, op, err, utils.GENERIC_SERVER_ERROR)
		return models.User{}, false
	}
	return user, true
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r, "routes.Me")
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"user": user.Profile()})
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	const op = "routes.UpdateSettings"

	update, err := DecodeValidBody[SettingsUpdate](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.INVALID_SETTINGS_ERROR)
		return
	}
	user, ok := h.currentUser(w, r, op)
	if !ok {
		return
	}

	user, err = h.users.UpdateSettings(r.Context(), user.ID, update.applyTo(user.CurrentSettings()))
	if err != nil {
		h.serverError(w, r, op, err, utils.GENERIC_SERVER_ERROR)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"user": user.Profile()})
}
