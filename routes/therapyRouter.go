package routes

import (
	"net/http"
	"strings"

	"github.com/voicebridge/apiv1/models"
	"github.com/voicebridge/apiv1/utils"
)

type SessionRequest struct {
	Duration     int     `json:"duration" validate:"gte=0"`
	Accuracy     float64 `json:"accuracy" validate:"gte=0,lte=100"`
	ClarityScore float64 `json:"clarityScore" validate:"gte=0,lte=100"`
	OverallScore float64 `json:"overallScore" validate:"gte=0,lte=100"`
	TargetText   string  `json:"targetText" validate:"max=2000"`
}

// TherapyStats reports today's (UTC) totals and averages for a user.
func (h *Handler) TherapyStats(w http.ResponseWriter, r *http.Request) {
	const op = "routes.TherapyStats"

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, utils.MISSING_USER_ID_ERROR)
		return
	}
	daily, err := h.sessions.DailyStats(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, op, err, utils.GENERIC_SERVER_ERROR)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": daily})
}

// CreateSession records a practice session for the authenticated user.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "routes.CreateSession"

	req, err := DecodeValidBody[SessionRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.INVALID_SESSION_ERROR)
		return
	}
	user, ok := h.currentUser(w, r, op)
	if !ok {
		return
	}

	session := &models.TherapySession{
		UserID:       user.ID,
		Duration:     req.Duration,
		Accuracy:     req.Accuracy,
		ClarityScore: req.ClarityScore,
		OverallScore: req.OverallScore,
		TargetText:   req.TargetText,
	}
	if err := h.sessions.CreateTherapySession(r.Context(), session); err != nil {
		h.serverError(w, r, op, err, utils.GENERIC_SERVER_ERROR)
		return
	}
	writeSuccess(w, http.StatusCreated, envelope{"data": session})
}
