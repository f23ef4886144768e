package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/voicebridge/apiv1/utils"
)

var validate = validator.New()

const maxBodyBytes = 25 << 20

var errMalformedBody = errors.New("malformed request body")

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "error": message})
}

// DecodeBody reads a JSON object into B, rejecting unknown fields and
// trailing data. It does not validate.
func DecodeBody[B any](w http.ResponseWriter, r *http.Request) (B, error) {
	var requestBody B
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestBody); err != nil {
		return requestBody, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return requestBody, fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return requestBody, nil
}

// DecodeValidBody decodes B, trims its text fields and runs its validate
// tags. Decoding problems wrap errMalformedBody; a failed validation wraps
// utils.ErrValidation.
func DecodeValidBody[B any](w http.ResponseWriter, r *http.Request) (B, error) {
	requestBody, err := DecodeBody[B](w, r)
	if err != nil {
		return requestBody, err
	}
	if t, ok := any(&requestBody).(trimmer); ok {
		t.trim()
	}
	if err := validate.Struct(requestBody); err != nil {
		return requestBody, fmt.Errorf("%w: %w", utils.ErrValidation, err)
	}
	return requestBody, nil
}

// trimmer is implemented by request bodies whose free text must not count
// as present when it is only whitespace.
type trimmer interface {
	trim()
}

// rejectBody answers a DecodeValidBody failure: a failed validation gets
// missingMessage, anything else the generic message.
func (h *Handler) rejectBody(w http.ResponseWriter, r *http.Request, op string, err error, missingMessage string) {
	h.log.InfoContext(r.Context(), "rejected request body", slog.String("op", op), utils.Err(err))
	if errors.Is(err, utils.ErrValidation) {
		writeError(w, http.StatusBadRequest, missingMessage)
		return
	}
	writeError(w, http.StatusBadRequest, utils.INVALID_REQUEST_ERROR)
}

// serverError logs err under op and answers 500 with message.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error, message string) {
	h.log.ErrorContext(r.Context(), "request failed", slog.String("op", op), utils.Err(err))
	writeError(w, http.StatusInternalServerError, message)
}
