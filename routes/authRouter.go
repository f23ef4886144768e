package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/voicebridge/apiv1/middlewares"
	"github.com/voicebridge/apiv1/models"
	"github.com/voicebridge/apiv1/utils"
)

type LoginAttempt struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyAttempt struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

type SignupAttempt struct {
	Email      string                    `json:"email" validate:"required,email"`
	Password   string                    `json:"password" validate:"required,min=8,max=72"`
	Name       string                    `json:"name" validate:"required,max=255"`
	Disability *models.DisabilityProfile `json:"disability"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func AuthRouter(s *mux.Router, h *Handler) {
	s.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	s.HandleFunc("/verify-email", h.VerifyEmail).Methods(http.MethodPost)
	s.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	s.HandleFunc("/resend-verification", h.ResendVerification).Methods(http.MethodPost)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.SESSION_COOKIE,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// Login authenticates with email and password. Unknown accounts and wrong
// passwords get the same answer.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "routes.Login"

	loginAttempt, err := DecodeValidBody[LoginAttempt](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_LOGIN_FIELDS_ERROR)
		return
	}

	user, err := h.users.LoginUserWithPassword(r.Context(), loginAttempt.Email, loginAttempt.Password)
	switch {
	case errors.Is(err, utils.ErrInvalidCredentials):
		h.log.InfoContext(r.Context(), "login failed", slog.String("op", op), utils.Err(err))
		writeError(w, http.StatusUnauthorized, utils.INVALID_CREDENTIALS_ERROR)
		return
	case errors.Is(err, utils.ErrVerificationRequired):
		writeJSON(w, http.StatusForbidden, envelope{
			"success":              false,
			"error":                utils.VERIFICATION_REQUIRED_ERROR,
			"requiresVerification": true,
		})
		return
	case err != nil:
		h.serverError(w, r, op, err, utils.GENERIC_LOGIN_ERROR)
		return
	}

	accessToken, err := h.tokens.CreateAccessToken(user.ID, user.Email)
	if err != nil {
		h.serverError(w, r, op, err, utils.GENERIC_LOGIN_ERROR)
		return
	}
	h.setSessionCookie(w, r, accessToken)
	writeSuccess(w, http.StatusOK, envelope{
		"user":        user.Profile(),
		"accessToken": accessToken,
	})
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	const op = "routes.VerifyEmail"

	verifyAttempt, err := DecodeValidBody[VerifyAttempt](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_VERIFY_FIELDS_ERROR)
		return
	}

	user, err := h.users.VerifyEmailCode(r.Context(), verifyAttempt.Email, strings.TrimSpace(verifyAttempt.Code))
	if err != nil {
		status, message := verifyFailure(err)
		if status == http.StatusInternalServerError {
			h.serverError(w, r, op, err, message)
			return
		}
		h.log.InfoContext(r.Context(), "verification rejected", slog.String("op", op), utils.Err(err))
		writeError(w, status, message)
		return
	}

	accessToken, err := h.tokens.CreateAccessToken(user.ID, user.Email)
	if err != nil {
		h.serverError(w, r, op, err, utils.GENERIC_VERIFY_ERROR)
		return
	}
	h.setSessionCookie(w, r, accessToken)
	writeSuccess(w, http.StatusOK, envelope{
		"message":     utils.EMAIL_VERIFIED_MESSAGE,
		"user":        user.Profile(),
		"accessToken": accessToken,
	})
}

func verifyFailure(err error) (int, string) {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return http.StatusNotFound, utils.ACCOUNT_NOT_FOUND_ERROR
	case errors.Is(err, utils.ErrAlreadyVerified):
		return http.StatusBadRequest, utils.ALREADY_VERIFIED_ERROR
	case errors.Is(err, utils.ErrCodeMismatch):
		return http.StatusBadRequest, utils.INVALID_CODE_ERROR
	case errors.Is(err, utils.ErrCodeExpired):
		return http.StatusBadRequest, utils.EXPIRED_CODE_ERROR
	default:
		return http.StatusInternalServerError, utils.GENERIC_VERIFY_ERROR
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	const op = "routes.Signup"

	signupAttempt, err := DecodeValidBody[SignupAttempt](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.INVALID_SIGNUP_ERROR)
		return
	}

	passwordHash, err := utils.HashPassword(signupAttempt.Password)
	if err != nil {
		h.serverError(w, r, op, err, utils.GENERIC_SIGNUP_ERROR)
		return
	}
	code := utils.GetVerificationCode()
	expiry := h.now().Add(h.codeTTL)

	user := &models.User{
		Email:              signupAttempt.Email,
		Name:               strings.TrimSpace(signupAttempt.Name),
		PasswordHash:       passwordHash,
		VerificationCode:   &code,
		VerificationExpiry: &expiry,
	}
	user.ApplySettings(models.DefaultSettings())
	if d := signupAttempt.Disability; d != nil {
		user.DisabilityType = d.Type
		user.DisabilitySeverity = d.Severity
		user.DisabilityDescription = d.Description
		user.SetTriggerWords(d.TriggerWords)
	}

	err = h.users.CreateUser(r.Context(), user)
	switch {
	case errors.Is(err, utils.ErrEmailTaken):
		writeError(w, http.StatusConflict, utils.EMAIL_TAKEN_SIGNUP_ERROR)
		return
	case err != nil:
		h.serverError(w, r, op, err, utils.GENERIC_SIGNUP_ERROR)
		return
	}

	if err := h.mail.SendVerificationCode(r.Context(), user.Email, user.Name, code); err != nil {
		// the account exists; the user can ask for a new code
		h.log.WarnContext(r.Context(), "verification mail not sent", slog.String("op", op), utils.Err(err))
	}

	writeSuccess(w, http.StatusCreated, envelope{
		"email":   user.Email,
		"message": utils.SIGNUP_SUCCESS_MESSAGE,
	})
}

// ResendVerification always answers with the same message so it cannot be
// used to probe which emails have accounts.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	const op = "routes.ResendVerification"

	resendRequest, err := DecodeValidBody[ResendVerificationRequest](w, r)
	if err != nil {
		h.rejectBody(w, r, op, err, utils.MISSING_EMAIL_ERROR)
		return
	}

	email := utils.NormalizeEmail(resendRequest.Email)
	code := utils.GetVerificationCode()
	err = h.users.SetVerificationCode(r.Context(), email, code, h.now().Add(h.codeTTL))
	switch {
	case errors.Is(err, utils.ErrNotFound):
		h.log.InfoContext(r.Context(), "no pending verification", slog.String("op", op))
	case err != nil:
		h.serverError(w, r, op, err, utils.GENERIC_SERVER_ERROR)
		return
	default:
		if err := h.mail.SendVerificationCode(r.Context(), email, "", code); err != nil {
			h.log.WarnContext(r.Context(), "verification mail not sent", slog.String("op", op), utils.Err(err))
		}
	}

	writeSuccess(w, http.StatusOK, envelope{"message": utils.VERIFICATION_SENT_MESSAGE})
}
