package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"employee-service/internal/observability"
	"employee-service/internal/validation"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signInResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expiresIn"`
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body signInRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	body.Email = strings.TrimSpace(body.Email)
	if errs := validation.Struct(body); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": errs})
		return
	}

	token, err := h.service.Authenticate(r.Context(), body.Email, body.Password, observability.ClientIP(r))
	if err != nil {
		var lockedErr ErrAccountLocked
		switch {
		case errors.As(err, &lockedErr):
			retryAfter := int(time.Until(lockedErr.Until).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusForbidden, lockedErr.Error())
		case errors.Is(err, ErrInvalidCredentials):
			var wrong ErrWrongPassword
			if errors.As(err, &wrong) {
				writeError(w, http.StatusUnauthorized, wrong.Error())
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, ErrTransient):
			writeError(w, http.StatusServiceUnavailable, "please retry")
		default:
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "failed to sign in")
		}
		return
	}

	writeJSON(w, http.StatusOK, signInResponse{
		Message:     "Login successful",
		AccessToken: token.AccessToken,
		ExpiresIn:   formatTTL(token.ExpiresIn),
	})
}

// formatTTL renders durations the way clients expect them, e.g. "5m".
func formatTTL(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
