package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greenunimind/api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthEnvelope wraps signup and login responses. RefreshToken mirrors
// AccessToken for client compatibility; the API issues a single token.
type AuthEnvelope struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	OTPExpiresAt string       `json:"otpExpiresAt,omitempty"`
}

// CooldownEnvelope is the 429 body for resend requests inside the cooldown window.
type CooldownEnvelope struct {
	IsResendCooldown        bool `json:"isResendCooldown"`
	RemainingTime           int  `json:"remainingTime"`
	ResendCooldownRemaining int  `json:"resendCooldownRemaining"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, msg string, data interface{}) {
	writeJSON(w, status, MessageEnvelope{Success: true, Message: msg, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors onto HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	var cooldown *domain.CooldownError
	if errors.As(err, &cooldown) {
		writeJSON(w, http.StatusTooManyRequests, MessageEnvelope{
			Error: err.Error(),
			Data: CooldownEnvelope{
				IsResendCooldown:        true,
				RemainingTime:           cooldown.RemainingSeconds,
				ResendCooldownRemaining: cooldown.RemainingSeconds,
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrCooldown):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrCodeExpired), errors.Is(err, domain.ErrCodeNotRequested):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrInvalidCode), errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
