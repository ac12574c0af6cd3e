package handler

import (
	"encoding/json"
	"net/http"

	"github.com/greenunimind/api/internal/application/user"
	"github.com/greenunimind/api/internal/application/verification"
	"github.com/greenunimind/api/internal/domain"
	"github.com/greenunimind/api/internal/pkg/validate"
)

// AuthHandler handles signup, login, and email verification endpoints.
type AuthHandler struct {
	users           user.Service
	verifier        verification.Service
	cooldownSeconds int
}

func NewAuthHandler(users user.Service, verifier verification.Service, cooldownSeconds int) *AuthHandler {
	return &AuthHandler{users: users, verifier: verifier, cooldownSeconds: cooldownSeconds}
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, token, err := h.users.Signup(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "account created", AuthEnvelope{
		User:         u,
		AccessToken:  token,
		RefreshToken: token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, token, err := h.users.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "logged in", AuthEnvelope{
		User:         u,
		AccessToken:  token,
		RefreshToken: token,
	})
}

// Logout exists for client symmetry. Tokens are stateless, so there is
// nothing to invalidate server side.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.verifier.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "email verified", AuthEnvelope{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.AccessToken,
	})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.verifier.RequestResend(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "verification code sent", map[string]interface{}{
		"resendCooldownRemaining": h.cooldownSeconds,
	})
}

// CooldownStatus reports the remaining resend cooldown without dispatching
// anything. It never reveals whether the email exists.
func (h *AuthHandler) CooldownStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}
	status, err := h.verifier.CooldownStatus(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", status)
}
