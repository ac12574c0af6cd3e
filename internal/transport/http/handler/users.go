package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/greenunimind/api/internal/application/user"
	"github.com/greenunimind/api/internal/domain"
	"github.com/greenunimind/api/internal/pkg/validate"
	"github.com/greenunimind/api/internal/transport/http/middleware"
)

// UserHandler handles the role-specific account creation endpoints and the
// authenticated profile endpoint.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

// createAccountRequest is the role-specific creation payload. Older clients
// send the whole payload JSON-stringified under a "data" key; decodeCreate
// handles both shapes.
type createAccountRequest struct {
	Password string          `json:"password"`
	Student  *accountProfile `json:"student,omitempty"`
	Teacher  *accountProfile `json:"teacher,omitempty"`
}

type accountProfile struct {
	Name  profileName `json:"name"`
	Email string      `json:"email"`
}

type profileName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func decodeCreate(r *http.Request) (*createAccountRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	payload := []byte{}
	if data, ok := raw["data"]; ok {
		// Legacy shape: {"data": "<stringified json>"}
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, err
		}
		payload = []byte(inner)
	} else {
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		payload = b
	}
	var req createAccountRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (h *UserHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.RoleStudent)
}

func (h *UserHandler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.RoleTeacher)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request, role string) {
	req, err := decodeCreate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile := req.Student
	if role == domain.RoleTeacher {
		profile = req.Teacher
	}
	if profile == nil {
		writeError(w, http.StatusBadRequest, "missing "+role+" profile")
		return
	}
	signup := domain.SignupRequest{
		Email:     profile.Email,
		Password:  req.Password,
		FirstName: profile.Name.FirstName,
		LastName:  profile.Name.LastName,
		Role:      role,
	}
	if err := validate.Struct(&signup); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.SignupWithVerification(r.Context(), signup)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusCreated, role+" created successfully", AuthEnvelope{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.AccessToken,
		OTPExpiresAt: res.OTPExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, teacher, err := h.svc.Profile(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", map[string]interface{}{
		"user":    u,
		"teacher": teacher,
	})
}
