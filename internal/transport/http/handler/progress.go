package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/greenunimind/api/internal/application/progress"
	"github.com/greenunimind/api/internal/transport/http/middleware"
)

// ProgressHandler handles per-user course progress tracking.
type ProgressHandler struct {
	svc progress.Service
}

func NewProgressHandler(svc progress.Service) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

type completeContentRequest struct {
	ContentID string `json:"contentId"`
}

func (h *ProgressHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.svc.Start(r.Context(), claims.UserID, chi.URLParam(r, "courseId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "course started", p)
}

func (h *ProgressHandler) CompleteContent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req completeContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "contentId is required")
		return
	}
	p, err := h.svc.CompleteContent(r.Context(), claims.UserID,
		chi.URLParam(r, "courseId"), chi.URLParam(r, "lessonId"), req.ContentID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "progress updated", p)
}

func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "courseId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", p)
}
