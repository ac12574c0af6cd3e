package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/greenunimind/api/internal/application/course"
	"github.com/greenunimind/api/internal/domain"
	"github.com/greenunimind/api/internal/pkg/validate"
	"github.com/greenunimind/api/internal/transport/http/middleware"
)

// maxThumbnailSize caps thumbnail uploads at 5 MiB.
const maxThumbnailSize = 5 << 20

// CourseHandler handles course authoring and the public catalogue.
type CourseHandler struct {
	svc course.Service
}

func NewCourseHandler(svc course.Service) *CourseHandler { return &CourseHandler{svc: svc} }

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.resolveTeacher(w, r)
	if !ok {
		return
	}
	var req domain.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.Create(r.Context(), teacher.TeacherID, &req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "course created", c)
}

func (h *CourseHandler) Publish(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.resolveTeacher(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Publish(r.Context(), teacher.TeacherID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "course published", c)
}

func (h *CourseHandler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.resolveTeacher(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxThumbnailSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	url, err := h.svc.UploadThumbnail(r.Context(), teacher.TeacherID, chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "thumbnail uploaded", map[string]string{"thumbnail": url})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", c)
}

func (h *CourseHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	courses, err := h.svc.ListPublished(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", courses)
}

func (h *CourseHandler) resolveTeacher(w http.ResponseWriter, r *http.Request) (*domain.Teacher, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	teacher, err := h.svc.TeacherForUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return nil, false
	}
	return teacher, true
}
