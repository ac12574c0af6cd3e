package handler

import (
	"net/http"

	"github.com/greenunimind/api/internal/application/category"
)

// CategoryHandler serves the public category browse tree.
type CategoryHandler struct {
	svc category.Service
}

func NewCategoryHandler(svc category.Service) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListWithSubcategories(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", cats)
}
