package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"taskflow-project/taskflow-service/services"
)

type TagHandler struct {
	service  *services.TagService
	validate *validator.Validate
}

func NewTagHandler(service *services.TagService, validate *validator.Validate) *TagHandler {
	return &TagHandler{service: service, validate: validate}
}

type createTagRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tag, err := h.service.CreateTag(req.Name, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.service.GetTag(mux.Vars(r)["tagID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListTags())
}
