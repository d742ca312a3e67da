package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"taskflow-project/taskflow-service/services"
)

type SprintHandler struct {
	service  *services.SprintService
	validate *validator.Validate
}

func NewSprintHandler(service *services.SprintService, validate *validator.Validate) *SprintHandler {
	return &SprintHandler{service: service, validate: validate}
}

type createSprintRequest struct {
	ProjectID string    `json:"projectId" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
	Goal      string    `json:"goal"`
}

func (h *SprintHandler) CreateSprint(w http.ResponseWriter, r *http.Request) {
	var req createSprintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sprint, err := h.service.CreateSprint(req.ProjectID, req.Name, req.StartDate, req.EndDate, req.Goal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sprint)
}

func (h *SprintHandler) GetSprint(w http.ResponseWriter, r *http.Request) {
	sprint, err := h.service.GetSprint(mux.Vars(r)["sprintID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) ActivateSprint(w http.ResponseWriter, r *http.Request) {
	sprint, err := h.service.ActivateSprint(mux.Vars(r)["sprintID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) CompleteSprint(w http.ResponseWriter, r *http.Request) {
	sprint, err := h.service.CompleteSprint(mux.Vars(r)["sprintID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) ListSprints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListSprints(mux.Vars(r)["projectID"]))
}
