package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"taskflow-project/taskflow-service/middleware"
	"taskflow-project/taskflow-service/reporting"
	"taskflow-project/taskflow-service/services"
)

type ProjectHandler struct {
	service  *services.ProjectService
	reports  *reporting.ReportGenerator
	validate *validator.Validate
}

func NewProjectHandler(service *services.ProjectService, reports *reporting.ReportGenerator, validate *validator.Validate) *ProjectHandler {
	return &ProjectHandler{service: service, reports: reports, validate: validate}
}

type createProjectRequest struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description"`
	Settings    map[string]any `json:"settings"`
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req createProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	project, err := h.service.CreateProject(req.Name, claims.MemberID, req.Description, req.Settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.GetProject(mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

type updateProjectRequest struct {
	Name              *string        `json:"name"`
	Description       *string        `json:"description"`
	Settings          map[string]any `json:"settings"`
	DefaultAssigneeID *string        `json:"defaultAssigneeId"`
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req updateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	project, err := h.service.UpdateProject(mux.Vars(r)["projectID"], claims.MemberID, services.ProjectUpdate{
		Name:              req.Name,
		Description:       req.Description,
		Settings:          req.Settings,
		DefaultAssigneeID: req.DefaultAssigneeID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) ArchiveProject(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	project, err := h.service.ArchiveProject(mux.Vars(r)["projectID"], claims.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)
	project, err := h.service.AddMember(vars["projectID"], vars["memberID"], claims.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)
	project, err := h.service.RemoveMember(vars["projectID"], vars["memberID"], claims.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	memberID := r.URL.Query().Get("memberId")
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	writeJSON(w, http.StatusOK, h.service.ListProjects(memberID, includeArchived))
}

func (h *ProjectHandler) GetProjectMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.GetProjectMembers(mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	for _, m := range members {
		m.PasswordHash = ""
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *ProjectHandler) ExportTasksCSV(w http.ResponseWriter, r *http.Request) {
	out, err := h.reports.ExportTasksCSV(mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

func (h *ProjectHandler) ExportMembersCSV(w http.ResponseWriter, r *http.Request) {
	out, err := h.reports.ExportMembersCSV(mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

func (h *ProjectHandler) ProjectSummary(w http.ResponseWriter, r *http.Request) {
	out, err := h.reports.ProjectSummaryText(mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}
