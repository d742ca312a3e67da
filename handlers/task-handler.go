package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"taskflow-project/taskflow-service/middleware"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/services"
	"taskflow-project/taskflow-service/utils"
)

type TaskHandler struct {
	service  *services.TaskService
	validate *validator.Validate
}

func NewTaskHandler(service *services.TaskService, validate *validator.Validate) *TaskHandler {
	return &TaskHandler{service: service, validate: validate}
}

type createTaskRequest struct {
	Title          string     `json:"title" validate:"required"`
	ProjectID      string     `json:"projectId" validate:"required"`
	Description    string     `json:"description"`
	Priority       int        `json:"priority" validate:"omitempty,min=1,max=4"`
	AssigneeIDs    []string   `json:"assigneeIds"`
	TagIDs         []string   `json:"tagIds"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *float64   `json:"estimatedHours"`
	ParentTaskID   *string    `json:"parentTaskId"`
	StoryPoints    *int       `json:"storyPoints"`
	SprintID       *string    `json:"sprintId"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req createTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.service.CreateTask(services.CreateTaskInput{
		Title:          req.Title,
		ProjectID:      req.ProjectID,
		CreatorID:      claims.MemberID,
		Description:    req.Description,
		Priority:       models.Priority(req.Priority),
		AssigneeIDs:    req.AssigneeIDs,
		TagIDs:         req.TagIDs,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ParentTaskID:   req.ParentTaskID,
		StoryPoints:    req.StoryPoints,
		SprintID:       req.SprintID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTask(mux.Vars(r)["taskID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTask decodes the body twice: once into a raw map to reject any
// field name outside the allow-list, then into the typed update.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if !decodeBody(w, r, &raw) {
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	if err := services.ValidateUpdateFields(names); err != nil {
		writeError(w, err)
		return
	}

	var upd services.TaskUpdate
	if err := json.Unmarshal(raw, &upd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.service.UpdateTask(mux.Vars(r)["taskID"], upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTask(mux.Vars(r)["taskID"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req addCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(mux.Vars(r)["taskID"], claims.MemberID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

type editCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *TaskHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	var req editCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vars := mux.Vars(r)
	comment, err := h.service.EditComment(vars["taskID"], vars["commentID"], req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *TaskHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.DeleteComment(vars["taskID"], vars["commentID"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

// SearchTasks maps the query string onto the conjunctive search filter and
// paginates the result.
func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.SearchFilter{
		Query:       q.Get("q"),
		ProjectID:   q.Get("projectId"),
		AssigneeID:  q.Get("assigneeId"),
		TagID:       q.Get("tagId"),
		SprintID:    q.Get("sprintId"),
		OverdueOnly: q.Get("overdue") == "true",
	}
	if v := q.Get("status"); v != "" {
		status := models.TaskStatus(v)
		filter.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid priority", http.StatusBadRequest)
			return
		}
		priority := models.Priority(p)
		filter.Priority = &priority
	}
	if v := q.Get("dueBefore"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "Invalid dueBefore timestamp", http.StatusBadRequest)
			return
		}
		filter.DueBefore = &t
	}
	if v := q.Get("dueAfter"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "Invalid dueAfter timestamp", http.StatusBadRequest)
			return
		}
		filter.DueAfter = &t
	}

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	if perPage == 0 {
		perPage = 20
	}

	results := h.service.SearchTasks(filter)
	items, pageInfo := utils.Paginate(results, page, perPage)
	writeJSON(w, http.StatusOK, map[string]any{"tasks": items, "pagination": pageInfo})
}

func (h *TaskHandler) TasksByPriority(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.TasksByPriority(mux.Vars(r)["projectID"]))
}

func (h *TaskHandler) TaskHierarchy(w http.ResponseWriter, r *http.Request) {
	node, err := h.service.TaskHierarchy(mux.Vars(r)["taskID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}
