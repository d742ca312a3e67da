package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/services"
	"taskflow-project/taskflow-service/store"
)

func newTaskHandlerFixture(t *testing.T) (*TaskHandler, *models.Task) {
	t.Helper()
	ds, err := store.NewDataStore("")
	require.NoError(t, err)
	owner, err := ds.AddMember(models.NewMember("owner", "owner@example.com", "Owner", ""))
	require.NoError(t, err)
	project, err := ds.AddProject(models.NewProject("Apollo", owner.ID, "", nil))
	require.NoError(t, err)
	task, err := ds.AddTask(models.NewTask("Seed task", project.ID, owner.ID))
	require.NoError(t, err)

	svc := services.NewTaskService(ds, nil)
	return NewTaskHandler(svc, validator.New()), task
}

func TestGetTaskNotFoundMapsTo404(t *testing.T) {
	handler, _ := newTaskHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"taskID": "missing"})
	rec := httptest.NewRecorder()

	handler.GetTask(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTaskRejectsUnknownField(t *testing.T) {
	handler, task := newTaskHandlerFixture(t)

	body := `{"title":"New title","creatorId":"intruder"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/"+task.ID, strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"taskID": task.ID})
	rec := httptest.NewRecorder()

	handler.UpdateTask(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "creatorId")
}

func TestUpdateTaskAppliesAllowedFields(t *testing.T) {
	handler, task := newTaskHandlerFixture(t)

	body := `{"title":"New title","status":"in_progress"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/"+task.ID, strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"taskID": task.ID})
	rec := httptest.NewRecorder()

	handler.UpdateTask(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"New title"`)
	assert.Contains(t, rec.Body.String(), `"in_progress"`)
}

func TestSearchTasksPagination(t *testing.T) {
	handler, task := newTaskHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/search?q=seed&page=1&perPage=10", nil)
	rec := httptest.NewRecorder()

	handler.SearchTasks(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), task.ID)
	assert.Contains(t, rec.Body.String(), `"pagination"`)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestSearchTasksRejectsBadPriority(t *testing.T) {
	handler, _ := newTaskHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/search?priority=high", nil)
	rec := httptest.NewRecorder()

	handler.SearchTasks(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
