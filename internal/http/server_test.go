package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/service"
	"github.com/velkovb/taskforge/pkg/storage"
)

type testLogger struct{}

func (testLogger) Infof(format string, args ...interface{})  {}
func (testLogger) Errorf(format string, args ...interface{}) {}

func newTestService() *service.TaskService {
	svc := service.NewTaskService(storage.NewMemoryStore(), service.DefaultConfig(), testLogger{})
	svc.Permissions().Grant("admin", models.AdminAction)
	return svc
}

func doRequest(handler http.HandlerFunc, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func createViaHTTP(t *testing.T, svc *service.TaskService, body map[string]interface{}) models.Task {
	t.Helper()
	rec := doRequest(TasksHandler(svc), http.MethodPost, "/tasks", "admin", body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task models.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func TestHealthHandler(t *testing.T) {
	rec := doRequest(HealthHandler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
}

func TestCreateTaskHandler(t *testing.T) {
	svc := newTestService()

	t.Run("Created", func(t *testing.T) {
		task := createViaHTTP(t, svc, map[string]interface{}{
			"title":    "Fix the build",
			"type":     "urgent",
			"priority": "CRITICAL",
		})
		assert.Equal(t, "[URGENT] Fix the build", task.Title)
		assert.Equal(t, models.CriticalPriority, task.Priority)
	})

	t.Run("BadPriority", func(t *testing.T) {
		rec := doRequest(TasksHandler(svc), http.MethodPost, "/tasks", "admin",
			map[string]interface{}{"title": "Fix the build", "priority": "ASAP"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("not json"))
		req.Header.Set("X-User-ID", "admin")
		rec := httptest.NewRecorder()
		TasksHandler(svc)(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Forbidden", func(t *testing.T) {
		rec := doRequest(TasksHandler(svc), http.MethodPost, "/tasks", "stranger",
			map[string]interface{}{"title": "Fix the build"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		rec := doRequest(TasksHandler(svc), http.MethodPost, "/tasks", "admin",
			map[string]interface{}{"title": "ab"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGetTaskHandler(t *testing.T) {
	svc := newTestService()
	task := createViaHTTP(t, svc, map[string]interface{}{"title": "Readable task"})

	rec := doRequest(TaskByIDHandler(svc), http.MethodGet, "/tasks/"+task.ID, "admin", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, task.ID, got.ID)

	rec = doRequest(TaskByIDHandler(svc), http.MethodGet, "/tasks/ghost", "admin", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTaskHandler(t *testing.T) {
	svc := newTestService()
	task := createViaHTTP(t, svc, map[string]interface{}{"title": "Before edits"})

	rec := doRequest(TaskByIDHandler(svc), http.MethodPatch, "/tasks/"+task.ID, "admin",
		map[string]interface{}{"title": "After edits", "priority": "HIGH"})
	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "After edits", got.Title)
	assert.Equal(t, models.HighPriority, got.Priority)

	t.Run("StaleVersionConflicts", func(t *testing.T) {
		rec := doRequest(TaskByIDHandler(svc), http.MethodPatch, "/tasks/"+task.ID, "admin",
			map[string]interface{}{"title": "Too late", "expected_version": 1})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestStatusHandler(t *testing.T) {
	svc := newTestService()
	task := createViaHTTP(t, svc, map[string]interface{}{"title": "Status moves"})

	rec := doRequest(TaskByIDHandler(svc), http.MethodPost, "/tasks/"+task.ID+"/status", "admin",
		map[string]interface{}{"status": "OPEN"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// DRAFT was left behind; going back is rejected.
	rec = doRequest(TaskByIDHandler(svc), http.MethodPost, "/tasks/"+task.ID+"/status", "admin",
		map[string]interface{}{"status": "DRAFT"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDependencyHandler(t *testing.T) {
	svc := newTestService()
	a := createViaHTTP(t, svc, map[string]interface{}{"title": "Task A"})
	b := createViaHTTP(t, svc, map[string]interface{}{"title": "Task B"})

	rec := doRequest(TaskByIDHandler(svc), http.MethodPost, "/tasks/"+a.ID+"/dependencies", "admin",
		map[string]interface{}{"depends_on": b.ID})
	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{b.ID}, got.Dependencies)

	t.Run("CycleRejected", func(t *testing.T) {
		rec := doRequest(TaskByIDHandler(svc), http.MethodPost, "/tasks/"+b.ID+"/dependencies", "admin",
			map[string]interface{}{"depends_on": a.ID})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("Remove", func(t *testing.T) {
		rec := doRequest(TaskByIDHandler(svc), http.MethodDelete, "/tasks/"+a.ID+"/dependencies", "admin",
			map[string]interface{}{"depends_on": b.ID})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSubtaskHandler(t *testing.T) {
	svc := newTestService()
	parent := createViaHTTP(t, svc, map[string]interface{}{"title": "Parent task"})
	child := createViaHTTP(t, svc, map[string]interface{}{"title": "Child task"})

	rec := doRequest(TaskByIDHandler(svc), http.MethodPost, "/tasks/"+parent.ID+"/subtasks", "admin",
		map[string]interface{}{"child_id": child.ID})
	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{child.ID}, got.Subtasks)
}

func TestDeleteTaskHandler(t *testing.T) {
	svc := newTestService()
	task := createViaHTTP(t, svc, map[string]interface{}{"title": "To delete"})

	rec := doRequest(TaskByIDHandler(svc), http.MethodDelete, "/tasks/"+task.ID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	t.Run("BlockedConflicts", func(t *testing.T) {
		base := createViaHTTP(t, svc, map[string]interface{}{"title": "Blocked base"})
		dep := createViaHTTP(t, svc, map[string]interface{}{"title": "Dependent"})
		rec := doRequest(TaskByIDHandler(svc), http.MethodPost, "/tasks/"+dep.ID+"/dependencies", "admin",
			map[string]interface{}{"depends_on": base.ID})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(TaskByIDHandler(svc), http.MethodDelete, "/tasks/"+base.ID, "admin", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestSearchHandler(t *testing.T) {
	svc := newTestService()
	createViaHTTP(t, svc, map[string]interface{}{"title": "Critical work", "priority": "CRITICAL"})
	createViaHTTP(t, svc, map[string]interface{}{"title": "Low work", "priority": "LOW"})

	rec := doRequest(TasksHandler(svc), http.MethodGet, "/tasks?sort_by=priority", "admin", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var tasks []models.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	if assert.Len(t, tasks, 2) {
		assert.Equal(t, "Critical work", tasks[0].Title)
	}

	t.Run("UnassignedFilter", func(t *testing.T) {
		rec := doRequest(TasksHandler(svc), http.MethodGet, "/tasks?unassigned=true", "admin", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("BadPriority", func(t *testing.T) {
		rec := doRequest(TasksHandler(svc), http.MethodGet, "/tasks?priority=WHENEVER", "admin", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuditHandler(t *testing.T) {
	svc := newTestService()
	task := createViaHTTP(t, svc, map[string]interface{}{"title": "Audited op"})

	rec := doRequest(AuditHandler(svc), http.MethodGet, "/audit?task_id="+task.ID, "admin", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var entries []models.AuditEntry
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "create_task", entries[0].Operation)
		assert.Equal(t, models.SuccessAuditOutcome, entries[0].Outcome)
	}

	t.Run("Forbidden", func(t *testing.T) {
		rec := doRequest(AuditHandler(svc), http.MethodGet, "/audit", "stranger", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
