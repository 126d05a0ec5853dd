package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/velkovb/taskforge/internal/log"
	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/service"
)

// userHeader carries the already-authenticated caller identity. Resolving it
// is the surrounding application's job, not this server's.
const userHeader = "X-User-ID"

// StartServer wires the handlers and blocks serving on the given port.
func StartServer(port string, svc *service.TaskService) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/tasks", TasksHandler(svc))
	mux.HandleFunc("/tasks/", TaskByIDHandler(svc))
	mux.HandleFunc("/audit", AuditHandler(svc))

	log.GetLogger().Infof("Starting TaskForge server on :%s", port)
	return http.ListenAndServe(":"+port, mux)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "TaskForge server is running")
}

type createTaskBody struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	AssigneeID  string   `json:"assignee_id"`
	ProjectID   string   `json:"project_id"`
	DueDate     *string  `json:"due_date"`
	Tags        []string `json:"tags"`
}

type updateTaskBody struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Priority        *string  `json:"priority"`
	DueDate         *string  `json:"due_date"`
	ClearDueDate    bool     `json:"clear_due_date"`
	ProjectID       *string  `json:"project_id"`
	Tags            []string `json:"tags"`
	ExpectedVersion *int64   `json:"expected_version"`
}

// TasksHandler serves GET /tasks (search) and POST /tasks (create).
func TasksHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			searchTasksHTTP(w, r, svc)
		case http.MethodPost:
			createTaskHTTP(w, r, svc)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// TaskByIDHandler serves /tasks/{id} and its status/assign/dependencies/
// subtasks subresources.
func TaskByIDHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/tasks/"), "/"), "/")
		if len(parts) == 0 || parts[0] == "" {
			http.Error(w, "Missing task id", http.StatusBadRequest)
			return
		}
		taskID := parts[0]

		if len(parts) == 1 {
			switch r.Method {
			case http.MethodGet:
				getTaskHTTP(w, r, svc, taskID)
			case http.MethodPatch:
				updateTaskHTTP(w, r, svc, taskID)
			case http.MethodDelete:
				deleteTaskHTTP(w, r, svc, taskID)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		switch parts[1] {
		case "status":
			updateStatusHTTP(w, r, svc, taskID)
		case "assign":
			assignTaskHTTP(w, r, svc, taskID)
		case "dependencies":
			dependencyHTTP(w, r, svc, taskID)
		case "subtasks":
			subtaskHTTP(w, r, svc, taskID)
		default:
			http.Error(w, "Unknown resource", http.StatusNotFound)
		}
	}
}

// AuditHandler serves GET /audit with task_id/user_id/operation filters.
func AuditHandler(svc *service.TaskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		filter := models.AuditFilter{
			TaskID:    r.URL.Query().Get("task_id"),
			UserID:    r.URL.Query().Get("user_id"),
			Operation: r.URL.Query().Get("operation"),
		}
		entries, err := svc.AuditTrail(r.Header.Get(userHeader), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func createTaskHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService) {
	var body createTaskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	req := service.CreateTaskRequest{
		Title:       body.Title,
		Description: body.Description,
		Type:        body.Type,
		AssigneeID:  body.AssigneeID,
		ProjectID:   body.ProjectID,
		Tags:        body.Tags,
	}
	if body.Priority != "" {
		p, ok := models.ParsePriority(body.Priority)
		if !ok {
			http.Error(w, fmt.Sprintf("Unknown priority %q", body.Priority), http.StatusBadRequest)
			return
		}
		req.Priority = p
	}
	if body.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *body.DueDate)
		if err != nil {
			http.Error(w, "due_date must be RFC3339", http.StatusBadRequest)
			return
		}
		req.DueDate = &due
	}
	res, err := svc.CreateTask(r.Header.Get(userHeader), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.Task)
}

func getTaskHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService, taskID string) {
	task, err := svc.GetTask(r.Header.Get(userHeader), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func updateTaskHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService, taskID string) {
	var body updateTaskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	update := service.TaskUpdate{
		Title:           body.Title,
		Description:     body.Description,
		ClearDueDate:    body.ClearDueDate,
		ProjectID:       body.ProjectID,
		Tags:            body.Tags,
		ExpectedVersion: body.ExpectedVersion,
	}
	if body.Priority != nil {
		p, ok := models.ParsePriority(*body.Priority)
		if !ok {
			http.Error(w, fmt.Sprintf("Unknown priority %q", *body.Priority), http.StatusBadRequest)
			return
		}
		update.Priority = &p
	}
	if body.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *body.DueDate)
		if err != nil {
			http.Error(w, "due_date must be RFC3339", http.StatusBadRequest)
			return
		}
		update.DueDate = &due
	}
	res, err := svc.UpdateTask(r.Header.Get(userHeader), taskID, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Task)
}

func deleteTaskHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService, taskID string) {
	if _, err := svc.DeleteTask(r.Header.Get(userHeader), taskID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func updateStatusHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService, taskID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Status          string `json:"status"`
		ExpectedVersion *int64 `json:"expected_version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	res, err := svc.UpdateTaskStatus(r.Header.Get(userHeader), taskID, models.TaskStatus(body.Status), body.ExpectedVersion)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Task)
}

func assignTaskHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService, taskID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		AssigneeID string `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	res, err := svc.AssignTask(r.Header.Get(userHeader), taskID, body.AssigneeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Task)
}

func dependencyHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService, taskID string) {
	var body struct {
		DependsOn string `json:"depends_on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	var (
		res service.OpResult
		err error
	)
	switch r.Method {
	case http.MethodPost:
		res, err = svc.AddDependency(r.Header.Get(userHeader), taskID, body.DependsOn)
	case http.MethodDelete:
		res, err = svc.RemoveDependency(r.Header.Get(userHeader), taskID, body.DependsOn)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Task)
}

func subtaskHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService, taskID string) {
	var body struct {
		ChildID string `json:"child_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	var (
		res service.OpResult
		err error
	)
	switch r.Method {
	case http.MethodPost:
		res, err = svc.AddSubtask(r.Header.Get(userHeader), taskID, body.ChildID)
	case http.MethodDelete:
		res, err = svc.RemoveSubtask(r.Header.Get(userHeader), taskID, body.ChildID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Task)
}

func searchTasksHTTP(w http.ResponseWriter, r *http.Request, svc *service.TaskService) {
	q := r.URL.Query()
	criteria := service.SearchCriteria{
		Status:        models.TaskStatus(q.Get("status")),
		AssigneeID:    q.Get("assignee_id"),
		ProjectID:     q.Get("project_id"),
		TitleContains: q.Get("title"),
	}
	if p := q.Get("priority"); p != "" {
		priority, ok := models.ParsePriority(p)
		if !ok {
			http.Error(w, fmt.Sprintf("Unknown priority %q", p), http.StatusBadRequest)
			return
		}
		criteria.Priority = priority
	}
	var filters []string
	if q.Get("overdue") == "true" {
		filters = append(filters, service.OverdueFilter)
	}
	if q.Get("unassigned") == "true" {
		filters = append(filters, service.UnassignedFilter)
	}
	tasks, err := svc.Search(r.Header.Get(userHeader), criteria, q.Get("sort_by"), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps the engine's typed errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		unauthorized *service.UnauthorizedError
		notFound     *service.NotFoundError
		validation   *service.ValidationError
		cycle        *service.CycleError
		transition   *service.InvalidTransitionError
		conflict     *service.ConcurrentModificationError
		cascade      *service.CascadeBlockedError
	)
	status := http.StatusInternalServerError
	switch {
	case asErr(err, &unauthorized):
		status = http.StatusForbidden
	case asErr(err, &notFound):
		status = http.StatusNotFound
	case asErr(err, &validation), asErr(err, &cycle), asErr(err, &transition):
		status = http.StatusUnprocessableEntity
	case asErr(err, &conflict), asErr(err, &cascade):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

func asErr(err error, target interface{}) bool {
	return errors.As(err, target)
}
