package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/storage"
)

// Logger defines the logging interface for the engine components.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// GateMode decides whether dependencies gate only completion or also the
// start of work.
type GateMode string

const (
	CompletionGateMode GateMode = "completion"
	StartGateMode      GateMode = "start"
)

// DeleteMode decides whether DeleteTask archives the task (retained for
// audit) or removes it from the store.
type DeleteMode string

const (
	SoftDeleteMode DeleteMode = "soft"
	HardDeleteMode DeleteMode = "hard"
)

// Config carries the engine policies fixed at construction time.
type Config struct {
	CascadePolicy CascadePolicy
	DeleteMode    DeleteMode
	GateMode      GateMode
	RejectPastDue bool // Reject create/update requests with a due date in the past
	BulkWorkers   int  // Worker pool size for bulk operations; 0 means NumCPU
}

// DefaultConfig returns the strictest policies: blocking cascade, soft
// delete, completion gating.
func DefaultConfig() Config {
	return Config{
		CascadePolicy: BlockCascadePolicy,
		DeleteMode:    SoftDeleteMode,
		GateMode:      CompletionGateMode,
	}
}

// OpResult is the outcome of a successful mutation. Warnings carry listener
// failures from event dispatch; they are secondary and never indicate that
// the mutation itself failed.
type OpResult struct {
	Task     models.Task
	Warnings []error
}

// CreateTaskRequest describes a task to create. Type selects creation
// defaults from the task type registry; explicit fields win over defaults.
type CreateTaskRequest struct {
	Title       string
	Description string
	Type        string
	Priority    models.Priority
	AssigneeID  string
	ProjectID   string
	DueDate     *time.Time
	Tags        []string
}

// TaskUpdate is a partial field update. Nil fields are left untouched.
// ExpectedVersion, when set, is the optimistic-concurrency check; when nil
// the version read inside the operation is used, so a racing writer still
// loses at the store.
type TaskUpdate struct {
	Title           *string
	Description     *string
	Priority        *models.Priority
	DueDate         *time.Time
	ClearDueDate    bool
	ProjectID       *string
	Tags            []string
	ExpectedVersion *int64
}

// TaskService composes the permission registry, dependency graph, audit log,
// change notifier and query engine into the public operation set. Every
// mutation follows the same shape: authorize, validate, mutate against the
// store, append exactly one audit entry, dispatch a change event. Failed
// attempts also append exactly one audit entry and dispatch nothing.
type TaskService struct {
	store    storage.Store
	perms    *PermissionRegistry
	audit    *AuditLog
	graph    *DependencyGraph
	notifier *ChangeNotifier
	query    *QueryEngine
	types    *TaskTypeRegistry
	cfg      Config
	logger   Logger
}

func NewTaskService(store storage.Store, cfg Config, logger Logger) *TaskService {
	if cfg.CascadePolicy == "" {
		cfg.CascadePolicy = BlockCascadePolicy
	}
	if cfg.DeleteMode == "" {
		cfg.DeleteMode = SoftDeleteMode
	}
	if cfg.GateMode == "" {
		cfg.GateMode = CompletionGateMode
	}
	return &TaskService{
		store:    store,
		perms:    NewPermissionRegistry(),
		audit:    NewAuditLog(),
		graph:    NewDependencyGraph(store, cfg.CascadePolicy, logger),
		notifier: NewChangeNotifier(logger),
		query:    NewQueryEngine(store),
		types:    NewTaskTypeRegistry(),
		cfg:      cfg,
		logger:   logger,
	}
}

// Permissions exposes the registry for grant/revoke administration.
func (s *TaskService) Permissions() *PermissionRegistry { return s.perms }

// TaskTypes exposes the task type registry for custom type registration.
func (s *TaskService) TaskTypes() *TaskTypeRegistry { return s.types }

// Subscribe registers a change event listener.
func (s *TaskService) Subscribe(l Listener) Subscription { return s.notifier.Subscribe(l) }

// Unsubscribe removes a change event listener.
func (s *TaskService) Unsubscribe(sub Subscription) { s.notifier.Unsubscribe(sub) }

// AuditLen reports the number of recorded audit entries.
func (s *TaskService) AuditLen() int { return s.audit.Len() }

// CreateTask validates and stores a new task built from the request and its
// type's defaults.
func (s *TaskService) CreateTask(userID string, req CreateTaskRequest) (OpResult, error) {
	const op = "create_task"
	if err := s.authorize(userID, models.CreateTaskAction, op, ""); err != nil {
		return OpResult{}, err
	}

	now := time.Now()
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	for _, tag := range req.Tags {
		task.AddTag(tag)
	}
	if err := s.types.Apply(req.Type, &task); err != nil {
		return OpResult{}, s.fail(op, userID, "", nil, err)
	}
	if err := s.validateTask(task); err != nil {
		return OpResult{}, s.fail(op, userID, "", nil, err)
	}

	if err := s.store.Put(task, storage.NoVersionCheck); err != nil {
		return OpResult{}, s.fail(op, userID, task.ID, nil, errors.Wrap(err, "store task"))
	}
	s.logger.Infof("Created task %s (%s)", task.ID, task.Title)
	warnings := s.succeed(op, userID, task.ID, nil, snapshot(task), models.CreatedEventKind, snapshot(task))
	return OpResult{Task: task, Warnings: warnings}, nil
}

// GetTask fetches a task. Non-admin callers may only fetch tasks assigned to
// them.
func (s *TaskService) GetTask(userID, taskID string) (models.Task, error) {
	if !s.perms.IsAllowed(userID, models.ViewTaskAction) {
		return models.Task{}, &UnauthorizedError{UserID: userID, Action: models.ViewTaskAction}
	}
	task, err := s.store.Get(taskID)
	if err != nil {
		return models.Task{}, &NotFoundError{TaskID: taskID}
	}
	if !s.perms.IsAllowed(userID, models.AdminAction) && task.AssigneeID != "" && task.AssigneeID != userID {
		return models.Task{}, &UnauthorizedError{UserID: userID, Action: models.ViewTaskAction}
	}
	return task, nil
}

// UpdateTask applies a partial field update under the optimistic-concurrency
// check.
func (s *TaskService) UpdateTask(userID, taskID string, update TaskUpdate) (OpResult, error) {
	const op = "update_task"
	if err := s.authorize(userID, models.UpdateTaskAction, op, taskID); err != nil {
		return OpResult{}, err
	}
	task, err := s.store.Get(taskID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, nil, &NotFoundError{TaskID: taskID})
	}
	before := snapshot(task)
	expected := task.Version
	if update.ExpectedVersion != nil {
		expected = *update.ExpectedVersion
	}

	changes := map[string]interface{}{}
	if update.Title != nil {
		task.Title = strings.TrimSpace(*update.Title)
		changes["title"] = task.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
		changes["description"] = task.Description
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
		changes["priority"] = task.Priority.String()
	}
	if update.ClearDueDate {
		task.DueDate = nil
		changes["due_date"] = nil
	} else if update.DueDate != nil {
		due := *update.DueDate
		task.DueDate = &due
		changes["due_date"] = due
	}
	if update.ProjectID != nil {
		task.ProjectID = *update.ProjectID
		changes["project_id"] = task.ProjectID
	}
	for _, tag := range update.Tags {
		task.AddTag(tag)
	}
	if len(update.Tags) > 0 {
		changes["tags"] = task.Tags
	}
	if err := s.validateTask(task); err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, err)
	}

	task.UpdatedAt = time.Now()
	task.Version = expected + 1
	if err := s.store.Put(task, expected); err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, s.mapStoreErr(err, taskID, expected))
	}
	warnings := s.succeed(op, userID, taskID, before, snapshot(task), models.UpdatedEventKind, changes)
	return OpResult{Task: task, Warnings: warnings}, nil
}

// UpdateTaskStatus moves the task along the status lattice, enforcing
// dependency and subtask preconditions.
func (s *TaskService) UpdateTaskStatus(userID, taskID string, newStatus models.TaskStatus, expectedVersion *int64) (OpResult, error) {
	const op = "update_task_status"
	if err := s.authorize(userID, models.UpdateTaskStatusAction, op, taskID); err != nil {
		return OpResult{}, err
	}
	task, err := s.store.Get(taskID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, nil, &NotFoundError{TaskID: taskID})
	}
	before := snapshot(task)
	if !models.ValidStatus(newStatus) {
		return OpResult{}, s.fail(op, userID, taskID, before,
			&ValidationError{Field: "status", Reason: "unknown status " + string(newStatus)})
	}
	if !models.ValidTransition(task.Status, newStatus) {
		return OpResult{}, s.fail(op, userID, taskID, before,
			&InvalidTransitionError{TaskID: taskID, From: string(task.Status), To: string(newStatus)})
	}
	if err := s.checkTransitionPreconditions(task, newStatus); err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, err)
	}

	expected := task.Version
	if expectedVersion != nil {
		expected = *expectedVersion
	}
	oldStatus := task.Status
	task.Status = newStatus
	task.UpdatedAt = time.Now()
	task.Version = expected + 1
	if err := s.store.Put(task, expected); err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, s.mapStoreErr(err, taskID, expected))
	}
	s.logger.Infof("Task %s moved %s -> %s", taskID, oldStatus, newStatus)
	warnings := s.succeed(op, userID, taskID, before, snapshot(task), models.StatusChangedEventKind,
		map[string]interface{}{"status": string(newStatus), "previous_status": string(oldStatus)})
	return OpResult{Task: task, Warnings: warnings}, nil
}

func (s *TaskService) checkTransitionPreconditions(task models.Task, newStatus models.TaskStatus) error {
	if newStatus == models.DoneTaskStatus {
		ok, err := s.graph.depsDone(task)
		if err != nil {
			return err
		}
		if !ok {
			return &InvalidTransitionError{
				TaskID: task.ID, From: string(task.Status), To: string(newStatus),
				Reason: "dependencies are not done",
			}
		}
		for _, sub := range task.Subtasks {
			child, err := s.store.Get(sub)
			if err != nil {
				continue
			}
			if child.Status != models.DoneTaskStatus && child.Status != models.ArchivedTaskStatus {
				return &InvalidTransitionError{
					TaskID: task.ID, From: string(task.Status), To: string(newStatus),
					Reason: "subtask " + sub + " is not done",
				}
			}
		}
	}
	if newStatus == models.InProgressTaskStatus && s.cfg.GateMode == StartGateMode {
		ok, err := s.graph.depsDone(task)
		if err != nil {
			return err
		}
		if !ok {
			return &InvalidTransitionError{
				TaskID: task.ID, From: string(task.Status), To: string(newStatus),
				Reason: "dependencies gate start in this configuration",
			}
		}
	}
	return nil
}

// EffectiveStatus reports the display status of a task: BLOCKED when
// dependencies gate its start and are unmet, otherwise the stored status.
func (s *TaskService) EffectiveStatus(task models.Task) models.TaskStatus {
	if s.cfg.GateMode != StartGateMode {
		return task.Status
	}
	if task.Status != models.OpenTaskStatus && task.Status != models.InProgressTaskStatus {
		return task.Status
	}
	ok, err := s.graph.depsDone(task)
	if err != nil || ok {
		return task.Status
	}
	return models.BlockedTaskStatus
}

// AssignTask assigns the task to assigneeID.
func (s *TaskService) AssignTask(userID, taskID, assigneeID string) (OpResult, error) {
	const op = "assign_task"
	if err := s.authorize(userID, models.AssignTaskAction, op, taskID); err != nil {
		return OpResult{}, err
	}
	if assigneeID == "" {
		return OpResult{}, s.fail(op, userID, taskID, nil, &ValidationError{Field: "assignee_id", Reason: "cannot be empty"})
	}
	task, err := s.store.Get(taskID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, nil, &NotFoundError{TaskID: taskID})
	}
	before := snapshot(task)
	expected := task.Version
	old := task.AssigneeID
	task.AssigneeID = assigneeID
	task.UpdatedAt = time.Now()
	task.Version = expected + 1
	if err := s.store.Put(task, expected); err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, s.mapStoreErr(err, taskID, expected))
	}
	warnings := s.succeed(op, userID, taskID, before, snapshot(task), models.AssignedEventKind,
		map[string]interface{}{"assignee_id": assigneeID, "previous_assignee_id": old})
	return OpResult{Task: task, Warnings: warnings}, nil
}

// EscalatePriority raises the task's priority one step, capped at CRITICAL.
func (s *TaskService) EscalatePriority(userID, taskID string) (OpResult, error) {
	const op = "escalate_priority"
	if err := s.authorize(userID, models.UpdateTaskAction, op, taskID); err != nil {
		return OpResult{}, err
	}
	task, err := s.store.Get(taskID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, nil, &NotFoundError{TaskID: taskID})
	}
	before := snapshot(task)
	if task.Priority >= models.CriticalPriority {
		return OpResult{}, s.fail(op, userID, taskID, before,
			&ValidationError{Field: "priority", Reason: "already at CRITICAL"})
	}
	expected := task.Version
	old := task.Priority
	task.Priority++
	task.UpdatedAt = time.Now()
	task.Version = expected + 1
	if err := s.store.Put(task, expected); err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, s.mapStoreErr(err, taskID, expected))
	}
	warnings := s.succeed(op, userID, taskID, before, snapshot(task), models.UpdatedEventKind,
		map[string]interface{}{"priority": task.Priority.String(), "previous_priority": old.String()})
	return OpResult{Task: task, Warnings: warnings}, nil
}

// DeleteTask deletes the task per the configured delete mode and cascade
// policy. Soft delete archives the task so its history stays queryable; hard
// delete removes the record, while audit entries referencing it are retained
// unconditionally.
func (s *TaskService) DeleteTask(userID, taskID string) (OpResult, error) {
	const op = "delete_task"
	if err := s.authorize(userID, models.DeleteTaskAction, op, taskID); err != nil {
		return OpResult{}, err
	}
	task, err := s.store.Get(taskID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, nil, &NotFoundError{TaskID: taskID})
	}
	before := snapshot(task)

	action, err := s.graph.DeleteAction(taskID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, err)
	}
	if action == BlockCascadeAction {
		return OpResult{}, s.fail(op, userID, taskID, before,
			&CascadeBlockedError{TaskID: taskID, Reason: "live dependents or children exist under the blocking policy"})
	}
	if err := s.applyCascade(task, action); err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, err)
	}

	// Children were archived or detached above; re-read for the final write.
	task, err = s.store.Get(taskID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, before, &NotFoundError{TaskID: taskID})
	}

	switch s.cfg.DeleteMode {
	case HardDeleteMode:
		if err := s.store.Delete(taskID); err != nil {
			return OpResult{}, s.fail(op, userID, taskID, before, errors.Wrap(err, "delete task"))
		}
	default:
		if task.Status == models.DoneTaskStatus {
			return OpResult{}, s.fail(op, userID, taskID, before,
				&InvalidTransitionError{TaskID: taskID, From: string(task.Status), To: string(models.ArchivedTaskStatus)})
		}
		expected := task.Version
		task.Status = models.ArchivedTaskStatus
		task.UpdatedAt = time.Now()
		task.Version = expected + 1
		if err := s.store.Put(task, expected); err != nil {
			return OpResult{}, s.fail(op, userID, taskID, before, s.mapStoreErr(err, taskID, expected))
		}
	}
	s.logger.Infof("Deleted task %s (mode=%s, cascade=%s)", taskID, s.cfg.DeleteMode, action)
	warnings := s.succeed(op, userID, taskID, before, nil, models.DeletedEventKind,
		map[string]interface{}{"mode": string(s.cfg.DeleteMode), "cascade": string(action)})
	return OpResult{Task: task, Warnings: warnings}, nil
}

func (s *TaskService) applyCascade(task models.Task, action CascadeAction) error {
	for _, childID := range task.Subtasks {
		child, err := s.store.Get(childID)
		if err != nil {
			continue
		}
		expected := child.Version
		switch action {
		case ArchiveChildrenCascadeAction:
			if child.Status == models.DoneTaskStatus {
				child.ParentID = ""
			} else {
				child.Status = models.ArchivedTaskStatus
				child.ParentID = ""
			}
		case DetachChildrenCascadeAction:
			child.ParentID = ""
		default:
			continue
		}
		child.UpdatedAt = time.Now()
		child.Version = expected + 1
		if err := s.store.Put(child, expected); err != nil {
			return errors.Wrapf(err, "cascade to child %s", childID)
		}
	}
	return nil
}

// AddDependency records a dependency edge after authorization, delegating
// the cycle check to the graph manager.
func (s *TaskService) AddDependency(userID, taskID, dependsOnID string) (OpResult, error) {
	const op = "add_dependency"
	if err := s.authorize(userID, models.ManageDepsAction, op, taskID); err != nil {
		return OpResult{}, err
	}
	task, err := s.graph.AddDependency(taskID, dependsOnID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, nil, s.mapStoreErr(err, taskID, 0))
	}
	warnings := s.succeed(op, userID, taskID, nil, snapshot(task), models.UpdatedEventKind,
		map[string]interface{}{"dependency_added": dependsOnID})
	return OpResult{Task: task, Warnings: warnings}, nil
}

// RemoveDependency drops a dependency edge. Idempotent.
func (s *TaskService) RemoveDependency(userID, taskID, dependsOnID string) (OpResult, error) {
	const op = "remove_dependency"
	if err := s.authorize(userID, models.ManageDepsAction, op, taskID); err != nil {
		return OpResult{}, err
	}
	task, _, err := s.graph.RemoveDependency(taskID, dependsOnID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, taskID, nil, s.mapStoreErr(err, taskID, 0))
	}
	warnings := s.succeed(op, userID, taskID, nil, snapshot(task), models.UpdatedEventKind,
		map[string]interface{}{"dependency_removed": dependsOnID})
	return OpResult{Task: task, Warnings: warnings}, nil
}

// AddSubtask attaches childID under parentID.
func (s *TaskService) AddSubtask(userID, parentID, childID string) (OpResult, error) {
	const op = "add_subtask"
	if err := s.authorize(userID, models.ManageDepsAction, op, parentID); err != nil {
		return OpResult{}, err
	}
	parent, err := s.graph.AddSubtask(parentID, childID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, parentID, nil, s.mapStoreErr(err, parentID, 0))
	}
	warnings := s.succeed(op, userID, parentID, nil, snapshot(parent), models.UpdatedEventKind,
		map[string]interface{}{"subtask_added": childID})
	return OpResult{Task: parent, Warnings: warnings}, nil
}

// RemoveSubtask detaches childID from parentID. Idempotent.
func (s *TaskService) RemoveSubtask(userID, parentID, childID string) (OpResult, error) {
	const op = "remove_subtask"
	if err := s.authorize(userID, models.ManageDepsAction, op, parentID); err != nil {
		return OpResult{}, err
	}
	parent, _, err := s.graph.RemoveSubtask(parentID, childID)
	if err != nil {
		return OpResult{}, s.fail(op, userID, parentID, nil, s.mapStoreErr(err, parentID, 0))
	}
	warnings := s.succeed(op, userID, parentID, nil, snapshot(parent), models.UpdatedEventKind,
		map[string]interface{}{"subtask_removed": childID})
	return OpResult{Task: parent, Warnings: warnings}, nil
}

// Search answers a filtered, sorted query. A single view_task check gates
// the call; results are not filtered per task.
func (s *TaskService) Search(userID string, criteria SearchCriteria, sortBy string, filters []string) ([]models.Task, error) {
	if !s.perms.IsAllowed(userID, models.ViewTaskAction) {
		return nil, &UnauthorizedError{UserID: userID, Action: models.ViewTaskAction}
	}
	return s.query.Search(criteria, sortBy, filters)
}

// AuditTrail exposes the ordered audit entry sequence, filterable by task,
// user and time range.
func (s *TaskService) AuditTrail(userID string, filter models.AuditFilter) ([]models.AuditEntry, error) {
	if !s.perms.IsAllowed(userID, models.ViewAnalyticsAction) {
		return nil, &UnauthorizedError{UserID: userID, Action: models.ViewAnalyticsAction}
	}
	return s.audit.Query(filter), nil
}

// authorize records a failure audit entry and returns UnauthorizedError when
// the acting user lacks the action. Nothing is mutated on denial.
func (s *TaskService) authorize(userID, action, op, taskID string) error {
	if s.perms.IsAllowed(userID, action) {
		return nil
	}
	err := &UnauthorizedError{UserID: userID, Action: action}
	s.audit.Record(models.AuditEntry{
		UserID:    userID,
		Operation: op,
		TaskID:    taskID,
		Outcome:   models.FailureAuditOutcome,
		Reason:    err.Error(),
	})
	return err
}

// fail records the single failure audit entry for an attempted mutation and
// passes the error through.
func (s *TaskService) fail(op, userID, taskID string, before map[string]interface{}, err error) error {
	s.audit.Record(models.AuditEntry{
		UserID:    userID,
		Operation: op,
		TaskID:    taskID,
		Before:    before,
		Outcome:   models.FailureAuditOutcome,
		Reason:    err.Error(),
	})
	return err
}

// succeed records the success audit entry and dispatches the change event,
// returning listener warnings.
func (s *TaskService) succeed(op, userID, taskID string, before, after map[string]interface{}, kind models.EventKind, changes map[string]interface{}) []error {
	s.audit.Record(models.AuditEntry{
		UserID:    userID,
		Operation: op,
		TaskID:    taskID,
		Before:    before,
		After:     after,
		Outcome:   models.SuccessAuditOutcome,
	})
	return s.notifier.Publish(models.ChangeEvent{
		TaskID:    taskID,
		Kind:      kind,
		Changes:   changes,
		Timestamp: time.Now(),
	})
}

// mapStoreErr converts storage sentinel errors to the engine's typed errors.
func (s *TaskService) mapStoreErr(err error, taskID string, expected int64) error {
	switch {
	case errors.Is(err, storage.ErrVersionConflict):
		return &ConcurrentModificationError{TaskID: taskID, ExpectedVersion: expected}
	case errors.Is(err, storage.ErrNotFound):
		return &NotFoundError{TaskID: taskID}
	default:
		return err
	}
}

func (s *TaskService) validateTask(task models.Task) error {
	if len(strings.TrimSpace(task.Title)) < 3 {
		return &ValidationError{Field: "title", Reason: "must be at least 3 characters"}
	}
	if !task.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "unknown priority value"}
	}
	if !models.ValidStatus(task.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status " + string(task.Status)}
	}
	if s.cfg.RejectPastDue && task.DueDate != nil && task.DueDate.Before(time.Now()) {
		return &ValidationError{Field: "due_date", Reason: "must not be in the past"}
	}
	return nil
}

// snapshot captures the audit-relevant fields of a task.
func snapshot(t models.Task) map[string]interface{} {
	snap := map[string]interface{}{
		"title":       t.Title,
		"status":      string(t.Status),
		"priority":    t.Priority.String(),
		"assignee_id": t.AssigneeID,
		"version":     t.Version,
	}
	if t.DueDate != nil {
		snap["due_date"] = *t.DueDate
	}
	if len(t.Dependencies) > 0 {
		snap["dependencies"] = append([]string(nil), t.Dependencies...)
	}
	if len(t.Subtasks) > 0 {
		snap["subtasks"] = append([]string(nil), t.Subtasks...)
	}
	return snap
}
