package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/velkovb/taskforge/pkg/models"
)

// TaskDefaults describes how a task type tag shapes a new task. It replaces
// a factory class per type with plain default values applied at creation.
type TaskDefaults struct {
	TitlePrefix     string
	Priority        models.Priority // Applied when the request leaves priority unset
	DueIn           time.Duration   // Default due date offset when none given
	Tags            []string
	InitialStatus   models.TaskStatus
	RequireDueDate  bool
	RequireAssignee bool
}

// Task type tags known out of the box.
const (
	SimpleTaskType  = "simple"
	UrgentTaskType  = "urgent"
	ProjectTaskType = "project"
)

// TaskTypeRegistry maps type tags to creation defaults.
type TaskTypeRegistry struct {
	types map[string]TaskDefaults
}

// NewTaskTypeRegistry returns a registry with the built-in types. Urgent
// tasks get a CRITICAL-adjacent setup: HIGH priority, a one-day deadline and
// an urgent tag.
func NewTaskTypeRegistry() *TaskTypeRegistry {
	r := &TaskTypeRegistry{types: make(map[string]TaskDefaults)}
	r.Register(SimpleTaskType, TaskDefaults{
		Priority:      models.MediumPriority,
		InitialStatus: models.DraftTaskStatus,
	})
	r.Register(UrgentTaskType, TaskDefaults{
		TitlePrefix:   "[URGENT] ",
		Priority:      models.HighPriority,
		DueIn:         24 * time.Hour,
		Tags:          []string{"urgent"},
		InitialStatus: models.OpenTaskStatus,
	})
	r.Register(ProjectTaskType, TaskDefaults{
		Priority:        models.MediumPriority,
		InitialStatus:   models.DraftTaskStatus,
		RequireAssignee: true,
	})
	return r
}

// Register adds or replaces a task type.
func (r *TaskTypeRegistry) Register(tag string, defaults TaskDefaults) {
	r.types[strings.ToLower(tag)] = defaults
}

// Types lists the registered type tags.
func (r *TaskTypeRegistry) Types() []string {
	out := make([]string, 0, len(r.types))
	for tag := range r.types {
		out = append(out, tag)
	}
	return out
}

// Apply fills task fields from the tag's defaults. Explicitly set request
// fields win over defaults.
func (r *TaskTypeRegistry) Apply(tag string, task *models.Task) error {
	if tag == "" {
		tag = SimpleTaskType
	}
	defaults, ok := r.types[strings.ToLower(tag)]
	if !ok {
		return &ValidationError{Field: "task_type", Reason: fmt.Sprintf("unknown task type %q", tag)}
	}
	if defaults.TitlePrefix != "" && !strings.HasPrefix(task.Title, defaults.TitlePrefix) {
		task.Title = defaults.TitlePrefix + task.Title
	}
	if task.Priority == 0 {
		task.Priority = defaults.Priority
	}
	if task.Status == "" {
		task.Status = defaults.InitialStatus
	}
	if task.DueDate == nil && defaults.DueIn > 0 {
		due := time.Now().Add(defaults.DueIn)
		task.DueDate = &due
	}
	for _, tag := range defaults.Tags {
		task.AddTag(tag)
	}
	if defaults.RequireDueDate && task.DueDate == nil {
		return &ValidationError{Field: "due_date", Reason: "required for this task type"}
	}
	if defaults.RequireAssignee && task.AssigneeID == "" {
		return &ValidationError{Field: "assignee_id", Reason: "required for this task type"}
	}
	return nil
}
