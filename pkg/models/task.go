package models

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	DraftTaskStatus      TaskStatus = "DRAFT"
	OpenTaskStatus       TaskStatus = "OPEN"
	InProgressTaskStatus TaskStatus = "IN_PROGRESS"
	DoneTaskStatus       TaskStatus = "DONE"
	ArchivedTaskStatus   TaskStatus = "ARCHIVED"

	// BlockedTaskStatus is derived, never written to storage. A task reports
	// BLOCKED when dependencies gate its start and any of them is not DONE.
	BlockedTaskStatus TaskStatus = "BLOCKED"
)

// validTransitions is the status lattice. ARCHIVED is reachable from every
// non-DONE state; DONE is terminal.
var validTransitions = map[TaskStatus][]TaskStatus{
	DraftTaskStatus:      {OpenTaskStatus, ArchivedTaskStatus},
	OpenTaskStatus:       {InProgressTaskStatus, ArchivedTaskStatus},
	InProgressTaskStatus: {DoneTaskStatus, ArchivedTaskStatus},
	DoneTaskStatus:       {},
	ArchivedTaskStatus:   {},
}

// ValidTransition reports whether from -> to is legal on the status lattice.
func ValidTransition(from, to TaskStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a storable status value.
func ValidStatus(s TaskStatus) bool {
	_, ok := validTransitions[s]
	return ok
}

type Priority int

const (
	LowPriority Priority = iota + 1
	MediumPriority
	HighPriority
	CriticalPriority
)

var priorityNames = map[Priority]string{
	LowPriority:      "LOW",
	MediumPriority:   "MEDIUM",
	HighPriority:     "HIGH",
	CriticalPriority: "CRITICAL",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParsePriority maps a name like "HIGH" to its Priority, case-insensitive.
func ParsePriority(name string) (Priority, bool) {
	for p, n := range priorityNames {
		if strings.EqualFold(n, name) {
			return p, true
		}
	}
	return 0, false
}

func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

// Task represents a single unit of trackable work.
type Task struct {
	ID           string     `json:"id" db:"id"`                           // Immutable uuid, never reused
	Title        string     `json:"title" db:"title"`                     // Required, min 3 chars after trim
	Description  string     `json:"description" db:"description"`         // Free text
	Priority     Priority   `json:"priority" db:"priority"`               // LOW < MEDIUM < HIGH < CRITICAL
	Status       TaskStatus `json:"status" db:"status"`                   // Stored status (BLOCKED is derived)
	AssigneeID   string     `json:"assignee_id" db:"assignee_id"`         // User the task is assigned to
	ProjectID    string     `json:"project_id,omitempty" db:"project_id"` // Optional project grouping
	ParentID     string     `json:"parent_id,omitempty" db:"parent_id"`   // Parent task when this is a subtask
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DueDate      *time.Time `json:"due_date,omitempty" db:"due_date"` // Nullable deadline
	Dependencies []string   `json:"dependencies"`                     // Task ids that must be DONE first
	Subtasks     []string   `json:"subtasks"`                         // Child task ids
	Tags         []string   `json:"tags"`                             // Lowercased labels
	Version      int64      `json:"version" db:"version"`             // Incremented on every mutation
}

// IsOverdue reports whether the task has a due date in the past and is still
// live (not DONE or ARCHIVED).
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == DoneTaskStatus || t.Status == ArchivedTaskStatus {
		return false
	}
	return t.DueDate.Before(now)
}

// DependsOn reports whether id is a direct dependency of the task.
func (t *Task) DependsOn(id string) bool {
	for _, d := range t.Dependencies {
		if d == id {
			return true
		}
	}
	return false
}

// HasSubtask reports whether id is a direct child of the task.
func (t *Task) HasSubtask(id string) bool {
	for _, s := range t.Subtasks {
		if s == id {
			return true
		}
	}
	return false
}

// AddTag adds a normalized tag, ignoring duplicates.
func (t *Task) AddTag(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return
	}
	for _, existing := range t.Tags {
		if existing == tag {
			return
		}
	}
	t.Tags = append(t.Tags, tag)
}

// Clone returns a deep copy so callers can hand tasks across goroutines
// without sharing the slice backing arrays.
func (t *Task) Clone() Task {
	cp := *t
	cp.Dependencies = append([]string(nil), t.Dependencies...)
	cp.Subtasks = append([]string(nil), t.Subtasks...)
	cp.Tags = append([]string(nil), t.Tags...)
	if t.DueDate != nil {
		due := *t.DueDate
		cp.DueDate = &due
	}
	return cp
}
