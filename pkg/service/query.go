package service

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/storage"
)

// SearchCriteria narrows a search with exact-match and range predicates.
// Zero-valued fields match everything.
type SearchCriteria struct {
	Status        models.TaskStatus
	Priority      models.Priority // Exact match
	MinPriority   models.Priority // Range: priority >= MinPriority
	AssigneeID    string
	ProjectID     string
	TitleContains string
	Tags          []string // Matches when any tag intersects
	DueBefore     *time.Time
	DueAfter      *time.Time
}

// Sort keys accepted by Search.
const (
	SortByPriority  = "priority"
	SortByDueDate   = "due_date"
	SortByStatus    = "status"
	SortByCreatedAt = "created_at"
	SortByTitle     = "title"
)

// Named filters accepted by Search.
const (
	OverdueFilter    = "overdue"
	UnassignedFilter = "unassigned"
)

// statusSortOrder ranks live work first, the way boards display it.
var statusSortOrder = map[models.TaskStatus]int{
	models.InProgressTaskStatus: 1,
	models.OpenTaskStatus:       2,
	models.DraftTaskStatus:      3,
	models.DoneTaskStatus:       4,
	models.ArchivedTaskStatus:   5,
}

// QueryEngine answers filtered, sorted, read-only queries over the task set.
// It never mutates state.
type QueryEngine struct {
	store storage.Store
	now   func() time.Time
}

func NewQueryEngine(store storage.Store) *QueryEngine {
	return &QueryEngine{store: store, now: time.Now}
}

// Search returns tasks matching the criteria and every named filter, ordered
// by sortBy. Ordering is stable and total: ties always break by task id
// ascending, so identical inputs produce identical output ordering.
func (q *QueryEngine) Search(criteria SearchCriteria, sortBy string, filters []string) ([]models.Task, error) {
	tasks, err := q.candidates(criteria)
	if err != nil {
		return nil, err
	}

	now := q.now()
	matched := tasks[:0]
	for _, t := range tasks {
		if !q.matches(t, criteria) {
			continue
		}
		if !q.passesFilters(t, filters, now) {
			continue
		}
		matched = append(matched, t)
	}

	if err := sortTasks(matched, sortBy); err != nil {
		return nil, err
	}
	return matched, nil
}

// candidates narrows the initial scan through an indexed attribute when the
// criteria allow it, falling back to a full list.
func (q *QueryEngine) candidates(criteria SearchCriteria) ([]models.Task, error) {
	switch {
	case criteria.AssigneeID != "":
		return q.store.ListByIndex(storage.AssigneeIndex, criteria.AssigneeID)
	case criteria.ProjectID != "":
		return q.store.ListByIndex(storage.ProjectIndex, criteria.ProjectID)
	case criteria.Status != "":
		return q.store.ListByIndex(storage.StatusIndex, string(criteria.Status))
	default:
		return q.store.List()
	}
}

func (q *QueryEngine) matches(t models.Task, c SearchCriteria) bool {
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	if c.Priority != 0 && t.Priority != c.Priority {
		return false
	}
	if c.MinPriority != 0 && t.Priority < c.MinPriority {
		return false
	}
	if c.AssigneeID != "" && t.AssigneeID != c.AssigneeID {
		return false
	}
	if c.ProjectID != "" && t.ProjectID != c.ProjectID {
		return false
	}
	if c.TitleContains != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(c.TitleContains)) {
		return false
	}
	if len(c.Tags) > 0 && !tagsIntersect(t.Tags, c.Tags) {
		return false
	}
	if c.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*c.DueBefore)) {
		return false
	}
	if c.DueAfter != nil && (t.DueDate == nil || !t.DueDate.After(*c.DueAfter)) {
		return false
	}
	return true
}

func (q *QueryEngine) passesFilters(t models.Task, filters []string, now time.Time) bool {
	for _, f := range filters {
		switch f {
		case OverdueFilter:
			if !t.IsOverdue(now) {
				return false
			}
		case UnassignedFilter:
			if t.AssigneeID != "" {
				return false
			}
		}
	}
	return true
}

func tagsIntersect(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func sortTasks(tasks []models.Task, sortBy string) error {
	var less func(a, b models.Task) bool
	switch sortBy {
	case SortByPriority, "":
		// Highest priority first.
		less = func(a, b models.Task) bool { return a.Priority > b.Priority }
	case SortByDueDate:
		// Earliest due first; tasks without a due date sort last.
		less = func(a, b models.Task) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		}
	case SortByStatus:
		less = func(a, b models.Task) bool { return statusSortOrder[a.Status] < statusSortOrder[b.Status] }
	case SortByCreatedAt:
		less = func(a, b models.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortByTitle:
		less = func(a, b models.Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return errors.Errorf("unknown sort key %q", sortBy)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if less(tasks[i], tasks[j]) {
			return true
		}
		if less(tasks[j], tasks[i]) {
			return false
		}
		return tasks[i].ID < tasks[j].ID
	})
	return nil
}
