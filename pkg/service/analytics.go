package service

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/storage"
)

// Dashboard summarizes one user's tasks.
type Dashboard struct {
	TotalTasks   int            `json:"total_tasks"`
	ByStatus     map[string]int `json:"by_status"`
	OverdueTasks int            `json:"overdue_tasks"`
	HighPriority int            `json:"high_priority_tasks"` // HIGH or CRITICAL
	DueToday     int            `json:"tasks_due_today"`
	RecentTasks  []models.Task  `json:"recent_tasks"` // Up to 5, most recently updated first
}

// ProjectSummary aggregates task counts for one project.
type ProjectSummary struct {
	ProjectID            string         `json:"project_id"`
	TotalTasks           int            `json:"total_tasks"`
	CompletedTasks       int            `json:"completed_tasks"`
	CompletionPercentage float64        `json:"completion_percentage"`
	OverdueTasks         int            `json:"overdue_tasks"`
	TasksByStatus        map[string]int `json:"tasks_by_status"`
	TasksByPriority      map[string]int `json:"tasks_by_priority"`
}

// Dashboard returns the caller's task summary.
func (s *TaskService) Dashboard(userID string) (Dashboard, error) {
	if !s.perms.IsAllowed(userID, models.ViewTaskAction) {
		return Dashboard{}, &UnauthorizedError{UserID: userID, Action: models.ViewTaskAction}
	}
	tasks, err := s.store.ListByIndex(storage.AssigneeIndex, userID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "list tasks by assignee")
	}

	now := time.Now()
	d := Dashboard{ByStatus: make(map[string]int)}
	d.TotalTasks = len(tasks)
	for _, t := range tasks {
		d.ByStatus[string(t.Status)]++
		if t.IsOverdue(now) {
			d.OverdueTasks++
		}
		if t.Priority >= models.HighPriority {
			d.HighPriority++
		}
		if t.DueDate != nil {
			y1, m1, day1 := t.DueDate.Date()
			y2, m2, day2 := now.Date()
			if y1 == y2 && m1 == m2 && day1 == day2 {
				d.DueToday++
			}
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].UpdatedAt.Equal(tasks[j].UpdatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
	})
	if len(tasks) > 5 {
		tasks = tasks[:5]
	}
	d.RecentTasks = tasks
	return d, nil
}

// TaskAnalytics summarizes completion behavior over a trailing window of
// days. Completion time is measured from creation to the last update of a
// DONE task.
type TaskAnalytics struct {
	WindowDays         int            `json:"window_days"`
	TotalTasks         int            `json:"total_tasks"`
	CompletedTasks     int            `json:"completed_tasks"`
	CompletionRate     float64        `json:"completion_rate"`
	AvgCompletionHours float64        `json:"avg_completion_hours"`
	MostActiveUsers    []UserActivity `json:"most_active_users"` // Up to 5, by task count
}

// UserActivity counts tasks per assignee inside the analytics window.
type UserActivity struct {
	UserID    string `json:"user_id"`
	TaskCount int    `json:"task_count"`
}

// TaskAnalytics aggregates tasks created in the last `days` days. A
// non-positive window defaults to 30 days.
func (s *TaskService) TaskAnalytics(userID string, days int) (TaskAnalytics, error) {
	if !s.perms.IsAllowed(userID, models.ViewAnalyticsAction) {
		return TaskAnalytics{}, &UnauthorizedError{UserID: userID, Action: models.ViewAnalyticsAction}
	}
	if days <= 0 {
		days = 30
	}
	tasks, err := s.store.List()
	if err != nil {
		return TaskAnalytics{}, errors.Wrap(err, "list tasks")
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	analytics := TaskAnalytics{WindowDays: days}
	var completionTime time.Duration
	byUser := make(map[string]int)
	for _, t := range tasks {
		if t.CreatedAt.Before(cutoff) {
			continue
		}
		analytics.TotalTasks++
		if t.Status == models.DoneTaskStatus {
			analytics.CompletedTasks++
			completionTime += t.UpdatedAt.Sub(t.CreatedAt)
		}
		if t.AssigneeID != "" {
			byUser[t.AssigneeID]++
		}
	}
	if analytics.TotalTasks > 0 {
		analytics.CompletionRate = float64(analytics.CompletedTasks) / float64(analytics.TotalTasks) * 100
	}
	if analytics.CompletedTasks > 0 {
		analytics.AvgCompletionHours = completionTime.Hours() / float64(analytics.CompletedTasks)
	}

	for user, count := range byUser {
		analytics.MostActiveUsers = append(analytics.MostActiveUsers, UserActivity{UserID: user, TaskCount: count})
	}
	sort.Slice(analytics.MostActiveUsers, func(i, j int) bool {
		a, b := analytics.MostActiveUsers[i], analytics.MostActiveUsers[j]
		if a.TaskCount == b.TaskCount {
			return a.UserID < b.UserID
		}
		return a.TaskCount > b.TaskCount
	})
	if len(analytics.MostActiveUsers) > 5 {
		analytics.MostActiveUsers = analytics.MostActiveUsers[:5]
	}
	return analytics, nil
}

// ProjectSummary returns aggregate counts for a project's tasks.
func (s *TaskService) ProjectSummary(userID, projectID string) (ProjectSummary, error) {
	if !s.perms.IsAllowed(userID, models.ViewAnalyticsAction) {
		return ProjectSummary{}, &UnauthorizedError{UserID: userID, Action: models.ViewAnalyticsAction}
	}
	tasks, err := s.store.ListByIndex(storage.ProjectIndex, projectID)
	if err != nil {
		return ProjectSummary{}, errors.Wrap(err, "list tasks by project")
	}

	now := time.Now()
	summary := ProjectSummary{
		ProjectID:       projectID,
		TotalTasks:      len(tasks),
		TasksByStatus:   make(map[string]int),
		TasksByPriority: make(map[string]int),
	}
	for _, t := range tasks {
		summary.TasksByStatus[string(t.Status)]++
		summary.TasksByPriority[t.Priority.String()]++
		if t.Status == models.DoneTaskStatus {
			summary.CompletedTasks++
		}
		if t.IsOverdue(now) {
			summary.OverdueTasks++
		}
	}
	if summary.TotalTasks > 0 {
		summary.CompletionPercentage = float64(summary.CompletedTasks) / float64(summary.TotalTasks) * 100
	}
	return summary, nil
}
