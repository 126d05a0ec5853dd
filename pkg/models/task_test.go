package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/velkovb/taskforge/pkg/models"
)

func TestStatusLattice(t *testing.T) {
	allowed := []struct {
		from, to models.TaskStatus
	}{
		{models.DraftTaskStatus, models.OpenTaskStatus},
		{models.DraftTaskStatus, models.ArchivedTaskStatus},
		{models.OpenTaskStatus, models.InProgressTaskStatus},
		{models.OpenTaskStatus, models.ArchivedTaskStatus},
		{models.InProgressTaskStatus, models.DoneTaskStatus},
		{models.InProgressTaskStatus, models.ArchivedTaskStatus},
	}
	for _, tc := range allowed {
		assert.True(t, models.ValidTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	forbidden := []struct {
		from, to models.TaskStatus
	}{
		{models.DraftTaskStatus, models.InProgressTaskStatus},
		{models.DraftTaskStatus, models.DoneTaskStatus},
		{models.OpenTaskStatus, models.DoneTaskStatus},
		{models.DoneTaskStatus, models.ArchivedTaskStatus},
		{models.DoneTaskStatus, models.InProgressTaskStatus},
		{models.ArchivedTaskStatus, models.OpenTaskStatus},
		{models.InProgressTaskStatus, models.OpenTaskStatus},
	}
	for _, tc := range forbidden {
		assert.False(t, models.ValidTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, models.ValidStatus(models.DraftTaskStatus))
	assert.True(t, models.ValidStatus(models.ArchivedTaskStatus))
	// BLOCKED is derived and never storable.
	assert.False(t, models.ValidStatus(models.BlockedTaskStatus))
	assert.False(t, models.ValidStatus(models.TaskStatus("NOPE")))
}

func TestPriorityOrderingAndParse(t *testing.T) {
	assert.True(t, models.LowPriority < models.MediumPriority)
	assert.True(t, models.MediumPriority < models.HighPriority)
	assert.True(t, models.HighPriority < models.CriticalPriority)

	p, ok := models.ParsePriority("high")
	assert.True(t, ok)
	assert.Equal(t, models.HighPriority, p)

	_, ok = models.ParsePriority("urgent")
	assert.False(t, ok)

	assert.Equal(t, "CRITICAL", models.CriticalPriority.String())
	assert.Equal(t, "UNKNOWN", models.Priority(42).String())
}

func TestIsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	task := models.Task{Status: models.OpenTaskStatus, DueDate: &past}
	assert.True(t, task.IsOverdue(now))

	task.DueDate = &future
	assert.False(t, task.IsOverdue(now))

	task.DueDate = nil
	assert.False(t, task.IsOverdue(now))

	// Finished tasks are never overdue.
	task.DueDate = &past
	task.Status = models.DoneTaskStatus
	assert.False(t, task.IsOverdue(now))
	task.Status = models.ArchivedTaskStatus
	assert.False(t, task.IsOverdue(now))
}

func TestAddTag(t *testing.T) {
	task := models.Task{}
	task.AddTag("  Urgent ")
	task.AddTag("urgent")
	task.AddTag("")
	assert.Equal(t, []string{"urgent"}, task.Tags)
}

func TestClone(t *testing.T) {
	due := time.Now()
	task := models.Task{
		ID:           "t1",
		Dependencies: []string{"t2"},
		Subtasks:     []string{"t3"},
		Tags:         []string{"a"},
		DueDate:      &due,
	}
	cp := task.Clone()
	cp.Dependencies[0] = "changed"
	cp.Tags[0] = "changed"
	*cp.DueDate = due.Add(time.Hour)

	assert.Equal(t, "t2", task.Dependencies[0])
	assert.Equal(t, "a", task.Tags[0])
	assert.True(t, task.DueDate.Equal(due))
}
