package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/storage"
)

func newTask(id string) models.Task {
	return models.Task{
		ID:       id,
		Title:    "task " + id,
		Priority: models.MediumPriority,
		Status:   models.OpenTaskStatus,
		Version:  1,
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	store := storage.NewMemoryStore()

	task := newTask("t1")
	assert.NoError(t, store.Put(task, storage.NoVersionCheck))

	got, err := store.Get("t1")
	assert.NoError(t, err)
	assert.Equal(t, "task t1", got.Title)
	assert.Equal(t, int64(1), got.Version)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStoreCreateConflicts(t *testing.T) {
	store := storage.NewMemoryStore()
	assert.NoError(t, store.Put(newTask("t1"), storage.NoVersionCheck))

	// Creating the same id again is rejected.
	assert.ErrorIs(t, store.Put(newTask("t1"), storage.NoVersionCheck), storage.ErrAlreadyExists)

	// Updating a missing id is rejected.
	assert.ErrorIs(t, store.Put(newTask("t2"), 1), storage.ErrNotFound)
}

func TestMemoryStoreVersionCheck(t *testing.T) {
	store := storage.NewMemoryStore()
	task := newTask("t1")
	assert.NoError(t, store.Put(task, storage.NoVersionCheck))

	task.Title = "updated"
	task.Version = 2
	assert.NoError(t, store.Put(task, 1))

	// Stale expected version loses.
	task.Title = "stale write"
	task.Version = 2
	assert.ErrorIs(t, store.Put(task, 1), storage.ErrVersionConflict)

	got, err := store.Get("t1")
	assert.NoError(t, err)
	assert.Equal(t, "updated", got.Title)
	assert.Equal(t, int64(2), got.Version)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := storage.NewMemoryStore()
	assert.NoError(t, store.Put(newTask("t1"), storage.NoVersionCheck))
	assert.NoError(t, store.Delete("t1"))
	assert.ErrorIs(t, store.Delete("t1"), storage.ErrNotFound)
}

func TestMemoryStoreListByIndex(t *testing.T) {
	store := storage.NewMemoryStore()

	t1 := newTask("t1")
	t1.AssigneeID = "alice"
	t2 := newTask("t2")
	t2.AssigneeID = "bob"
	t3 := newTask("t3")
	t3.AssigneeID = "alice"
	t3.Status = models.DoneTaskStatus
	for _, task := range []models.Task{t1, t2, t3} {
		assert.NoError(t, store.Put(task, storage.NoVersionCheck))
	}

	byAssignee, err := store.ListByIndex(storage.AssigneeIndex, "alice")
	assert.NoError(t, err)
	assert.Len(t, byAssignee, 2)

	byStatus, err := store.ListByIndex(storage.StatusIndex, string(models.DoneTaskStatus))
	assert.NoError(t, err)
	assert.Len(t, byStatus, 1)
	assert.Equal(t, "t3", byStatus[0].ID)

	_, err = store.ListByIndex("nonsense", "x")
	assert.Error(t, err)

	all, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := storage.NewMemoryStore()
	task := newTask("t1")
	task.Dependencies = []string{"t2"}
	assert.NoError(t, store.Put(task, storage.NoVersionCheck))

	got, err := store.Get("t1")
	assert.NoError(t, err)
	got.Dependencies[0] = "mutated"

	again, err := store.Get("t1")
	assert.NoError(t, err)
	assert.Equal(t, "t2", again.Dependencies[0])
}
