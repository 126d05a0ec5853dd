package storage

import (
	"github.com/pkg/errors"

	"github.com/velkovb/taskforge/pkg/models"
)

var (
	// ErrNotFound is returned when the referenced task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrVersionConflict is returned by Put when the task was modified since
	// the caller read it. The caller must re-read and retry.
	ErrVersionConflict = errors.New("task version conflict")
	// ErrAlreadyExists is returned when creating a task whose id is taken.
	ErrAlreadyExists = errors.New("task already exists")
)

// NoVersionCheck skips the optimistic-concurrency check on Put. Used when
// inserting a task that does not exist yet.
const NoVersionCheck int64 = -1

// Indexed attribute names accepted by ListByIndex.
const (
	StatusIndex   = "status"
	AssigneeIndex = "assignee_id"
	ProjectIndex  = "project_id"
	ParentIndex   = "parent_id"
)

// Store is the repository port for tasks. The engine never assumes a specific
// storage technology behind it; the in-memory store in this package and the
// postgres store under internal/storage are two interchangeable
// implementations.
type Store interface {
	// Get retrieves a task by id, or ErrNotFound.
	Get(id string) (models.Task, error)
	// Put writes the task. When expectedVersion is NoVersionCheck the task
	// must not already exist (ErrAlreadyExists otherwise); any other value
	// must match the stored version or Put fails with ErrVersionConflict.
	Put(t models.Task, expectedVersion int64) error
	// Delete removes a task by id, or ErrNotFound.
	Delete(id string) error
	// ListByIndex returns tasks whose indexed attribute equals value.
	ListByIndex(attribute, value string) ([]models.Task, error)
	// List returns all tasks.
	List() ([]models.Task, error)
	// Close releases any resources held by the store.
	Close() error
}
