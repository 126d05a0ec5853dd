package storage

import (
	"fmt"
	"sync"

	"github.com/velkovb/taskforge/pkg/models"
)

// memoryStore implements Store with an in-process map. It is the first-class
// in-memory variant of the repository port, used standalone and as the test
// double for the engine.
type memoryStore struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{tasks: make(map[string]models.Task)}
}

func (m *memoryStore) Get(id string) (models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	return t.Clone(), nil
}

func (m *memoryStore) Put(t models.Task, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[t.ID]
	if expectedVersion == NoVersionCheck {
		if ok {
			return ErrAlreadyExists
		}
	} else {
		if !ok {
			return ErrNotFound
		}
		if existing.Version != expectedVersion {
			return ErrVersionConflict
		}
	}
	m.tasks[t.ID] = t.Clone()
	return nil
}

func (m *memoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memoryStore) ListByIndex(attribute, value string) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Task
	for _, t := range m.tasks {
		var attr string
		switch attribute {
		case StatusIndex:
			attr = string(t.Status)
		case AssigneeIndex:
			attr = t.AssigneeID
		case ProjectIndex:
			attr = t.ProjectID
		case ParentIndex:
			attr = t.ParentID
		default:
			return nil, fmt.Errorf("unknown index attribute %q", attribute)
		}
		if attr == value {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (m *memoryStore) List() ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (m *memoryStore) Close() error {
	return nil
}
