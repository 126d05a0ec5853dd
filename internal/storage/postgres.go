package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/storage"
)

// PostgresStore implements the repository port on PostgreSQL via sqlx. The
// optimistic-concurrency check rides on a conditional UPDATE, so losing
// concurrent writers surface as storage.ErrVersionConflict without any
// application-level locking.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// taskRow maps the tasks table; array columns need pq types.
type taskRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	Priority     int            `db:"priority"`
	Status       string         `db:"status"`
	AssigneeID   string         `db:"assignee_id"`
	ProjectID    string         `db:"project_id"`
	ParentID     string         `db:"parent_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DueDate      *time.Time     `db:"due_date"`
	Dependencies pq.StringArray `db:"dependencies"`
	Subtasks     pq.StringArray `db:"subtasks"`
	Tags         pq.StringArray `db:"tags"`
	Version      int64          `db:"version"`
}

func (r taskRow) toTask() models.Task {
	return models.Task{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Priority:     models.Priority(r.Priority),
		Status:       models.TaskStatus(r.Status),
		AssigneeID:   r.AssigneeID,
		ProjectID:    r.ProjectID,
		ParentID:     r.ParentID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		DueDate:      r.DueDate,
		Dependencies: []string(r.Dependencies),
		Subtasks:     []string(r.Subtasks),
		Tags:         []string(r.Tags),
		Version:      r.Version,
	}
}

func (s *PostgresStore) Get(id string) (models.Task, error) {
	var row taskRow
	err := s.db.Get(&row, "SELECT * FROM tasks WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Task{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return row.toTask(), nil
}

func (s *PostgresStore) Put(t models.Task, expectedVersion int64) error {
	if expectedVersion == storage.NoVersionCheck {
		_, err := s.db.Exec(`
			INSERT INTO tasks (id, title, description, priority, status, assignee_id, project_id, parent_id,
				created_at, updated_at, due_date, dependencies, subtasks, tags, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			t.ID, t.Title, t.Description, int(t.Priority), string(t.Status), t.AssigneeID, t.ProjectID, t.ParentID,
			t.CreatedAt, t.UpdatedAt, t.DueDate, pq.Array(t.Dependencies), pq.Array(t.Subtasks), pq.Array(t.Tags), t.Version)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
		return nil
	}

	res, err := s.db.Exec(`
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4, assignee_id = $5, project_id = $6,
			parent_id = $7, updated_at = $8, due_date = $9, dependencies = $10, subtasks = $11, tags = $12,
			version = $13
		WHERE id = $14 AND version = $15`,
		t.Title, t.Description, int(t.Priority), string(t.Status), t.AssigneeID, t.ProjectID,
		t.ParentID, t.UpdatedAt, t.DueDate, pq.Array(t.Dependencies), pq.Array(t.Subtasks), pq.Array(t.Tags),
		t.Version, t.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the task is gone or the version moved under the caller.
		var exists bool
		if err := s.db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", t.ID); err != nil {
			return err
		}
		if !exists {
			return storage.ErrNotFound
		}
		return storage.ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByIndex(attribute, value string) ([]models.Task, error) {
	var column string
	switch attribute {
	case storage.StatusIndex:
		column = "status"
	case storage.AssigneeIndex:
		column = "assignee_id"
	case storage.ProjectIndex:
		column = "project_id"
	case storage.ParentIndex:
		column = "parent_id"
	default:
		return nil, fmt.Errorf("unknown index attribute %q", attribute)
	}
	var rows []taskRow
	if err := s.db.Select(&rows, "SELECT * FROM tasks WHERE "+column+" = $1 ORDER BY id", value); err != nil {
		return nil, err
	}
	return rowsToTasks(rows), nil
}

func (s *PostgresStore) List() ([]models.Task, error) {
	var rows []taskRow
	if err := s.db.Select(&rows, "SELECT * FROM tasks ORDER BY id"); err != nil {
		return nil, err
	}
	return rowsToTasks(rows), nil
}

func rowsToTasks(rows []taskRow) []models.Task {
	tasks := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks
}
