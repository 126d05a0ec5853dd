package models

// Action names checked by the orchestrator before each operation.
const (
	CreateTaskAction       = "create_task"
	ViewTaskAction         = "view_task"
	UpdateTaskAction       = "update_task"
	UpdateTaskStatusAction = "update_task_status"
	DeleteTaskAction       = "delete_task"
	AssignTaskAction       = "assign_task"
	ManageDepsAction       = "manage_dependencies"
	BulkUpdateAction       = "bulk_update"
	ViewAnalyticsAction    = "view_analytics"

	// AdminAction implies every other action.
	AdminAction = "admin"
)

// Permission is a (user, action) grant with set semantics.
type Permission struct {
	UserID string `json:"user_id" db:"user_id"`
	Action string `json:"action" db:"action"`
}
