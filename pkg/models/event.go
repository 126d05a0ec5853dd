package models

import "time"

type EventKind string

const (
	CreatedEventKind       EventKind = "created"
	UpdatedEventKind       EventKind = "updated"
	StatusChangedEventKind EventKind = "status-changed"
	DeletedEventKind       EventKind = "deleted"
	AssignedEventKind      EventKind = "assigned"
)

// ChangeEvent describes one observable task state change. The schema is
// transport-agnostic so email/push/websocket sinks can be layered on top
// without the engine knowing about them.
type ChangeEvent struct {
	TaskID    string                 `json:"task_id"`
	Kind      EventKind              `json:"kind"`
	Changes   map[string]interface{} `json:"changes,omitempty"` // Changed fields, new values
	Timestamp time.Time              `json:"timestamp"`
}
