package models

import "time"

type AuditOutcome string

const (
	SuccessAuditOutcome AuditOutcome = "SUCCESS"
	FailureAuditOutcome AuditOutcome = "FAILURE"
)

// AuditEntry is an immutable record of one attempted operation. Entries are
// assigned a gapless, strictly increasing sequence number by the audit log;
// failed operations are recorded just like successful ones.
type AuditEntry struct {
	Seq       int64                  `json:"seq" db:"seq"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	UserID    string                 `json:"user_id" db:"user_id"`     // Acting user
	Operation string                 `json:"operation" db:"operation"` // e.g. "create_task"
	TaskID    string                 `json:"task_id" db:"task_id"`     // Target task, may reference a deleted task
	Before    map[string]interface{} `json:"before,omitempty"`         // Field snapshot prior to the mutation
	After     map[string]interface{} `json:"after,omitempty"`          // Field snapshot after the mutation
	Outcome   AuditOutcome           `json:"outcome" db:"outcome"`
	Reason    string                 `json:"reason,omitempty" db:"reason"` // Failure reason when Outcome=FAILURE
}

// AuditFilter narrows an audit query. Zero-valued fields match everything.
type AuditFilter struct {
	TaskID    string
	UserID    string
	Operation string
	Since     time.Time
	Until     time.Time
}

// Matches reports whether the entry passes the filter.
func (f AuditFilter) Matches(e AuditEntry) bool {
	if f.TaskID != "" && e.TaskID != f.TaskID {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	return true
}
