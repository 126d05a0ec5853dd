package service

import (
	"sync"

	"github.com/velkovb/taskforge/pkg/models"
)

// PermissionRegistry maps users to the set of actions they may perform.
// Grants have set semantics: granting twice is a no-op, revoking a missing
// grant is a no-op. All operations are total.
type PermissionRegistry struct {
	mu     sync.RWMutex
	grants map[string]map[string]struct{}
}

func NewPermissionRegistry() *PermissionRegistry {
	return &PermissionRegistry{grants: make(map[string]map[string]struct{})}
}

// Grant allows userID to perform action.
func (r *PermissionRegistry) Grant(userID, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.grants[userID]; !ok {
		r.grants[userID] = make(map[string]struct{})
	}
	r.grants[userID][action] = struct{}{}
}

// Revoke removes a grant. Effective immediately for subsequent checks.
func (r *PermissionRegistry) Revoke(userID, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants[userID], action)
}

// IsAllowed reports whether userID may perform action. The admin action
// implies every other action.
func (r *PermissionRegistry) IsAllowed(userID, action string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	actions, ok := r.grants[userID]
	if !ok {
		return false
	}
	if _, ok := actions[models.AdminAction]; ok {
		return true
	}
	_, ok = actions[action]
	return ok
}

// Grants returns all grants for a user, for inspection surfaces.
func (r *PermissionRegistry) Grants(userID string) []models.Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Permission
	for action := range r.grants[userID] {
		out = append(out, models.Permission{UserID: userID, Action: action})
	}
	return out
}
