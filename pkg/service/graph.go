package service

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/velkovb/taskforge/pkg/models"
	"github.com/velkovb/taskforge/pkg/storage"
)

// CascadePolicy decides what happens to children and dependents when a task
// is deleted. It is fixed at construction time, not per call.
type CascadePolicy string

const (
	BlockCascadePolicy   CascadePolicy = "block"
	ArchiveCascadePolicy CascadePolicy = "archive_children"
	DetachCascadePolicy  CascadePolicy = "detach_children"
)

// CascadeAction is the resolved outcome of applying the policy to one task.
type CascadeAction string

const (
	ProceedCascadeAction         CascadeAction = "proceed"
	BlockCascadeAction           CascadeAction = "block"
	ArchiveChildrenCascadeAction CascadeAction = "archive_children"
	DetachChildrenCascadeAction  CascadeAction = "detach_children"
)

// DependencyGraph maintains dependency and subtask edges over the task set.
// The two relations are tracked separately: a task may be both a subtask and
// a dependency target. All edge mutations hold one graph-wide mutex for the
// duration of the cycle check and the insert, so a rejected edge leaves the
// graph unchanged. The critical section is bounded by graph traversal, never
// by I/O beyond the store round-trips for the touched tasks.
type DependencyGraph struct {
	mu     sync.Mutex
	store  storage.Store
	policy CascadePolicy
	logger Logger
}

func NewDependencyGraph(store storage.Store, policy CascadePolicy, logger Logger) *DependencyGraph {
	return &DependencyGraph{store: store, policy: policy, logger: logger}
}

// AddDependency records that taskID must wait for dependsOnID to reach DONE.
// It fails with NotFoundError if either task is absent and with CycleError if
// the edge would make the graph cyclic. Returns the updated task.
func (g *DependencyGraph) AddDependency(taskID, dependsOnID string) (models.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, err := g.store.Get(taskID)
	if err != nil {
		return models.Task{}, &NotFoundError{TaskID: taskID}
	}
	if _, err := g.store.Get(dependsOnID); err != nil {
		return models.Task{}, &NotFoundError{TaskID: dependsOnID}
	}
	if task.DependsOn(dependsOnID) {
		return task, nil
	}
	if taskID == dependsOnID {
		return models.Task{}, &CycleError{TaskID: taskID, DependsOn: dependsOnID}
	}

	// The edge taskID -> dependsOnID is cyclic iff dependsOnID already
	// (transitively) depends on taskID.
	reaches, err := g.reaches(dependsOnID, taskID)
	if err != nil {
		return models.Task{}, errors.Wrap(err, "cycle check")
	}
	if reaches {
		return models.Task{}, &CycleError{TaskID: taskID, DependsOn: dependsOnID}
	}

	task.Dependencies = append(task.Dependencies, dependsOnID)
	task.UpdatedAt = time.Now()
	prev := task.Version
	task.Version++
	if err := g.store.Put(task, prev); err != nil {
		return models.Task{}, err
	}
	g.logger.Infof("Added dependency %s -> %s", taskID, dependsOnID)
	return task, nil
}

// RemoveDependency drops the edge if present. Removing an absent edge is a
// no-op; the task is returned either way.
func (g *DependencyGraph) RemoveDependency(taskID, dependsOnID string) (models.Task, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, err := g.store.Get(taskID)
	if err != nil {
		return models.Task{}, false, &NotFoundError{TaskID: taskID}
	}
	if !task.DependsOn(dependsOnID) {
		return task, false, nil
	}
	deps := task.Dependencies[:0]
	for _, d := range task.Dependencies {
		if d != dependsOnID {
			deps = append(deps, d)
		}
	}
	task.Dependencies = deps
	task.UpdatedAt = time.Now()
	prev := task.Version
	task.Version++
	if err := g.store.Put(task, prev); err != nil {
		return models.Task{}, false, err
	}
	g.logger.Infof("Removed dependency %s -> %s", taskID, dependsOnID)
	return task, true, nil
}

// reaches performs a depth-first reachability walk over dependency edges from
// "from", reporting whether "to" is reachable. O(V+E); dependency graphs are
// sparse and edge mutations are rare relative to reads, so no toposort is
// maintained eagerly.
func (g *DependencyGraph) reaches(from, to string) (bool, error) {
	visited := map[string]struct{}{}
	stack := []string{from}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if curr == to {
			return true, nil
		}
		if _, ok := visited[curr]; ok {
			continue
		}
		visited[curr] = struct{}{}
		task, err := g.store.Get(curr)
		if err != nil {
			// Dangling edge; nothing to traverse through.
			continue
		}
		stack = append(stack, task.Dependencies...)
	}
	return false, nil
}

// CanComplete reports whether every direct dependency of the task is DONE.
// Direct neighbors are sufficient: the status machine enforces at every
// transition that a task cannot be DONE while its own dependencies are not,
// so transitive incompleteness always shows up in some direct edge.
func (g *DependencyGraph) CanComplete(taskID string) (bool, error) {
	task, err := g.store.Get(taskID)
	if err != nil {
		return false, &NotFoundError{TaskID: taskID}
	}
	return g.depsDone(task)
}

func (g *DependencyGraph) depsDone(task models.Task) (bool, error) {
	for _, dep := range task.Dependencies {
		d, err := g.store.Get(dep)
		if err != nil {
			return false, &NotFoundError{TaskID: dep}
		}
		if d.Status != models.DoneTaskStatus {
			return false, nil
		}
	}
	return true, nil
}

// AddSubtask makes childID a child of parentID. A task has at most one
// parent, and the parent chain may not loop back through the child.
//
// The operation writes two records. A concurrent field update on the child
// can make the second write lose its version check after the parent edge
// already committed; in that case the parent edge is rolled back so no
// half-linked pair survives the call, and a retry that still finds a
// half-linked pair repairs the missing side instead of re-appending the edge.
func (g *DependencyGraph) AddSubtask(parentID, childID string) (models.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	parent, err := g.store.Get(parentID)
	if err != nil {
		return models.Task{}, &NotFoundError{TaskID: parentID}
	}
	child, err := g.store.Get(childID)
	if err != nil {
		return models.Task{}, &NotFoundError{TaskID: childID}
	}
	if parent.HasSubtask(childID) && child.ParentID == parentID {
		return parent, nil
	}
	if parentID == childID {
		return models.Task{}, &ValidationError{Field: "subtask", Reason: "task cannot be its own subtask"}
	}
	if child.ParentID != "" && child.ParentID != parentID {
		return models.Task{}, &ValidationError{Field: "subtask", Reason: "task already has a parent"}
	}
	// Walk the parent chain upward; the child must not be an ancestor.
	for ancestor := parent; ancestor.ParentID != ""; {
		if ancestor.ParentID == childID {
			return models.Task{}, &ValidationError{Field: "subtask", Reason: "subtask edge would create a cycle"}
		}
		next, err := g.store.Get(ancestor.ParentID)
		if err != nil {
			break
		}
		ancestor = next
	}

	wroteParent := false
	if !parent.HasSubtask(childID) {
		parent.Subtasks = append(parent.Subtasks, childID)
		parent.UpdatedAt = time.Now()
		prevParent := parent.Version
		parent.Version++
		if err := g.store.Put(parent, prevParent); err != nil {
			return models.Task{}, err
		}
		wroteParent = true
	}

	child.ParentID = parentID
	child.UpdatedAt = time.Now()
	prevChild := child.Version
	child.Version++
	if err := g.store.Put(child, prevChild); err != nil {
		if wroteParent {
			g.unlinkChildEdge(parentID, childID)
		}
		return models.Task{}, err
	}
	g.logger.Infof("Added subtask %s under %s", childID, parentID)
	return parent, nil
}

// unlinkChildEdge removes the parent->child edge written earlier in the same
// critical section, compensating a failed child write. Failures here are
// logged; the repair path in AddSubtask picks up any leftover half-link on
// the next attempt.
func (g *DependencyGraph) unlinkChildEdge(parentID, childID string) {
	parent, err := g.store.Get(parentID)
	if err != nil || !parent.HasSubtask(childID) {
		return
	}
	subs := parent.Subtasks[:0]
	for _, s := range parent.Subtasks {
		if s != childID {
			subs = append(subs, s)
		}
	}
	parent.Subtasks = subs
	parent.UpdatedAt = time.Now()
	prev := parent.Version
	parent.Version++
	if err := g.store.Put(parent, prev); err != nil {
		g.logger.Errorf("Failed to roll back subtask edge %s -> %s: %v", parentID, childID, err)
	}
}

// RemoveSubtask detaches childID from parentID. Idempotent, with the same
// two-write compensation as AddSubtask: a failed child write restores the
// parent edge, and a retry that finds only the child side still linked clears
// it.
func (g *DependencyGraph) RemoveSubtask(parentID, childID string) (models.Task, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	parent, err := g.store.Get(parentID)
	if err != nil {
		return models.Task{}, false, &NotFoundError{TaskID: parentID}
	}
	child, childErr := g.store.Get(childID)
	childLinked := childErr == nil && child.ParentID == parentID
	if !parent.HasSubtask(childID) && !childLinked {
		return parent, false, nil
	}

	wroteParent := false
	if parent.HasSubtask(childID) {
		subs := parent.Subtasks[:0]
		for _, s := range parent.Subtasks {
			if s != childID {
				subs = append(subs, s)
			}
		}
		parent.Subtasks = subs
		parent.UpdatedAt = time.Now()
		prev := parent.Version
		parent.Version++
		if err := g.store.Put(parent, prev); err != nil {
			return models.Task{}, false, err
		}
		wroteParent = true
	}

	if childLinked {
		child.ParentID = ""
		child.UpdatedAt = time.Now()
		prevChild := child.Version
		child.Version++
		if err := g.store.Put(child, prevChild); err != nil {
			if wroteParent {
				g.relinkChildEdge(parentID, childID)
			}
			return models.Task{}, false, err
		}
	}
	return parent, true, nil
}

// relinkChildEdge restores a parent->child edge removed earlier in the same
// critical section, compensating a failed child write.
func (g *DependencyGraph) relinkChildEdge(parentID, childID string) {
	parent, err := g.store.Get(parentID)
	if err != nil || parent.HasSubtask(childID) {
		return
	}
	parent.Subtasks = append(parent.Subtasks, childID)
	parent.UpdatedAt = time.Now()
	prev := parent.Version
	parent.Version++
	if err := g.store.Put(parent, prev); err != nil {
		g.logger.Errorf("Failed to restore subtask edge %s -> %s: %v", parentID, childID, err)
	}
}

// IncompleteDependents returns live tasks that still depend on taskID.
func (g *DependencyGraph) IncompleteDependents(taskID string) ([]models.Task, error) {
	all, err := g.store.List()
	if err != nil {
		return nil, errors.Wrap(err, "list tasks")
	}
	var out []models.Task
	for _, t := range all {
		if t.ID == taskID || !t.DependsOn(taskID) {
			continue
		}
		if t.Status != models.DoneTaskStatus && t.Status != models.ArchivedTaskStatus {
			out = append(out, t)
		}
	}
	return out, nil
}

// DeleteAction resolves the configured cascade policy for deleting taskID.
// Incomplete dependents block deletion regardless of policy; children are
// handled per policy.
func (g *DependencyGraph) DeleteAction(taskID string) (CascadeAction, error) {
	task, err := g.store.Get(taskID)
	if err != nil {
		return BlockCascadeAction, &NotFoundError{TaskID: taskID}
	}
	dependents, err := g.IncompleteDependents(taskID)
	if err != nil {
		return BlockCascadeAction, err
	}
	if len(dependents) > 0 {
		return BlockCascadeAction, nil
	}
	if len(task.Subtasks) == 0 {
		return ProceedCascadeAction, nil
	}
	switch g.policy {
	case ArchiveCascadePolicy:
		return ArchiveChildrenCascadeAction, nil
	case DetachCascadePolicy:
		return DetachChildrenCascadeAction, nil
	default:
		return BlockCascadeAction, nil
	}
}
