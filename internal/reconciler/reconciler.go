// Package reconciler merges a client's optimistic local edits with
// server-confirmed responses and broadcast events into one task list. It is
// the client half of the realtime sync protocol: the server gives no
// cross-client ordering guarantee, so the list is only ever as good as the
// last full fetch plus the events merged since.
package reconciler

import (
	"sort"

	"github.com/google/uuid"

	"github.com/kanvaslabs/kanvas/internal/domain"
	"github.com/kanvaslabs/kanvas/internal/tasks"
)

// Reconciler holds the local task list for one board. It is not safe for
// concurrent use; callers are expected to drive it from a single event loop.
type Reconciler struct {
	tasks []domain.Task
}

// New seeds the reconciler from a full fetch, the authoritative resync point.
func New(initial []domain.Task) *Reconciler {
	r := &Reconciler{tasks: make([]domain.Task, len(initial))}
	copy(r.tasks, initial)
	return r
}

// Tasks returns a copy of the local list in its current merge order.
func (r *Reconciler) Tasks() []domain.Task {
	out := make([]domain.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Column returns the tasks of one status column sorted by rank ascending.
// Visual order is always re-derived this way, so residual imprecision in the
// merge order self-corrects once rank fields are consistent.
func (r *Reconciler) Column(status domain.TaskStatus) []domain.Task {
	var out []domain.Task
	for _, t := range r.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// ApplyCreated appends the task; its column position falls out of the
// per-column rank sort.
func (r *Reconciler) ApplyCreated(t domain.Task) {
	r.tasks = append(r.tasks, t)
}

// ApplyUpdated merges the patch's set fields into the matching task by id.
// An id not present locally is ignored.
func (r *Reconciler) ApplyUpdated(patch tasks.PatchResult) {
	for i := range r.tasks {
		if r.tasks[i].ID == patch.ID {
			patch.TaskPatch.Apply(&r.tasks[i])
			r.tasks[i].UpdatedAt = patch.UpdatedAt
			return
		}
	}
}

// ApplyDeleted removes the matching task by id; absence is a no-op.
func (r *Reconciler) ApplyDeleted(id uuid.UUID) {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return
		}
	}
}

// ApplyReordered moves the listed tasks, preserving their given order, to
// the front of the local list and assigns rank = positional index. Unlisted
// tasks keep their relative order behind them.
func (r *Reconciler) ApplyReordered(orderedIDs []uuid.UUID) {
	byID := make(map[uuid.UUID]int, len(r.tasks))
	for i, t := range r.tasks {
		byID[t.ID] = i
	}

	front := make([]domain.Task, 0, len(orderedIDs))
	listed := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for rank, id := range orderedIDs {
		i, ok := byID[id]
		if !ok {
			continue
		}
		t := r.tasks[i]
		t.Rank = rank
		front = append(front, t)
		listed[id] = struct{}{}
	}

	rest := make([]domain.Task, 0, len(r.tasks)-len(front))
	for _, t := range r.tasks {
		if _, ok := listed[t.ID]; !ok {
			rest = append(rest, t)
		}
	}

	r.tasks = append(front, rest...)
}

// Rollback restores a snapshot taken before an optimistic edit. It is the
// only recovery mechanism after a failed mutation request.
type Rollback func()

func (r *Reconciler) snapshot() Rollback {
	saved := make([]domain.Task, len(r.tasks))
	copy(saved, r.tasks)
	return func() { r.tasks = saved }
}

// MoveToColumn optimistically moves a task to another column and returns the
// patch to send plus a rollback for request failure. The task keeps its rank
// until a follow-up reorder supplies a fresh one; ok is false when the task
// is unknown or already in that column.
func (r *Reconciler) MoveToColumn(taskID uuid.UUID, status domain.TaskStatus) (patch domain.TaskPatch, rollback Rollback, ok bool) {
	for i := range r.tasks {
		if r.tasks[i].ID != taskID {
			continue
		}
		if r.tasks[i].Status == status {
			return domain.TaskPatch{}, nil, false
		}
		rollback = r.snapshot()
		r.tasks[i].Status = status
		return domain.TaskPatch{Status: &status}, rollback, true
	}
	return domain.TaskPatch{}, nil, false
}

// ReorderWithin optimistically moves activeID to overID's position. Both
// tasks must share a column; cross-column positional insert is not part of
// the reorder protocol. It returns the column's full ordered id list to send
// plus a rollback for request failure.
func (r *Reconciler) ReorderWithin(activeID, overID uuid.UUID) (orderedIDs []uuid.UUID, rollback Rollback, ok bool) {
	activeIdx, overIdx := -1, -1
	for i := range r.tasks {
		switch r.tasks[i].ID {
		case activeID:
			activeIdx = i
		case overID:
			overIdx = i
		}
	}
	if activeIdx == -1 || overIdx == -1 {
		return nil, nil, false
	}

	status := r.tasks[activeIdx].Status
	if r.tasks[overIdx].Status != status {
		return nil, nil, false
	}

	rollback = r.snapshot()

	moved := r.tasks[activeIdx]
	r.tasks = append(r.tasks[:activeIdx], r.tasks[activeIdx+1:]...)
	if overIdx > activeIdx {
		overIdx--
	}
	r.tasks = append(r.tasks[:overIdx], append([]domain.Task{moved}, r.tasks[overIdx:]...)...)

	for _, t := range r.tasks {
		if t.Status == status {
			orderedIDs = append(orderedIDs, t.ID)
		}
	}
	return orderedIDs, rollback, true
}
