package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

// Board columns. Rank orders tasks within a (board, status) pair.
const (
	TaskStatusIcebox  TaskStatus = "icebox"
	TaskStatusBacklog TaskStatus = "backlog"
	TaskStatusOngoing TaskStatus = "ongoing"
	TaskStatusReview  TaskStatus = "review"
	TaskStatusDone    TaskStatus = "done"
)

// Valid reports whether s is a known board column.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusIcebox, TaskStatusBacklog, TaskStatusOngoing, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `json:"id"`
	BoardID     uuid.UUID    `json:"boardId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssigneeID  uuid.UUID    `json:"assigneeId"`
	Priority    TaskPriority `json:"priority"`
	DueDate     string       `json:"dueDate"`
	Status      TaskStatus   `json:"status"`
	Rank        int          `json:"order"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskPatch is a partial task update. Nil fields are left untouched.
// The explicit field list replaces duck-typed patch maps so the apply
// step is a field-by-field merge, not a generic object spread.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	AssigneeID  *uuid.UUID    `json:"assigneeId,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *string       `json:"dueDate,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
}

// IsZero reports whether the patch carries no fields at all.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.AssigneeID == nil &&
		p.Priority == nil && p.DueDate == nil && p.Status == nil
}

// Apply merges the set fields of the patch into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

type TaskRepository interface {
	// Create persists t and assigns its rank as the append position within
	// the (board, status) group. The assigned rank is written back to t.
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, boardID, id uuid.UUID) (*Task, error)
	// ListByBoard returns all tasks of a board ordered by rank ascending.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Task, error)
	// Patch persists only the set fields of p plus the updated timestamp.
	Patch(ctx context.Context, boardID, id uuid.UUID, p TaskPatch, updatedAt time.Time) error
	Delete(ctx context.Context, boardID, id uuid.UUID) error
	// Reorder assigns rank = positional index for each listed task in one
	// batch. IDs not present on the board are skipped.
	Reorder(ctx context.Context, boardID uuid.UUID, orderedTaskIDs []uuid.UUID) error
}
