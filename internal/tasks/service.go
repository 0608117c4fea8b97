// Package tasks implements the task mutation service: every task write goes
// through here so that persistence and realtime fan-out stay in lockstep.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kanvaslabs/kanvas/internal/api/ws"
	"github.com/kanvaslabs/kanvas/internal/domain"
)

// Broadcaster fans a board event out to every connection in the board's
// room. *ws.Hub satisfies this interface.
type Broadcaster interface {
	BroadcastTask(ctx context.Context, boardID uuid.UUID, event string, data any) error
}

// Service orchestrates task mutations: write to storage first, then notify
// the board's room. A failed write emits nothing; a failed broadcast is
// logged and swallowed, since realtime delivery is best-effort notification,
// not part of the mutation's success.
type Service struct {
	tasks       domain.TaskRepository
	attachments domain.AttachmentRepository
	broadcaster Broadcaster
}

func NewService(tasks domain.TaskRepository, attachments domain.AttachmentRepository, broadcaster Broadcaster) *Service {
	return &Service{
		tasks:       tasks,
		attachments: attachments,
		broadcaster: broadcaster,
	}
}

// CreateTaskParams are the caller-supplied fields of a new task. Rank and
// timestamps are server-assigned.
type CreateTaskParams struct {
	Title       string
	Description string
	AssigneeID  uuid.UUID
	Priority    domain.TaskPriority
	DueDate     string
	Status      domain.TaskStatus
}

// PatchResult is the partial update actually applied to a task. It doubles
// as the task_updated event payload: id plus changed fields only, so clients
// must merge rather than replace.
type PatchResult struct {
	ID uuid.UUID `json:"id"`
	domain.TaskPatch
	UpdatedAt time.Time `json:"updatedAt"`
}

type taskDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type tasksReorderedPayload struct {
	OrderedTaskIDs []uuid.UUID `json:"orderedTaskIds"`
}

// Create persists a new task with rank = append position in its
// (board, status) group and broadcasts task_created with the full task.
func (s *Service) Create(ctx context.Context, boardID uuid.UUID, params CreateTaskParams) (*domain.Task, error) {
	now := time.Now()
	t := &domain.Task{
		ID:          uuid.New(),
		BoardID:     boardID,
		Title:       params.Title,
		Description: params.Description,
		AssigneeID:  params.AssigneeID,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		Status:      params.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("tasks.Service.Create: %w", err)
	}

	s.broadcast(ctx, boardID, ws.EventTaskCreated, t)

	return t, nil
}

// List returns the board's tasks ordered by rank ascending.
func (s *Service) List(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	list, err := s.tasks.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("tasks.Service.List: %w", err)
	}
	return list, nil
}

// Update applies a partial patch. An empty patch short-circuits: nothing is
// written, nothing is broadcast, and the result is nil.
func (s *Service) Update(ctx context.Context, boardID, taskID uuid.UUID, patch domain.TaskPatch) (*PatchResult, error) {
	if patch.IsZero() {
		return nil, nil
	}

	now := time.Now()
	if err := s.tasks.Patch(ctx, boardID, taskID, patch, now); err != nil {
		return nil, fmt.Errorf("tasks.Service.Update: %w", err)
	}

	result := &PatchResult{ID: taskID, TaskPatch: patch, UpdatedAt: now}
	s.broadcast(ctx, boardID, ws.EventTaskUpdated, result)

	return result, nil
}

// Delete removes a task and broadcasts task_deleted. Deleting an id that no
// longer exists succeeds without a broadcast, so repeated deletes are
// harmless to the caller.
func (s *Service) Delete(ctx context.Context, boardID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, boardID, taskID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("tasks.Service.Delete: %w", err)
	}

	s.broadcast(ctx, boardID, ws.EventTaskDeleted, taskDeletedPayload{ID: taskID})

	return nil
}

// Reorder assigns rank = positional index for each listed task and
// broadcasts the full ordered id list. Last writer wins across concurrent
// reorders of the same column.
func (s *Service) Reorder(ctx context.Context, boardID uuid.UUID, orderedTaskIDs []uuid.UUID) error {
	if err := s.tasks.Reorder(ctx, boardID, orderedTaskIDs); err != nil {
		return fmt.Errorf("tasks.Service.Reorder: %w", err)
	}

	s.broadcast(ctx, boardID, ws.EventTasksReordered, tasksReorderedPayload{OrderedTaskIDs: orderedTaskIDs})

	return nil
}

// AddAttachment links an external repository artifact to a task.
// Attachments are outside the realtime sync surface, so no event is emitted.
func (s *Service) AddAttachment(ctx context.Context, boardID, taskID uuid.UUID, typ domain.AttachmentType, ref string) (*domain.Attachment, error) {
	// The task must exist on this board before attaching to it.
	if _, err := s.tasks.GetByID(ctx, boardID, taskID); err != nil {
		return nil, fmt.Errorf("tasks.Service.AddAttachment: %w", err)
	}

	a := &domain.Attachment{
		ID:        uuid.New(),
		TaskID:    taskID,
		Type:      typ,
		Ref:       ref,
		CreatedAt: time.Now(),
	}

	if err := s.attachments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("tasks.Service.AddAttachment: %w", err)
	}

	return a, nil
}

// ListAttachments returns all attachments of a task.
func (s *Service) ListAttachments(ctx context.Context, boardID, taskID uuid.UUID) ([]*domain.Attachment, error) {
	if _, err := s.tasks.GetByID(ctx, boardID, taskID); err != nil {
		return nil, fmt.Errorf("tasks.Service.ListAttachments: %w", err)
	}

	list, err := s.attachments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("tasks.Service.ListAttachments: %w", err)
	}
	return list, nil
}

// RemoveAttachment deletes an attachment from a task.
func (s *Service) RemoveAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) error {
	if err := s.attachments.Delete(ctx, taskID, attachmentID); err != nil {
		return fmt.Errorf("tasks.Service.RemoveAttachment: %w", err)
	}
	return nil
}

func (s *Service) broadcast(ctx context.Context, boardID uuid.UUID, event string, data any) {
	if err := s.broadcaster.BroadcastTask(ctx, boardID, event, data); err != nil {
		log.Warn().Err(err).
			Str("board_id", boardID.String()).
			Str("event", event).
			Msg("tasks: broadcast failed, mutation already persisted")
	}
}
