package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/kanvaslabs/kanvas/internal/domain"
	"github.com/kanvaslabs/kanvas/internal/tasks"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Boards() domain.BoardRepository
	Tasks() domain.TaskRepository
	Attachments() domain.AttachmentRepository
}

// TaskService abstracts the task mutation service for handler testing.
// *tasks.Service satisfies this interface.
type TaskService interface {
	Create(ctx context.Context, boardID uuid.UUID, params tasks.CreateTaskParams) (*domain.Task, error)
	List(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error)
	Update(ctx context.Context, boardID, taskID uuid.UUID, patch domain.TaskPatch) (*tasks.PatchResult, error)
	Delete(ctx context.Context, boardID, taskID uuid.UUID) error
	Reorder(ctx context.Context, boardID uuid.UUID, orderedTaskIDs []uuid.UUID) error
	AddAttachment(ctx context.Context, boardID, taskID uuid.UUID, typ domain.AttachmentType, ref string) (*domain.Attachment, error)
	ListAttachments(ctx context.Context, boardID, taskID uuid.UUID) ([]*domain.Attachment, error)
	RemoveAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) error
}
