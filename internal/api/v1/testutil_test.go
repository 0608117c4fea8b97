package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kanvaslabs/kanvas/internal/domain"
	"github.com/kanvaslabs/kanvas/internal/server/middleware"
	"github.com/kanvaslabs/kanvas/internal/tasks"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated user into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	boards      domain.BoardRepository
	tasks       domain.TaskRepository
	attachments domain.AttachmentRepository
}

func (m *mockDataStore) Boards() domain.BoardRepository           { return m.boards }
func (m *mockDataStore) Tasks() domain.TaskRepository             { return m.tasks }
func (m *mockDataStore) Attachments() domain.AttachmentRepository { return m.attachments }

// memberStore returns a DataStore whose board lookup always finds a board
// that userID is a member of. Handy for task handler tests where the
// membership check is not the subject.
func memberStore(boardID, userID uuid.UUID) *mockDataStore {
	return &mockDataStore{
		boards: &mockBoardRepo{
			getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Board, error) {
				return &domain.Board{
					ID:        boardID,
					Name:      "Board",
					OwnerID:   userID,
					MemberIDs: []uuid.UUID{userID},
				}, nil
			},
		},
	}
}

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc       func(ctx context.Context, b *domain.Board) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	listByMemberFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	addMemberFunc    func(ctx context.Context, boardID, userID uuid.UUID) error
	linkRepoFunc     func(ctx context.Context, boardID uuid.UUID, ref domain.RepoRef) error
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	return m.createFunc(ctx, b)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBoardRepo) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	return m.listByMemberFunc(ctx, userID)
}

func (m *mockBoardRepo) AddMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return m.addMemberFunc(ctx, boardID, userID)
}

func (m *mockBoardRepo) LinkRepo(ctx context.Context, boardID uuid.UUID, ref domain.RepoRef) error {
	return m.linkRepoFunc(ctx, boardID, ref)
}

func (m *mockBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock TaskService
// ---------------------------------------------------------------------------

type mockTaskService struct {
	createFunc           func(ctx context.Context, boardID uuid.UUID, params tasks.CreateTaskParams) (*domain.Task, error)
	listFunc             func(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error)
	updateFunc           func(ctx context.Context, boardID, taskID uuid.UUID, patch domain.TaskPatch) (*tasks.PatchResult, error)
	deleteFunc           func(ctx context.Context, boardID, taskID uuid.UUID) error
	reorderFunc          func(ctx context.Context, boardID uuid.UUID, orderedTaskIDs []uuid.UUID) error
	addAttachmentFunc    func(ctx context.Context, boardID, taskID uuid.UUID, typ domain.AttachmentType, ref string) (*domain.Attachment, error)
	listAttachmentsFunc  func(ctx context.Context, boardID, taskID uuid.UUID) ([]*domain.Attachment, error)
	removeAttachmentFunc func(ctx context.Context, taskID, attachmentID uuid.UUID) error
}

func (m *mockTaskService) Create(ctx context.Context, boardID uuid.UUID, params tasks.CreateTaskParams) (*domain.Task, error) {
	return m.createFunc(ctx, boardID, params)
}

func (m *mockTaskService) List(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	return m.listFunc(ctx, boardID)
}

func (m *mockTaskService) Update(ctx context.Context, boardID, taskID uuid.UUID, patch domain.TaskPatch) (*tasks.PatchResult, error) {
	return m.updateFunc(ctx, boardID, taskID, patch)
}

func (m *mockTaskService) Delete(ctx context.Context, boardID, taskID uuid.UUID) error {
	return m.deleteFunc(ctx, boardID, taskID)
}

func (m *mockTaskService) Reorder(ctx context.Context, boardID uuid.UUID, orderedTaskIDs []uuid.UUID) error {
	return m.reorderFunc(ctx, boardID, orderedTaskIDs)
}

func (m *mockTaskService) AddAttachment(ctx context.Context, boardID, taskID uuid.UUID, typ domain.AttachmentType, ref string) (*domain.Attachment, error) {
	return m.addAttachmentFunc(ctx, boardID, taskID, typ, ref)
}

func (m *mockTaskService) ListAttachments(ctx context.Context, boardID, taskID uuid.UUID) ([]*domain.Attachment, error) {
	return m.listAttachmentsFunc(ctx, boardID, taskID)
}

func (m *mockTaskService) RemoveAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) error {
	return m.removeAttachmentFunc(ctx, taskID, attachmentID)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func sampleTask(boardID uuid.UUID) *domain.Task {
	now := time.Now()
	return &domain.Task{
		ID:        uuid.New(),
		BoardID:   boardID,
		Title:     "Sample",
		Priority:  domain.TaskPriorityMedium,
		Status:    domain.TaskStatusBacklog,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
