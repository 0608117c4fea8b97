package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AttachmentType string

const (
	AttachmentTypePullRequest AttachmentType = "pull_request"
	AttachmentTypeCommit      AttachmentType = "commit"
	AttachmentTypeIssue       AttachmentType = "issue"
)

// Valid reports whether t is a known attachment type.
func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentTypePullRequest, AttachmentTypeCommit, AttachmentTypeIssue:
		return true
	}
	return false
}

// Attachment references an external repository artifact from a task.
// Ref holds an issue/PR number or a commit hash depending on Type.
type Attachment struct {
	ID        uuid.UUID      `json:"id"`
	TaskID    uuid.UUID      `json:"taskId"`
	Type      AttachmentType `json:"type"`
	Ref       string         `json:"ref"`
	CreatedAt time.Time      `json:"createdAt"`
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *Attachment) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*Attachment, error)
	Delete(ctx context.Context, taskID, id uuid.UUID) error
}
