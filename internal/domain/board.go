package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RepoRef links a board to an external repository.
type RepoRef struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

type Board struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	OwnerID     uuid.UUID   `json:"ownerId"`
	MemberIDs   []uuid.UUID `json:"memberIds"`
	LinkedRepo  *RepoRef    `json:"linkedRepo,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// NewBoard creates a Board owned by ownerID. The owner is always a member.
func NewBoard(name, description string, ownerID uuid.UUID) (*Board, error) {
	if name == "" {
		return nil, errors.New("board: name is required")
	}
	if ownerID == uuid.Nil {
		return nil, errors.New("board: owner ID is required")
	}
	return &Board{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		MemberIDs:   []uuid.UUID{ownerID},
		CreatedAt:   time.Now(),
	}, nil
}

// HasMember reports whether userID is in the board's membership set.
func (b *Board) HasMember(userID uuid.UUID) bool {
	for _, id := range b.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*Board, error)
	// AddMember adds userID to the membership set. Adding an existing
	// member is a no-op.
	AddMember(ctx context.Context, boardID, userID uuid.UUID) error
	LinkRepo(ctx context.Context, boardID uuid.UUID, ref RepoRef) error
	// Delete removes the board and cascades to its tasks and attachments.
	Delete(ctx context.Context, id uuid.UUID) error
}
