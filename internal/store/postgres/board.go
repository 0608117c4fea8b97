package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanvaslabs/kanvas/internal/domain"
)

type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	var repoOwner, repoName *string
	if b.LinkedRepo != nil {
		repoOwner = &b.LinkedRepo.Owner
		repoName = &b.LinkedRepo.Repo
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO boards (id, name, description, owner_id, member_ids, repo_owner, repo_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.Name, b.Description, b.OwnerID, b.MemberIDs, repoOwner, repoName, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Create: %w", err)
	}

	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	b, err := scanBoard(r.pool.QueryRow(ctx,
		`SELECT id, name, description, owner_id, member_ids, repo_owner, repo_name, created_at
		 FROM boards WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}

	return b, nil
}

func (r *BoardRepo) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, owner_id, member_ids, repo_owner, repo_name, created_at
		 FROM boards WHERE $1 = ANY(member_ids)
		 ORDER BY created_at
		 LIMIT 1000`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListByMember: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		b, scanErr := scanBoard(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("boardRepo.ListByMember: scan: %w", scanErr)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boardRepo.ListByMember: rows: %w", err)
	}

	return boards, nil
}

func (r *BoardRepo) AddMember(ctx context.Context, boardID, userID uuid.UUID) error {
	// Append is skipped when the user is already a member, so repeated
	// joins are no-ops.
	tag, err := r.pool.Exec(ctx,
		`UPDATE boards
		 SET member_ids = CASE WHEN $2 = ANY(member_ids) THEN member_ids
		                       ELSE array_append(member_ids, $2) END
		 WHERE id = $1`,
		boardID, userID,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.AddMember: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.AddMember: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BoardRepo) LinkRepo(ctx context.Context, boardID uuid.UUID, ref domain.RepoRef) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE boards SET repo_owner = $1, repo_name = $2 WHERE id = $3`,
		ref.Owner, ref.Repo, boardID,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.LinkRepo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.LinkRepo: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Tasks and attachments are removed by ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM boards WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanBoard(row pgx.Row) (*domain.Board, error) {
	var (
		b                   domain.Board
		repoOwner, repoName *string
	)

	err := row.Scan(
		&b.ID, &b.Name, &b.Description, &b.OwnerID, &b.MemberIDs,
		&repoOwner, &repoName, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if repoOwner != nil && repoName != nil {
		b.LinkedRepo = &domain.RepoRef{Owner: *repoOwner, Repo: *repoName}
	}

	return &b, nil
}
