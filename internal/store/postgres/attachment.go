package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanvaslabs/kanvas/internal/domain"
)

type AttachmentRepo struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepo(pool *pgxpool.Pool) *AttachmentRepo {
	return &AttachmentRepo{pool: pool}
}

func (r *AttachmentRepo) Create(ctx context.Context, a *domain.Attachment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO task_attachments (id, task_id, type, ref, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.TaskID, a.Type, a.Ref, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("attachmentRepo.Create: %w", err)
	}

	return nil
}

func (r *AttachmentRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, task_id, type, ref, created_at
		 FROM task_attachments WHERE task_id = $1
		 ORDER BY created_at
		 LIMIT 1000`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("attachmentRepo.ListByTask: %w", err)
	}
	defer rows.Close()

	var attachments []*domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if scanErr := rows.Scan(&a.ID, &a.TaskID, &a.Type, &a.Ref, &a.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("attachmentRepo.ListByTask: scan: %w", scanErr)
		}
		attachments = append(attachments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("attachmentRepo.ListByTask: rows: %w", err)
	}

	return attachments, nil
}

func (r *AttachmentRepo) Delete(ctx context.Context, taskID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM task_attachments WHERE task_id = $1 AND id = $2`,
		taskID, id,
	)
	if err != nil {
		return fmt.Errorf("attachmentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attachmentRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
