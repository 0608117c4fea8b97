package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanvaslabs/kanvas/internal/domain"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

// Create inserts t with rank computed inside the statement as the current
// size of the (board, status) group. Keeping the count in the INSERT removes
// the separate read-then-write round trip; concurrent inserts into the same
// column can still race, which the ordering model tolerates.
func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (id, board_id, title, description, assignee_id, priority, due_date, status, rank, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		         (SELECT COUNT(*) FROM tasks WHERE board_id = $2 AND status = $8),
		         $9, $10)
		 RETURNING rank`,
		t.ID, t.BoardID, t.Title, t.Description, t.AssigneeID,
		t.Priority, t.DueDate, t.Status, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.Rank)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, boardID, id uuid.UUID) (*domain.Task, error) {
	var t domain.Task

	err := r.pool.QueryRow(ctx,
		`SELECT id, board_id, title, description, assignee_id, priority, due_date, status, rank, created_at, updated_at
		 FROM tasks WHERE board_id = $1 AND id = $2`,
		boardID, id,
	).Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &t.AssigneeID,
		&t.Priority, &t.DueDate, &t.Status, &t.Rank, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TaskRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, title, description, assignee_id, priority, due_date, status, rank, created_at, updated_at
		 FROM tasks WHERE board_id = $1
		 ORDER BY rank
		 LIMIT 1000`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if scanErr := rows.Scan(
			&t.ID, &t.BoardID, &t.Title, &t.Description, &t.AssigneeID,
			&t.Priority, &t.DueDate, &t.Status, &t.Rank, &t.CreatedAt, &t.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("taskRepo.ListByBoard: scan: %w", scanErr)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskRepo.ListByBoard: rows: %w", err)
	}

	return tasks, nil
}

// Patch writes only the set fields of p plus the updated timestamp.
func (r *TaskRepo) Patch(ctx context.Context, boardID, id uuid.UUID, p domain.TaskPatch, updatedAt time.Time) error {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 9)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.AssigneeID != nil {
		add("assignee_id", *p.AssigneeID)
	}
	if p.Priority != nil {
		add("priority", *p.Priority)
	}
	if p.DueDate != nil {
		add("due_date", *p.DueDate)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	add("updated_at", updatedAt)

	args = append(args, boardID, id)
	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE board_id = $%d AND id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args),
	)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("taskRepo.Patch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Patch: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, boardID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE board_id = $1 AND id = $2`,
		boardID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

// Reorder assigns rank = positional index for each listed task in a single
// transaction. Last writer wins; there is no version check against a
// concurrent reorder of the same column.
func (r *TaskRepo) Reorder(ctx context.Context, boardID uuid.UUID, orderedTaskIDs []uuid.UUID) error {
	if len(orderedTaskIDs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Reorder: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i, taskID := range orderedTaskIDs {
		batch.Queue(
			`UPDATE tasks SET rank = $1, updated_at = now() WHERE board_id = $2 AND id = $3`,
			i, boardID, taskID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range orderedTaskIDs {
		// IDs that no longer exist on the board simply affect zero rows.
		if _, execErr := results.Exec(); execErr != nil {
			_ = results.Close()
			return fmt.Errorf("taskRepo.Reorder: exec: %w", execErr)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("taskRepo.Reorder: close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Reorder: commit: %w", err)
	}

	return nil
}
