package debate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Insert(ctx context.Context, entry *HistoryEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]HistoryEntry, error)
	Count(ctx context.Context) (int64, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Insert(ctx context.Context, entry *HistoryEntry) error {
	query := `
		INSERT INTO debate_history (id, user_id, question, final_answer, mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.Question, entry.FinalAnswer, entry.Mode, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting debate history: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]HistoryEntry, error) {
	query := `
		SELECT id, user_id, question, final_answer, mode, created_at
		FROM debate_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing debate history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Question, &e.FinalAnswer, &e.Mode, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning debate history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM debate_history`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting debates: %w", err)
	}
	return count, nil
}
