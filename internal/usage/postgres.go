package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the production Store backed by the usage_records table,
// unique on user_id.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, userID uuid.UUID) (*Record, error) {
	query := `
		SELECT user_id, debates_today, daily_reset_at, debates_this_month, monthly_reset_at,
		       requests_this_minute, minute_window_start, total_debates, version, updated_at
		FROM usage_records WHERE user_id = $1`

	rec := &Record{}
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID, &rec.DebatesToday, &rec.DailyResetAt, &rec.DebatesThisMonth, &rec.MonthlyResetAt,
		&rec.RequestsThisMinute, &rec.MinuteWindowStart, &rec.TotalDebates, &rec.Version, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying usage record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO usage_records (user_id, debates_today, daily_reset_at, debates_this_month, monthly_reset_at,
		                           requests_this_minute, minute_window_start, total_debates, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		rec.UserID, rec.DebatesToday, rec.DailyResetAt, rec.DebatesThisMonth, rec.MonthlyResetAt,
		rec.RequestsThisMinute, rec.MinuteWindowStart, rec.TotalDebates, rec.Version, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting usage record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	query := `
		UPDATE usage_records
		SET debates_today = $2, daily_reset_at = $3, debates_this_month = $4, monthly_reset_at = $5,
		    requests_this_minute = $6, minute_window_start = $7, total_debates = $8,
		    version = version + 1, updated_at = $9
		WHERE user_id = $1 AND version = $10`

	tag, err := s.pool.Exec(ctx, query,
		rec.UserID, rec.DebatesToday, rec.DailyResetAt, rec.DebatesThisMonth, rec.MonthlyResetAt,
		rec.RequestsThisMinute, rec.MinuteWindowStart, rec.TotalDebates, rec.UpdatedAt, rec.Version)
	if err != nil {
		return fmt.Errorf("updating usage record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	rec.Version++
	return nil
}
