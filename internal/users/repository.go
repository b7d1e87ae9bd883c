package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nurox-platform/nurox/internal/plans"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan plans.Plan) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Count(ctx context.Context) (int64, error)
	CountByPlan(ctx context.Context) ([]PlanCount, error)
}

const userColumns = `id, username, email, password_hash, plan, is_active, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, plan, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Plan, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *postgresRepository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Plan, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

func (r *postgresRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, username, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.Plan, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (r *postgresRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan plans.Plan) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET plan = $2, updated_at = NOW() WHERE id = $1`, id, plan)
	if err != nil {
		return fmt.Errorf("updating user plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (r *postgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("updating user active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CountByPlan(ctx context.Context) ([]PlanCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT plan, COUNT(*) FROM users GROUP BY plan`)
	if err != nil {
		return nil, fmt.Errorf("counting users by plan: %w", err)
	}
	defer rows.Close()

	var out []PlanCount
	for rows.Next() {
		var pc PlanCount
		if err := rows.Scan(&pc.Plan, &pc.Count); err != nil {
			return nil, fmt.Errorf("scanning plan count: %w", err)
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}
