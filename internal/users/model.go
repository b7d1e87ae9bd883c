package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurox-platform/nurox/internal/plans"
)

// User matches the users table schema.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Plan         plans.Plan `json:"plan"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PlanCount is one row of the admin stats plan breakdown.
type PlanCount struct {
	Plan  plans.Plan `json:"plan"`
	Count int64      `json:"count"`
}
