package users

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurox-platform/nurox/internal/plans"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new user on the free tier.
func (s *Service) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Plan:         plans.Free,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return s.repo.ExistsByUsernameOrEmail(ctx, username, email)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, error) {
	return s.repo.List(ctx, limit, offset)
}

// ChangePlan validates the plan against the catalog before persisting.
func (s *Service) ChangePlan(ctx context.Context, id uuid.UUID, plan string) (plans.Plan, error) {
	parsed, err := plans.Parse(plan)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePlan(ctx, id, parsed); err != nil {
		return "", err
	}
	return parsed, nil
}

// Disable marks the user inactive. Usage history is retained.
func (s *Service) Disable(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) CountByPlan(ctx context.Context) ([]PlanCount, error) {
	return s.repo.CountByPlan(ctx)
}
