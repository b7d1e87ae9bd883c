package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownUser is returned by UserLookup implementations when the subject
// of a token no longer exists.
var ErrUnknownUser = errors.New("unknown user")

// UserLookup resolves a user ID to the username embedded in new access tokens.
type UserLookup func(ctx context.Context, userID string) (string, error)

type Service struct {
	jwt        *JWTManager
	store      RefreshStore
	lookupUser UserLookup
}

func NewService(jwt *JWTManager, store RefreshStore, lookup UserLookup) *Service {
	return &Service{
		jwt:        jwt,
		store:      store,
		lookupUser: lookup,
	}
}

func (s *Service) GenerateTokens(ctx context.Context, userID, username string) (*TokenPair, error) {
	pair, tokenID, err := s.jwt.GenerateTokenPair(userID, username)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, userID, tokenID, s.jwt.RefreshExpiry()); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return pair, nil
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	exists, err := s.store.Exists(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("checking refresh token: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("refresh token revoked")
	}

	// Rotate: the presented token is single use.
	if err := s.store.Delete(ctx, claims.UserID, claims.TokenID); err != nil {
		return nil, fmt.Errorf("revoking refresh token: %w", err)
	}

	username, err := s.lookupUser(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	pair, newTokenID, err := s.jwt.GenerateTokenPair(claims.UserID, username)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, claims.UserID, newTokenID, s.jwt.RefreshExpiry()); err != nil {
		return nil, fmt.Errorf("storing new refresh token: %w", err)
	}

	return pair, nil
}

// Logout revokes every refresh token issued to the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.store.DeleteAll(ctx, userID)
}

func (s *Service) ValidateAccessToken(token string) (*AccessClaims, error) {
	return s.jwt.ValidateAccessToken(token)
}

func (s *Service) JWT() *JWTManager {
	return s.jwt
}
