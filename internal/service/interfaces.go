package service

import (
	"context"

	"deckcast/internal/domain"
)

// AuthService defines the interface for editor token validation
type AuthService interface {
	// ValidateToken validates a bearer token and returns the editor profile
	ValidateToken(ctx context.Context, token string) (*domain.UserProfile, error)
}
