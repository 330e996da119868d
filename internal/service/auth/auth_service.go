package auth

import (
	"context"
	"fmt"

	"deckcast/internal/domain"
	"deckcast/internal/service"
	"deckcast/pkg/errors"
	"deckcast/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Service validates HS256 bearer tokens issued by the identity
// collaborator. Only the claims deckcast needs are read out; session
// management stays outside this repo.
type Service struct {
	secret []byte
	logger *logger.Logger
}

// NewService creates a new auth service
func NewService(secret string, logger *logger.Logger) service.AuthService {
	return &Service{
		secret: []byte(secret),
		logger: logger,
	}
}

// ValidateToken parses and verifies a JWT, returning the editor profile.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.UserProfile, error) {
	if len(s.secret) == 0 {
		return nil, errors.NewAuthenticationError("Token validation is not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.logger.WithError(err).Debug("Token validation failed")
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.NewAuthenticationError("Invalid token claims")
	}

	profile := &domain.UserProfile{}
	if sub, err := claims.GetSubject(); err == nil {
		profile.Sub = sub
	}
	if email, ok := claims["email"].(string); ok {
		profile.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		profile.Name = name
	}
	if profile.Sub == "" {
		return nil, errors.NewAuthenticationError("Token has no subject")
	}

	return profile, nil
}
