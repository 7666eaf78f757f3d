package services

import (
	"context"
	"fmt"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/config"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/pkg/jwt"
	"sdi-portal/internal/pkg/password"

	"github.com/google/uuid"
)

// AuthService handles authentication and session lifecycle
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	activity  *ActivityService
	jwtConfig config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	activity *ActivityService,
	jwtConfig config.JWTConfig,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		activity:  activity,
		jwtConfig: jwtConfig,
	}
}

// TokenPair holds a freshly issued access/refresh token pair
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user by username and password.
// Failed attempts and deactivated accounts never produce a session.
func (s *AuthService) Login(ctx context.Context, username, plainPassword string) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, domain.ErrUserInactive
	}

	if !password.Verify(plainPassword, user.Password) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.activity.Record(ctx, user.ID, user.Username, models.ActionLogin, fmt.Sprintf("User %s logged in", user.Username))
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued. A token that was already revoked is treated as
// evidence of theft and every session of that user is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.jwtConfig.RefreshSecret)
	if err != nil {
		return nil, nil, domain.ErrTokenInvalid
	}

	stored, err := s.tokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		return nil, nil, domain.ErrTokenInvalid
	}

	if stored.IsRevoked() {
		_ = s.tokenRepo.RevokeAllByUserID(ctx, stored.UserID)
		return nil, nil, domain.ErrTokenInvalid
	}
	if stored.IsExpired() {
		return nil, nil, domain.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, domain.ErrTokenInvalid
	}
	if !user.IsActive {
		return nil, nil, domain.ErrUserInactive
	}

	if err := s.tokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Logout revokes the presented refresh token and records the audit entry
func (s *AuthService) Logout(ctx context.Context, actor domain.Actor, refreshToken string) error {
	if refreshToken != "" {
		if err := s.tokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
			return err
		}
	}

	s.activity.RecordActor(ctx, actor, models.ActionLogout, fmt.Sprintf("User %s logged out", actor.Username))
	return nil
}

// LogoutAll revokes every active session of the actor
func (s *AuthService) LogoutAll(ctx context.Context, actor domain.Actor) error {
	if err := s.tokenRepo.RevokeAllByUserID(ctx, actor.ID); err != nil {
		return err
	}

	s.activity.RecordActor(ctx, actor, models.ActionLogout, fmt.Sprintf("User %s logged out from all devices", actor.Username))
	return nil
}

// GetProfile returns the user behind the actor
func (s *AuthService) GetProfile(ctx context.Context, actor domain.Actor) (*models.User, error) {
	return s.userRepo.GetByID(ctx, actor.ID)
}

// issueTokens generates an access/refresh pair and persists the refresh
// token hash for rotation checks
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID, user.Username, user.ShortName, user.Role,
		s.jwtConfig.Secret, s.jwtConfig.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID, uuid.NewString(),
		s.jwtConfig.RefreshSecret, s.jwtConfig.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.jwtConfig.RefreshTokenDays),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
