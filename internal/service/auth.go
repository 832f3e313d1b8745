package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"StaffHub/internal/cache"
	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
	"StaffHub/pkg/logger"
	"StaffHub/pkg/token"
	"StaffHub/storage/database"
	"StaffHub/utils"
)

// RefreshStore remembers the current refresh token id of every user.
type RefreshStore interface {
	Save(ctx context.Context, userID int64, refreshID string) error
	Matches(ctx context.Context, userID int64, refreshID string) (bool, error)
	Delete(ctx context.Context, userID int64) error
}

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = NewAuthService(database.DB(), cache.RefreshTokenStore{})
	})
	return authService
}

type AuthService struct {
	db      *gorm.DB
	refresh RefreshStore
}

func NewAuthService(db *gorm.DB, refresh RefreshStore) *AuthService {
	return &AuthService{db: db, refresh: refresh}
}

// Login checks username and password and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.InvalidCredentials
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, pkgerrors.InvalidCredentials
	}
	if !user.IsActive {
		return nil, pkgerrors.UserInactive
	}

	resp, err := s.issue(ctx, &user)
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.EffectiveRole())),
	)
	return resp, nil
}

// Refresh rotates a refresh token. A token that is not the user's latest one is rejected.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenResponse, error) {
	userID, refreshID, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}

	ok, err := s.refresh.Matches(ctx, userID, refreshID)
	if err != nil {
		return nil, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if !ok {
		return nil, pkgerrors.InvalidRefreshToken
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.InvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if !user.IsActive {
		_ = s.refresh.Delete(ctx, user.ID)
		return nil, pkgerrors.UserInactive
	}

	return s.issue(ctx, &user)
}

func (s *AuthService) issue(ctx context.Context, user *model.User) (*dto.TokenResponse, error) {
	sub := token.Subject{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        string(user.EffectiveRole()),
		Points:      user.Points,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}
	if url := avatarURL(user); url != nil {
		sub.Avatar = *url
	}

	pair, err := token.GenerateTokenPair(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	if err := s.refresh.Save(ctx, user.ID, pair.RefreshID); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         userProfile(user),
	}, nil
}

func userProfile(u *model.User) dto.UserProfile {
	return dto.UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.EffectiveRole()),
		Points:    u.Points,
		Avatar:    avatarURL(u),
	}
}
