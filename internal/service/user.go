package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
	"StaffHub/pkg/filestore"
	"StaffHub/pkg/logger"
	"StaffHub/storage/database"
)

const (
	employeeSearchLimit = 200
	avatarDir           = "avatars"
)

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = NewUserService(database.DB(), mediaStore())
	})
	return userService
}

type UserService struct {
	db    *gorm.DB
	files *filestore.Store
}

func NewUserService(db *gorm.DB, files *filestore.Store) *UserService {
	return &UserService{db: db, files: files}
}

// LoadActive fetches the principal behind an access token.
func (s *UserService) LoadActive(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Unauthorized
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if !user.IsActive {
		return nil, pkgerrors.UserInactive
	}
	return &user, nil
}

func (s *UserService) Me(ctx context.Context, actor *model.User) dto.UserProfile {
	return userProfile(actor)
}

// UpdateAvatar stores the uploaded image and points the user at it. The previous
// file is removed once the row is updated.
func (s *UserService) UpdateAvatar(ctx context.Context, actor *model.User, filename string, size int64, r io.Reader) (*dto.UserProfile, error) {
	rel, err := s.files.SaveImage(avatarDir, filename, size, r)
	switch {
	case errors.Is(err, filestore.ErrTooLarge):
		return nil, pkgerrors.UploadTooLarge
	case errors.Is(err, filestore.ErrInvalidType):
		return nil, pkgerrors.UploadInvalidType
	case err != nil:
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", actor.ID).
		Update("avatar", rel).Error
	if err != nil {
		_ = s.files.Remove(rel)
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	if actor.Avatar != nil {
		if err := s.files.Remove(*actor.Avatar); err != nil {
			logger.Logger.Warn("Failed to remove old avatar",
				zap.Int64("user_id", actor.ID),
				zap.Error(err),
			)
		}
	}

	actor.Avatar = &rel
	profile := userProfile(actor)
	return &profile, nil
}

// SearchEmployees lists active users matching q on username or name, HR only.
func (s *UserService) SearchEmployees(ctx context.Context, actor *model.User, q string) ([]dto.UserSummary, error) {
	if actor.EffectiveRole() != model.RoleHR {
		return nil, pkgerrors.Forbidden
	}

	tx := s.db.WithContext(ctx).Where("is_active = ?", true)
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}

	var users []model.User
	err := tx.Order("first_name, last_name, username").
		Limit(employeeSearchLimit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search employees: %w", err)
	}

	out := make([]dto.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, userSummary(&users[i]))
	}
	return out, nil
}
