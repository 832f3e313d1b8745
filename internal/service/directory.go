package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	"StaffHub/pkg/logger"
	"StaffHub/storage/database"
	"StaffHub/utils"
)

var (
	ErrNoSections  = errors.New("no sections found")
	ErrNoEmployees = errors.New("no users with role employee found")
)

var (
	directoryService *DirectoryService
	directoryOnce    sync.Once
)

func Directory() *DirectoryService {
	directoryOnce.Do(func() {
		directoryService = NewDirectoryService(database.DB())
	})
	return directoryService
}

// DirectoryService seeds sections, accounts and section permissions from bulk input.
type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

// ImportSections creates every complete row whose (name_ar, name_en) pair is new.
func (s *DirectoryService) ImportSections(ctx context.Context, rows []dto.SectionRow) (dto.ImportSummary, error) {
	var sum dto.ImportSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			nameAr, nameEn := strings.TrimSpace(row.NameAr), strings.TrimSpace(row.NameEn)
			if nameAr == "" || nameEn == "" {
				logger.Logger.Warn("Skipped section with missing data", zap.String("name_en", nameEn))
				sum.Skipped++
				continue
			}

			var n int64
			err := tx.Model(&model.Section{}).
				Where("name_ar = ? AND name_en = ?", nameAr, nameEn).
				Count(&n).Error
			if err != nil {
				return fmt.Errorf("failed to look up section: %w", err)
			}
			if n > 0 {
				sum.Skipped++
				continue
			}

			if err := tx.Create(&model.Section{NameAr: nameAr, NameEn: nameEn}).Error; err != nil {
				return fmt.Errorf("failed to create section %q: %w", nameEn, err)
			}
			sum.Created++
		}
		return nil
	})
	if err != nil {
		return dto.ImportSummary{}, err
	}

	logger.Logger.Info("Sections import completed", zap.Int("created", sum.Created), zap.Int("skipped", sum.Skipped))
	return sum, nil
}

// ImportEmployees creates an active account per new username. Managers and HR are
// marked staff and granted every existing section.
func (s *DirectoryService) ImportEmployees(ctx context.Context, rows []dto.EmployeeRow) (dto.ImportSummary, error) {
	var sum dto.ImportSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sectionIDs []int64
		if err := tx.Model(&model.Section{}).Order("id").Pluck("id", &sectionIDs).Error; err != nil {
			return fmt.Errorf("failed to list sections: %w", err)
		}

		for _, row := range rows {
			username := strings.TrimSpace(row.Username)
			role := strings.ToLower(strings.TrimSpace(row.Role))
			if username == "" || row.Password == "" || role == "" {
				logger.Logger.Warn("Skipped incomplete employee row", zap.String("username", username))
				sum.Skipped++
				continue
			}

			var n int64
			if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to look up user: %w", err)
			}
			if n > 0 {
				logger.Logger.Warn("Skipped existing username", zap.String("username", username))
				sum.Skipped++
				continue
			}

			hash, err := utils.HashPassword(row.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password for %q: %w", username, err)
			}
			staff := role == string(model.RoleManager) || role == string(model.RoleHR)
			user := model.User{
				Username:     username,
				PasswordHash: hash,
				Role:         role,
				IsStaff:      staff,
				IsActive:     true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user %q: %w", username, err)
			}
			sum.Created++

			if staff {
				if _, err := grantSections(tx, user.ID, sectionIDs); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return dto.ImportSummary{}, err
	}

	logger.Logger.Info("Users import completed", zap.Int("created", sum.Created), zap.Int("skipped", sum.Skipped))
	return sum, nil
}

// GrantEmployeeSections gives every employee-role user every section. Pairs that already
// exist are counted and left alone, so reruns are safe.
func (s *DirectoryService) GrantEmployeeSections(ctx context.Context) (dto.GrantSummary, error) {
	var sum dto.GrantSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sectionIDs []int64
		if err := tx.Model(&model.Section{}).Order("id").Pluck("id", &sectionIDs).Error; err != nil {
			return fmt.Errorf("failed to list sections: %w", err)
		}
		if len(sectionIDs) == 0 {
			return ErrNoSections
		}

		var userIDs []int64
		err := tx.Model(&model.User{}).
			Where("LOWER(role) = ?", string(model.RoleEmployee)).
			Order("id").
			Pluck("id", &userIDs).Error
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		if len(userIDs) == 0 {
			return ErrNoEmployees
		}

		sum.Sections, sum.Employees = len(sectionIDs), len(userIDs)
		for _, uid := range userIDs {
			created, err := grantSections(tx, uid, sectionIDs)
			if err != nil {
				return err
			}
			sum.Created += created
			sum.Existing += len(sectionIDs) - created
		}
		return nil
	})
	if err != nil {
		return dto.GrantSummary{}, err
	}

	logger.Logger.Info("Section permissions granted",
		zap.Int("sections", sum.Sections),
		zap.Int("employees", sum.Employees),
		zap.Int("created", sum.Created),
		zap.Int("existing", sum.Existing),
	)
	return sum, nil
}

// grantSections inserts the missing (user, section) pairs and returns how many were new.
func grantSections(tx *gorm.DB, userID int64, sectionIDs []int64) (int, error) {
	created := 0
	for _, sid := range sectionIDs {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.UserSectionPermission{UserID: userID, SectionID: sid})
		if res.Error != nil {
			return created, fmt.Errorf("failed to grant section %d to user %d: %w", sid, userID, res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}
