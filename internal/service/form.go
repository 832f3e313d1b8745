package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
	"StaffHub/pkg/serial"
	"StaffHub/storage/database"
)

var (
	formService *FormService
	formOnce    sync.Once
)

func Form() *FormService {
	formOnce.Do(func() {
		formService = NewFormService(database.DB(), serial.Next, utcNow)
	})
	return formService
}

// FormService serves the read-only form library. Employees only see sections they hold
// a permission for.
type FormService struct {
	db     *gorm.DB
	serial func() int64
	now    func() time.Time
}

func NewFormService(db *gorm.DB, next func() int64, now func() time.Time) *FormService {
	return &FormService{db: db, serial: next, now: now}
}

func seesAllSections(actor *model.User) bool {
	return actor.EffectiveRole() != model.RoleEmployee
}

// visibleSections restricts a query on sections.id (or forms.section_id) to the actor.
func visibleSections(actor *model.User, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if seesAllSections(actor) {
			return db
		}
		return db.Where(column+" IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.UserSectionPermission{}).
				Select("section_id").
				Where("user_id = ?", actor.ID),
		)
	}
}

func (s *FormService) ListSections(ctx context.Context, actor *model.User) ([]dto.SectionData, error) {
	var sections []model.Section
	err := s.db.WithContext(ctx).
		Scopes(visibleSections(actor, "id")).
		Order("id").
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	out := make([]dto.SectionData, 0, len(sections))
	for i := range sections {
		out = append(out, sectionData(&sections[i]))
	}
	return out, nil
}

func (s *FormService) ListForms(ctx context.Context, actor *model.User, q dto.FormListQuery) ([]dto.FormData, error) {
	tx := s.db.WithContext(ctx).
		Preload("Section").
		Scopes(visibleSections(actor, "section_id"))
	if q.SectionID > 0 {
		tx = tx.Where("section_id = ?", q.SectionID)
	}

	var forms []model.Form
	if err := tx.Order("id").Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	out := make([]dto.FormData, 0, len(forms))
	for i := range forms {
		out = append(out, formData(&forms[i]))
	}
	return out, nil
}

func (s *FormService) GetForm(ctx context.Context, actor *model.User, id int64) (*dto.FormData, error) {
	var form model.Form
	err := s.db.WithContext(ctx).
		Preload("Section").
		Scopes(visibleSections(actor, "section_id")).
		First(&form, id).Error
	if err != nil {
		return nil, notFound(err, pkgerrors.FormNotFound, "form")
	}
	data := formData(&form)
	return &data, nil
}

// Preview returns the form with a fresh process-unique serial stamp.
func (s *FormService) Preview(ctx context.Context, actor *model.User, id int64) (*dto.FormPreview, error) {
	form, err := s.GetForm(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &dto.FormPreview{
		Serial:    s.serial(),
		StampedAt: s.now(),
		Form:      *form,
	}, nil
}

func sectionData(sec *model.Section) dto.SectionData {
	return dto.SectionData{ID: sec.ID, NameAr: sec.NameAr, NameEn: sec.NameEn}
}

func formData(f *model.Form) dto.FormData {
	data := dto.FormData{
		ID:           f.ID,
		SerialNumber: f.SerialNumber,
		NameAr:       f.NameAr,
		NameEn:       f.NameEn,
		Category:     string(f.Category),
		Description:  f.Description,
		File:         mediaStore().URL(f.File),
	}
	if f.Section != nil {
		sec := sectionData(f.Section)
		data.Section = &sec
	}
	return data
}
