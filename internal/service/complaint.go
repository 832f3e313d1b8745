package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
	"StaffHub/pkg/logger"
	"StaffHub/pkg/metrics"
	"StaffHub/storage/database"
)

var (
	complaintService *ComplaintService
	complaintOnce    sync.Once
)

func Complaint() *ComplaintService {
	complaintOnce.Do(func() {
		complaintService = NewComplaintService(database.DB(), defaultPublisher(), utcNow)
	})
	return complaintService
}

// ComplaintService routes complaints to the HR or manager inbox. Each complaint keeps
// one seen flag for the sender and one for the receiving side.
type ComplaintService struct {
	db     *gorm.DB
	events EventPublisher
	now    func() time.Time
}

func NewComplaintService(db *gorm.DB, events EventPublisher, now func() time.Time) *ComplaintService {
	return &ComplaintService{db: db, events: events, now: now}
}

func (s *ComplaintService) Submit(ctx context.Context, actor *model.User, req dto.SubmitComplaintRequest) (*dto.ComplaintData, error) {
	recipient := model.ComplaintRecipient(req.RecipientType)
	if !recipient.Valid() {
		return nil, pkgerrors.ComplaintRecipientInvalid
	}

	c := model.Complaint{
		SenderID:          actor.ID,
		RecipientType:     recipient,
		Title:             req.Title,
		Message:           req.Message,
		IsSeenByEmployee:  true,
		IsSeenByRecipient: false,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}
	c.Sender = actor

	metrics.RecordComplaint(ctx, "submitted", string(recipient))
	logger.Logger.Info("Complaint submitted",
		zap.Int64("complaint_id", c.ID),
		zap.Int64("sender_id", actor.ID),
		zap.String("recipient_type", string(recipient)),
	)
	emit(ctx, s.events, model.EventComplaintSubmitted, model.ComplaintSubmittedEvent{
		ComplaintID:   c.ID,
		SenderID:      actor.ID,
		RecipientType: recipient,
		Title:         c.Title,
	})

	data := complaintData(&c)
	return &data, nil
}

// Mine lists the actor's own complaints, newest first.
func (s *ComplaintService) Mine(ctx context.Context, actor *model.User, q dto.PageQuery) (*dto.Page[dto.ComplaintData], error) {
	return s.list(ctx, q, func(db *gorm.DB) *gorm.DB {
		return db.Where("sender_id = ?", actor.ID)
	})
}

// Inbox lists complaints addressed to the actor's role.
func (s *ComplaintService) Inbox(ctx context.Context, actor *model.User, q dto.PageQuery) (*dto.Page[dto.ComplaintData], error) {
	recipient, ok := model.ComplaintRecipientFor(actor.EffectiveRole())
	if !ok {
		return nil, pkgerrors.Forbidden
	}
	return s.list(ctx, q, func(db *gorm.DB) *gorm.DB {
		return db.Where("recipient_type = ?", recipient)
	})
}

func (s *ComplaintService) list(ctx context.Context, q dto.PageQuery, scope func(*gorm.DB) *gorm.DB) (*dto.Page[dto.ComplaintData], error) {
	q.Normalize()

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Complaint{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}

	var rows []model.Complaint
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Scopes(scope, paginate(q)).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}

	items := make([]dto.ComplaintData, 0, len(rows))
	for i := range rows {
		items = append(items, complaintData(&rows[i]))
	}
	return &dto.Page[dto.ComplaintData]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// Get returns a complaint to its sender or to the addressed role. Anyone else gets not found.
func (s *ComplaintService) Get(ctx context.Context, actor *model.User, id int64) (*dto.ComplaintData, error) {
	c, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if c.SenderID != actor.ID && !isRecipient(actor, c) {
		return nil, pkgerrors.ComplaintNotFound
	}
	data := complaintData(c)
	return &data, nil
}

func (s *ComplaintService) load(ctx context.Context, db *gorm.DB, id int64) (*model.Complaint, error) {
	var c model.Complaint
	if err := db.WithContext(ctx).Preload("Sender").First(&c, id).Error; err != nil {
		return nil, notFound(err, pkgerrors.ComplaintNotFound, "complaint")
	}
	return &c, nil
}

func isRecipient(actor *model.User, c *model.Complaint) bool {
	recipient, ok := model.ComplaintRecipientFor(actor.EffectiveRole())
	return ok && recipient == c.RecipientType
}

// Reply answers a complaint. The sender's seen flag is cleared so the answer shows up
// as new on their side.
func (s *ComplaintService) Reply(ctx context.Context, actor *model.User, id int64, req dto.ReplyComplaintRequest) (*dto.ComplaintData, error) {
	text := strings.TrimSpace(req.Response)
	if text == "" {
		return nil, pkgerrors.ComplaintResponseRequired
	}

	var c *model.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = s.load(ctx, tx, id); err != nil {
			return err
		}
		if !isRecipient(actor, c) {
			return pkgerrors.ComplaintRecipientMismatch
		}

		now := s.now()
		err = tx.Model(c).Updates(map[string]interface{}{
			"response":             text,
			"is_responded":         true,
			"responded_by_id":      actor.ID,
			"responded_at":         now,
			"is_seen_by_recipient": true,
			"is_seen_by_employee":  false,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to reply to complaint: %w", err)
		}

		c.Response = &text
		c.IsResponded = true
		c.RespondedByID = &actor.ID
		c.RespondedAt = &now
		c.IsSeenByRecipient = true
		c.IsSeenByEmployee = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordComplaint(ctx, "replied", string(c.RecipientType))
	logger.Logger.Info("Complaint replied",
		zap.Int64("complaint_id", c.ID),
		zap.Int64("responder_id", actor.ID),
	)
	emit(ctx, s.events, model.EventComplaintReplied, model.ComplaintRepliedEvent{
		ComplaintID:   c.ID,
		SenderID:      c.SenderID,
		RespondedByID: actor.ID,
		Title:         c.Title,
	})

	data := complaintData(c)
	return &data, nil
}

// MarkSeen sets the flag of whichever side the actor is on.
func (s *ComplaintService) MarkSeen(ctx context.Context, actor *model.User, id int64) (*dto.ComplaintData, error) {
	c, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if c.SenderID == actor.ID {
		updates["is_seen_by_employee"] = true
		c.IsSeenByEmployee = true
	}
	if isRecipient(actor, c) {
		updates["is_seen_by_recipient"] = true
		c.IsSeenByRecipient = true
	}
	if len(updates) == 0 {
		return nil, pkgerrors.Forbidden
	}

	if err := s.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to mark complaint seen: %w", err)
	}

	data := complaintData(c)
	return &data, nil
}

// unseenScope selects the complaints the actor has not seen yet and names the flag that
// marks them seen. HR and managers read their inbox; everyone else reads replies to
// their own complaints.
func unseenScope(actor *model.User) (func(*gorm.DB) *gorm.DB, string) {
	if recipient, ok := model.ComplaintRecipientFor(actor.EffectiveRole()); ok {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("recipient_type = ? AND is_seen_by_recipient = ?", recipient, false)
		}, "is_seen_by_recipient"
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("sender_id = ? AND is_responded = ? AND is_seen_by_employee = ?", actor.ID, true, false)
	}, "is_seen_by_employee"
}

func (s *ComplaintService) MarkAllSeen(ctx context.Context, actor *model.User) (*dto.MarkAllSeenResponse, error) {
	scope, flag := unseenScope(actor)
	res := s.db.WithContext(ctx).Model(&model.Complaint{}).
		Scopes(scope).
		Update(flag, true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark complaints seen: %w", res.Error)
	}
	return &dto.MarkAllSeenResponse{Updated: res.RowsAffected}, nil
}

func (s *ComplaintService) HasUnread(ctx context.Context, actor *model.User) (*dto.HasUnreadResponse, error) {
	scope, _ := unseenScope(actor)
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Complaint{}).
		Scopes(scope).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check unread complaints: %w", err)
	}
	return &dto.HasUnreadResponse{HasNew: n > 0}, nil
}

func complaintData(c *model.Complaint) dto.ComplaintData {
	data := dto.ComplaintData{
		ID:                c.ID,
		SenderID:          c.SenderID,
		RecipientType:     string(c.RecipientType),
		Title:             c.Title,
		Message:           c.Message,
		Response:          c.Response,
		IsResponded:       c.IsResponded,
		RespondedByID:     c.RespondedByID,
		RespondedAt:       c.RespondedAt,
		IsSeenByEmployee:  c.IsSeenByEmployee,
		IsSeenByRecipient: c.IsSeenByRecipient,
		CreatedAt:         c.CreatedAt,
	}
	if c.Sender != nil {
		data.SenderUsername = c.Sender.Username
	}
	return data
}
