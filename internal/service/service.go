package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"StaffHub/config"
	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
	"StaffHub/pkg/filestore"
	"StaffHub/pkg/logger"
)

// EventPublisher delivers workflow events after the owning transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, eventType model.EventType, payload interface{}) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.EventType, interface{}) error { return nil }

var (
	publisherMu sync.RWMutex
	publisher   EventPublisher = nopPublisher{}
)

// SetEventPublisher installs the publisher used by the singleton services. Binaries that
// do not connect to the broker leave the no-op default in place.
func SetEventPublisher(p EventPublisher) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if p == nil {
		p = nopPublisher{}
	}
	publisher = p
}

func defaultPublisher() EventPublisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return publisher
}

// emit publishes an event and only logs failures; the write it describes is already committed.
func emit(ctx context.Context, p EventPublisher, eventType model.EventType, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, payload); err != nil {
		logger.Logger.Warn("Failed to publish event",
			zap.String("type", string(eventType)),
			zap.Error(err),
		)
	}
}

// notFound maps gorm's missing-row error to def and wraps anything else.
func notFound(err error, def pkgerrors.Definition, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def
	}
	return fmt.Errorf("failed to query %s: %w", what, err)
}

// primary pins reads to the write connection, for reads that must observe a commit.
func primary(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Write).Session(&gorm.Session{})
}

func paginate(q dto.PageQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.PageSize)
	}
}

func userSummary(u *model.User) dto.UserSummary {
	return dto.UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.EffectiveRole()),
		Points:    u.Points,
		Avatar:    avatarURL(u),
	}
}

var (
	media     *filestore.Store
	mediaOnce sync.Once
)

func mediaStore() *filestore.Store {
	mediaOnce.Do(func() {
		media = filestore.New(config.Cfg.MediaRoot, config.Cfg.MediaURL, config.Cfg.MaxUploadBytes)
	})
	return media
}

// avatarURL is the public URL of the user's avatar, nil when none is set.
func avatarURL(u *model.User) *string {
	if u.Avatar == nil || *u.Avatar == "" {
		return nil
	}
	url := mediaStore().URL(*u.Avatar)
	return &url
}

func utcNow() time.Time {
	return time.Now().UTC()
}
