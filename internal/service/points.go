package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StaffHub/config"
	"StaffHub/internal/cache"
	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
	"StaffHub/pkg/logger"
	"StaffHub/pkg/metrics"
	"StaffHub/storage/database"
	"StaffHub/utils"
)

// BoardCache holds the last computed honor board.
type BoardCache interface {
	Get(ctx context.Context) (*dto.HonorBoardData, bool, error)
	Set(ctx context.Context, data *dto.HonorBoardData) error
	Invalidate(ctx context.Context) error
}

type nopBoardCache struct{}

func (nopBoardCache) Get(context.Context) (*dto.HonorBoardData, bool, error) { return nil, false, nil }
func (nopBoardCache) Set(context.Context, *dto.HonorBoardData) error        { return nil }
func (nopBoardCache) Invalidate(context.Context) error                      { return nil }

var (
	pointsService *PointsService
	pointsOnce    sync.Once
)

func Points() *PointsService {
	pointsOnce.Do(func() {
		pointsService = NewPointsService(database.DB(), cache.NewHonorBoardCache(), defaultPublisher(), utcNow, config.Cfg.Location())
	})
	return pointsService
}

// PointsService owns the points ledger. A user's points column is a cached sum of their
// ledger deltas and is only written under a row lock on the user.
type PointsService struct {
	db     *gorm.DB
	board  BoardCache
	events EventPublisher
	now    func() time.Time
	loc    *time.Location
}

func NewPointsService(db *gorm.DB, board BoardCache, events EventPublisher, now func() time.Time, loc *time.Location) *PointsService {
	if board == nil {
		board = nopBoardCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PointsService{db: db, board: board, events: events, now: now, loc: loc}
}

// forUpdate takes the row lock that serializes point writes for one user.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func lockUser(tx *gorm.DB, id int64) (*model.User, error) {
	var user model.User
	err := tx.Scopes(forUpdate).First(&user, id).Error
	if err != nil {
		return nil, notFound(err, pkgerrors.UserNotFound, "user")
	}
	return &user, nil
}

// Adjust adds delta to a user's points and appends the ledger row in one transaction.
func (s *PointsService) Adjust(ctx context.Context, actor *model.User, req dto.AdjustPointsRequest) (*dto.PointLogData, error) {
	if actor.EffectiveRole() != model.RoleHR {
		return nil, pkgerrors.Forbidden
	}
	if req.Delta == nil || *req.Delta == 0 {
		return nil, pkgerrors.PointsDeltaInvalid
	}
	delta := *req.Delta

	var (
		entry model.EmployeePointLog
		user  *model.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = lockUser(tx, req.UserID); err != nil {
			return err
		}

		user.Points += delta
		if err := tx.Model(user).Update("points", user.Points).Error; err != nil {
			return fmt.Errorf("failed to update points: %w", err)
		}

		entry = model.EmployeePointLog{
			UserID:      user.ID,
			Delta:       delta,
			Reason:      req.Reason,
			CreatedByID: &actor.ID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append point log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	entry.User = user
	entry.CreatedBy = actor

	s.invalidateBoard(ctx)
	metrics.RecordPointsAdjusted(ctx, delta)
	logger.Logger.Info("Points adjusted",
		zap.Int64("user_id", user.ID),
		zap.Int("delta", delta),
		zap.Int("balance", user.Points),
		zap.Int64("actor_id", actor.ID),
	)
	emit(ctx, s.events, model.EventPointsAdjusted, model.PointsAdjustedEvent{
		LogID:   entry.ID,
		UserID:  user.ID,
		Delta:   delta,
		Reason:  entry.Reason,
		Balance: user.Points,
	})

	data := pointLogData(&entry)
	return &data, nil
}

func (s *PointsService) invalidateBoard(ctx context.Context) {
	if err := s.board.Invalidate(ctx); err != nil {
		logger.Logger.Warn("Failed to invalidate honor board cache", zap.Error(err))
	}
}

// Logs pages through a ledger, newest first. HR may read anyone's ledger (all of them
// when userID is 0); other users only their own.
func (s *PointsService) Logs(ctx context.Context, actor *model.User, userID int64, q dto.PageQuery) (*dto.Page[dto.PointLogData], error) {
	if actor.EffectiveRole() != model.RoleHR {
		if userID != 0 && userID != actor.ID {
			return nil, pkgerrors.Forbidden
		}
		userID = actor.ID
	}
	q.Normalize()

	scope := func(db *gorm.DB) *gorm.DB {
		if userID != 0 {
			return db.Where("user_id = ?", userID)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.EmployeePointLog{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count point logs: %w", err)
	}

	var rows []model.EmployeePointLog
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("CreatedBy").
		Scopes(scope, paginate(q)).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list point logs: %w", err)
	}

	items := make([]dto.PointLogData, 0, len(rows))
	for i := range rows {
		items = append(items, pointLogData(&rows[i]))
	}
	return &dto.Page[dto.PointLogData]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// Reconcile rewrites one user's counter from the ledger, HR only.
func (s *PointsService) Reconcile(ctx context.Context, actor *model.User, userID int64) (*dto.ReconcileResponse, error) {
	if actor.EffectiveRole() != model.RoleHR {
		return nil, pkgerrors.Forbidden
	}
	return s.reconcile(ctx, userID)
}

func (s *PointsService) reconcile(ctx context.Context, userID int64) (*dto.ReconcileResponse, error) {
	var resp dto.ReconcileResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		var sum int
		err = tx.Model(&model.EmployeePointLog{}).
			Select("COALESCE(SUM(delta), 0)").
			Where("user_id = ?", user.ID).
			Scan(&sum).Error
		if err != nil {
			return fmt.Errorf("failed to sum point logs: %w", err)
		}

		resp = dto.ReconcileResponse{UserID: user.ID, Before: user.Points, After: sum}
		if sum == user.Points {
			return nil
		}
		if err := tx.Model(user).Update("points", sum).Error; err != nil {
			return fmt.Errorf("failed to rewrite points: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.Before != resp.After {
		s.invalidateBoard(ctx)
		metrics.RecordLedgerDivergence(ctx)
		logger.Logger.Warn("Points counter diverged from ledger",
			zap.Int64("user_id", resp.UserID),
			zap.Int("before", resp.Before),
			zap.Int("after", resp.After),
		)
	}
	return &resp, nil
}

// ReconcileAll repairs every user whose counter differs from their ledger sum and
// returns the repaired users.
func (s *PointsService) ReconcileAll(ctx context.Context) ([]dto.ReconcileResponse, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Table("users").
		Select("users.id").
		Joins("LEFT JOIN (SELECT user_id, SUM(delta) AS total FROM employee_point_logs GROUP BY user_id) ledger ON ledger.user_id = users.id").
		Where("users.points <> COALESCE(ledger.total, 0)").
		Order("users.id").
		Pluck("users.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find diverged users: %w", err)
	}

	fixed := make([]dto.ReconcileResponse, 0, len(ids))
	for _, id := range ids {
		resp, err := s.reconcile(ctx, id)
		if err != nil {
			if errors.Is(err, pkgerrors.UserNotFound) {
				continue
			}
			return fixed, err
		}
		if resp.Before != resp.After {
			fixed = append(fixed, *resp)
		}
	}
	return fixed, nil
}

// HonorBoard returns the month and year winners, served from cache when possible.
func (s *PointsService) HonorBoard(ctx context.Context) (*dto.HonorBoardData, error) {
	if data, ok, err := s.board.Get(ctx); err != nil {
		logger.Logger.Warn("Failed to read honor board cache", zap.Error(err))
	} else if ok {
		return data, nil
	}

	data, err := s.computeBoard(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.board.Set(ctx, data); err != nil {
		logger.Logger.Warn("Failed to cache honor board", zap.Error(err))
	}
	return data, nil
}

func (s *PointsService) setting(ctx context.Context, db *gorm.DB) (*model.HonorBoardSetting, error) {
	var setting model.HonorBoardSetting
	if err := db.WithContext(ctx).First(&setting, model.HonorBoardSettingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("honor board settings not initialized, run migrate")
		}
		return nil, fmt.Errorf("failed to query honor board settings: %w", err)
	}
	return &setting, nil
}

// computeBoard reads from the primary; its result is cached for the whole TTL.
func (s *PointsService) computeBoard(ctx context.Context) (*dto.HonorBoardData, error) {
	db := primary(s.db)
	setting, err := s.setting(ctx, db)
	if err != nil {
		return nil, err
	}

	now := s.now()
	data := &dto.HonorBoardData{
		EnabledMonth: setting.EnabledMonth,
		EnabledYear:  setting.EnabledYear,
		Enabled:      setting.Enabled(),
		Month:        []dto.HonorBoardEntry{},
		Year:         []dto.HonorBoardEntry{},
	}
	if setting.EnabledMonth {
		if data.Month, err = s.winnersSince(ctx, db, utils.MonthStart(now, s.loc)); err != nil {
			return nil, err
		}
	}
	if setting.EnabledYear {
		if data.Year, err = s.winnersSince(ctx, db, utils.YearStart(now, s.loc)); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// winnersSince returns every user tied for the highest ledger sum since start.
func (s *PointsService) winnersSince(ctx context.Context, db *gorm.DB, start time.Time) ([]dto.HonorBoardEntry, error) {
	var scores []struct {
		UserID int64
		Score  int64
	}
	err := db.WithContext(ctx).Model(&model.EmployeePointLog{}).
		Select("user_id, SUM(delta) AS score").
		Where("created_at >= ?", start.UTC()).
		Group("user_id").
		Scan(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to score honor board: %w", err)
	}
	if len(scores) == 0 {
		return []dto.HonorBoardEntry{}, nil
	}

	best := scores[0].Score
	for _, sc := range scores[1:] {
		if sc.Score > best {
			best = sc.Score
		}
	}
	var ids []int64
	for _, sc := range scores {
		if sc.Score == best {
			ids = append(ids, sc.UserID)
		}
	}

	var users []model.User
	err = db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("first_name, last_name, username").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load honor board users: %w", err)
	}

	entries := make([]dto.HonorBoardEntry, 0, len(users))
	for i := range users {
		u := &users[i]
		entries = append(entries, dto.HonorBoardEntry{
			ID:       u.ID,
			Username: u.Username,
			FullName: u.DisplayName(),
			Points:   u.Points,
			Avatar:   avatarURL(u),
		})
	}
	return entries, nil
}

// Toggle enables or disables the month board, the year board or both.
func (s *PointsService) Toggle(ctx context.Context, actor *model.User, req dto.ToggleHonorBoardRequest) (*dto.HonorBoardData, error) {
	if actor.EffectiveRole() != model.RoleHR {
		return nil, pkgerrors.Forbidden
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	updates := map[string]interface{}{}
	switch req.Scope {
	case "month":
		updates["enabled_month"] = enabled
	case "year":
		updates["enabled_year"] = enabled
	case "", "both":
		updates["enabled_month"] = enabled
		updates["enabled_year"] = enabled
	default:
		return nil, pkgerrors.HonorScopeInvalid
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		setting, err := s.setting(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.Model(setting).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update honor board settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Honor board toggled",
		zap.String("scope", req.Scope),
		zap.Bool("enabled", enabled),
		zap.Int64("actor_id", actor.ID),
	)
	s.invalidateBoard(ctx)
	return s.HonorBoard(ctx)
}

func pointLogData(l *model.EmployeePointLog) dto.PointLogData {
	data := dto.PointLogData{
		ID:        l.ID,
		Delta:     l.Delta,
		Reason:    l.Reason,
		CreatedAt: l.CreatedAt,
	}
	if l.User != nil {
		data.User = userSummary(l.User)
	}
	if l.CreatedBy != nil {
		by := userSummary(l.CreatedBy)
		data.CreatedBy = &by
	}
	return data
}
