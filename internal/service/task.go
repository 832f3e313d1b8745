package service

import (
	"context"
	"fmt"
	"sort"
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
	taskService *TaskService
	taskOnce    sync.Once
)

func Task() *TaskService {
	taskOnce.Do(func() {
		taskService = NewTaskService(database.DB(), defaultPublisher(), utcNow)
	})
	return taskService
}

// TaskService tracks multi-phase tasks assigned by management or HR to individual users
// and to the HR team pool.
type TaskService struct {
	db     *gorm.DB
	events EventPublisher
	now    func() time.Time
}

func NewTaskService(db *gorm.DB, events EventPublisher, now func() time.Time) *TaskService {
	return &TaskService{db: db, events: events, now: now}
}

func withTaskChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Phases", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Preload("Recipients", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Recipients.User")
}

// visibleTasks: management sees management tasks, HR sees HR tasks and tasks sent to the
// HR team, everyone else sees tasks they are an individual recipient of.
func visibleTasks(actor *model.User) func(*gorm.DB) *gorm.DB {
	role := actor.EffectiveRole()
	return func(db *gorm.DB) *gorm.DB {
		recipients := db.Session(&gorm.Session{NewDB: true}).
			Model(&model.TaskRecipient{}).
			Select("task_id")
		switch {
		case role.IsManagement():
			return db.Where("creator_role = ?", model.TaskCreatorManagement)
		case role == model.RoleHR:
			return db.Where("creator_role = ? OR id IN (?)",
				model.TaskCreatorHR, recipients.Where("is_hr_team = ?", true))
		default:
			return db.Where("id IN (?)", recipients.Where("user_id = ?", actor.ID))
		}
	}
}

// canEdit reports whether actor owns the task's silo.
func canEdit(actor *model.User, task *model.Task) bool {
	role := actor.EffectiveRole()
	return role.IsTaskCreator() && model.TaskCreatorRoleFor(role) == task.CreatorRole
}

// isAssignee reports an individual recipient, or HR when the HR pool is a recipient.
func isAssignee(actor *model.User, task *model.Task) bool {
	if task.HasUserRecipient(actor.ID) {
		return true
	}
	return actor.EffectiveRole() == model.RoleHR && task.HasHRTeam()
}

func canDiscuss(actor *model.User, task *model.Task) bool {
	return isAssignee(actor, task) || actor.EffectiveRole().IsTaskCreator()
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func insertPhases(tx *gorm.DB, taskID int64, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	phases := make([]model.TaskPhase, 0, len(texts))
	for i, text := range texts {
		phases = append(phases, model.TaskPhase{
			TaskID: taskID,
			Order:  i + 1,
			Text:   text,
			Status: model.PhaseStatusPending,
		})
	}
	if err := tx.Create(&phases).Error; err != nil {
		return fmt.Errorf("failed to create phases: %w", err)
	}
	return nil
}

// insertRecipients adds one row per user plus the HR pool row. Every user must exist.
func insertRecipients(tx *gorm.DB, taskID int64, userIDs []int64, hrTeam bool) error {
	if len(userIDs) > 0 {
		var found int64
		if err := tx.Model(&model.User{}).Where("id IN ?", userIDs).Count(&found).Error; err != nil {
			return fmt.Errorf("failed to check recipients: %w", err)
		}
		if found != int64(len(userIDs)) {
			return pkgerrors.TaskRecipientUnknown
		}
	}

	rows := make([]model.TaskRecipient, 0, len(userIDs)+1)
	for i := range userIDs {
		rows = append(rows, model.TaskRecipient{TaskID: taskID, UserID: &userIDs[i]})
	}
	if hrTeam {
		rows = append(rows, model.TaskRecipient{TaskID: taskID, IsHRTeam: true})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create recipients: %w", err)
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, actor *model.User, req dto.CreateTaskRequest) (*dto.TaskData, error) {
	role := actor.EffectiveRole()
	if !role.IsTaskCreator() {
		return nil, pkgerrors.Forbidden
	}
	userIDs := dedupeIDs(req.RecipientUserIDs)

	task := model.Task{
		Title:       req.Title,
		Description: req.Description,
		CreatorRole: model.TaskCreatorRoleFor(role),
		CreatedByID: actor.ID,
		Status:      model.TaskStatusOpen,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if err := insertPhases(tx, task.ID, req.PhaseTexts); err != nil {
			return err
		}
		return insertRecipients(tx, task.ID, userIDs, req.ToHRTeam)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTaskTransition(ctx, "create", string(model.TaskStatusOpen))
	logger.Logger.Info("Task created",
		zap.Int64("task_id", task.ID),
		zap.String("creator_role", string(task.CreatorRole)),
		zap.Int("phases", len(req.PhaseTexts)),
		zap.Int("recipients", len(userIDs)),
		zap.Bool("hr_team", req.ToHRTeam),
	)
	if len(userIDs) > 0 || req.ToHRTeam {
		emit(ctx, s.events, model.EventTaskAssigned, model.TaskAssignedEvent{
			TaskID:  task.ID,
			Title:   task.Title,
			UserIDs: userIDs,
			HRTeam:  req.ToHRTeam,
		})
	}

	return s.reload(ctx, task.ID)
}

func (s *TaskService) reload(ctx context.Context, id int64) (*dto.TaskData, error) {
	task, err := s.load(ctx, primary(s.db), id)
	if err != nil {
		return nil, err
	}
	data := taskData(task)
	return &data, nil
}

func (s *TaskService) load(ctx context.Context, db *gorm.DB, id int64) (*model.Task, error) {
	var task model.Task
	if err := db.WithContext(ctx).Scopes(withTaskChildren).First(&task, id).Error; err != nil {
		return nil, notFound(err, pkgerrors.TaskNotFound, "task")
	}
	return &task, nil
}

func (s *TaskService) loadVisible(ctx context.Context, db *gorm.DB, actor *model.User, id int64) (*model.Task, error) {
	var task model.Task
	err := db.WithContext(ctx).
		Scopes(visibleTasks(actor), withTaskChildren).
		First(&task, id).Error
	if err != nil {
		return nil, notFound(err, pkgerrors.TaskNotFound, "task")
	}
	return &task, nil
}

func (s *TaskService) List(ctx context.Context, actor *model.User, q dto.PageQuery, filter dto.TaskListQuery) (*dto.Page[dto.TaskData], error) {
	q.Normalize()
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(visibleTasks(actor))
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Task{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	var rows []model.Task
	err := s.db.WithContext(ctx).
		Scopes(scope, withTaskChildren, paginate(q)).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	items := make([]dto.TaskData, 0, len(rows))
	for i := range rows {
		items = append(items, taskData(&rows[i]))
	}
	return &dto.Page[dto.TaskData]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *TaskService) Get(ctx context.Context, actor *model.User, id int64) (*dto.TaskData, error) {
	task, err := s.loadVisible(ctx, s.db, actor, id)
	if err != nil {
		return nil, err
	}
	data := taskData(task)
	return &data, nil
}

// Update patches scalars and replaces phases or recipients when they are supplied.
func (s *TaskService) Update(ctx context.Context, actor *model.User, id int64, req dto.UpdateTaskRequest) (*dto.TaskData, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canEdit(actor, task) {
			return pkgerrors.Forbidden
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
		}

		if req.PhaseTexts != nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskPhase{}).Error; err != nil {
				return fmt.Errorf("failed to delete phases: %w", err)
			}
			if err := insertPhases(tx, task.ID, *req.PhaseTexts); err != nil {
				return err
			}
		}

		if req.RecipientUserIDs != nil || req.ToHRTeam != nil {
			var userIDs []int64
			if req.RecipientUserIDs != nil {
				userIDs = dedupeIDs(*req.RecipientUserIDs)
			} else {
				for _, r := range task.Recipients {
					if r.UserID != nil {
						userIDs = append(userIDs, *r.UserID)
					}
				}
			}
			hrTeam := task.HasHRTeam()
			if req.ToHRTeam != nil {
				hrTeam = *req.ToHRTeam
			}

			if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskRecipient{}).Error; err != nil {
				return fmt.Errorf("failed to delete recipients: %w", err)
			}
			if err := insertRecipients(tx, task.ID, userIDs, hrTeam); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Task updated", zap.Int64("task_id", id))
	return s.reload(ctx, id)
}

// Delete removes the task with its phases, recipients and comments.
func (s *TaskService) Delete(ctx context.Context, actor *model.User, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, id).Error; err != nil {
			return notFound(err, pkgerrors.TaskNotFound, "task")
		}
		if !canEdit(actor, &task) {
			return pkgerrors.Forbidden
		}

		for _, child := range []interface{}{&model.TaskPhase{}, &model.TaskRecipient{}, &model.TaskComment{}} {
			if err := tx.Where("task_id = ?", task.ID).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete task children: %w", err)
			}
		}
		if err := tx.Delete(&task).Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		logger.Logger.Info("Task deleted", zap.Int64("task_id", task.ID))
		return nil
	})
}

// Close moves an open task into a terminal status. Closed tasks stay closed.
func (s *TaskService) Close(ctx context.Context, actor *model.User, id int64, status model.TaskStatus) (*dto.TaskData, error) {
	if !actor.EffectiveRole().IsTaskCreator() {
		return nil, pkgerrors.Forbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.loadVisible(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !task.IsOpen() {
			return pkgerrors.TaskClosed
		}
		res := tx.Model(&model.Task{}).
			Where("id = ? AND status = ?", task.ID, model.TaskStatusOpen).
			Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("failed to update task status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.TaskClosed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTaskTransition(ctx, "close", string(status))
	logger.Logger.Info("Task closed",
		zap.Int64("task_id", id),
		zap.String("status", string(status)),
		zap.Int64("actor_id", actor.ID),
	)
	return s.reload(ctx, id)
}

// CompleteNextPhase records result on the lowest-order pending phase. The task itself
// stays open.
func (s *TaskService) CompleteNextPhase(ctx context.Context, actor *model.User, id int64, req dto.CompletePhaseRequest) (*dto.CompletePhaseResponse, error) {
	result := model.PhaseStatus(req.Result)
	if result != model.PhaseStatusSuccess && result != model.PhaseStatusFailed {
		return nil, pkgerrors.TaskResultInvalid
	}

	var resp dto.CompletePhaseResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if !isAssignee(actor, task) {
			return pkgerrors.Forbidden
		}
		if !task.IsOpen() {
			return pkgerrors.TaskClosed
		}

		var phase *model.TaskPhase
		for i := range task.Phases {
			if task.Phases[i].Status == model.PhaseStatusPending {
				phase = &task.Phases[i]
				break
			}
		}
		if phase == nil {
			return pkgerrors.TaskNoPendingPhase
		}

		now := s.now()
		err = tx.Model(phase).Updates(map[string]interface{}{
			"status":       result,
			"completed_at": now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to complete phase: %w", err)
		}

		resp = dto.CompletePhaseResponse{PhaseID: phase.ID, Order: phase.Order, Status: string(result)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTaskTransition(ctx, "phase", string(result))
	logger.Logger.Info("Task phase completed",
		zap.Int64("task_id", id),
		zap.Int64("phase_id", resp.PhaseID),
		zap.String("result", resp.Status),
	)
	return &resp, nil
}

func (s *TaskService) ListComments(ctx context.Context, actor *model.User, id int64) ([]dto.TaskCommentData, error) {
	task, err := s.loadVisible(ctx, s.db, actor, id)
	if err != nil {
		return nil, err
	}
	if !canDiscuss(actor, task) {
		return nil, pkgerrors.Forbidden
	}

	var rows []model.TaskComment
	err = s.db.WithContext(ctx).
		Preload("Author").
		Where("task_id = ?", task.ID).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	out := make([]dto.TaskCommentData, 0, len(rows))
	for i := range rows {
		out = append(out, commentData(&rows[i]))
	}
	return out, nil
}

func (s *TaskService) AddComment(ctx context.Context, actor *model.User, id int64, req dto.TaskCommentRequest) (*dto.TaskCommentData, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, pkgerrors.TaskCommentEmpty
	}

	task, err := s.loadVisible(ctx, s.db, actor, id)
	if err != nil {
		return nil, err
	}
	if !canDiscuss(actor, task) {
		return nil, pkgerrors.Forbidden
	}
	if !task.IsOpen() {
		return nil, pkgerrors.TaskClosed
	}

	comment := model.TaskComment{TaskID: task.ID, AuthorID: actor.ID, Text: text}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.Author = actor

	data := commentData(&comment)
	return &data, nil
}

func commentData(c *model.TaskComment) dto.TaskCommentData {
	data := dto.TaskCommentData{ID: c.ID, Author: c.AuthorID, Text: c.Text, CreatedAt: c.CreatedAt}
	if c.Author != nil {
		data.AuthorName = c.Author.DisplayName()
	}
	return data
}

func taskData(t *model.Task) dto.TaskData {
	data := dto.TaskData{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		CreatorRole:     string(t.CreatorRole),
		CreatedBy:       t.CreatedByID,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		ProgressPercent: t.ProgressPercent(),
		Phases:          make([]dto.TaskPhaseData, 0, len(t.Phases)),
		Recipients:      make([]dto.TaskRecipientData, 0, len(t.Recipients)),
	}

	phases := append([]model.TaskPhase(nil), t.Phases...)
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Order < phases[j].Order })
	for _, p := range phases {
		data.Phases = append(data.Phases, dto.TaskPhaseData{
			ID:          p.ID,
			Order:       p.Order,
			Text:        p.Text,
			Status:      string(p.Status),
			CompletedAt: p.CompletedAt,
		})
	}
	for _, r := range t.Recipients {
		rd := dto.TaskRecipientData{ID: r.ID, User: r.UserID, IsHRTeam: r.IsHRTeam}
		if r.User != nil {
			rd.UserUsername = r.User.Username
			rd.UserFullName = r.User.FullName()
		}
		data.Recipients = append(data.Recipients, rd)
	}
	return data
}
