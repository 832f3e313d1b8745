package service

import (
	"context"
	"errors"
	"fmt"
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
	surveyService *SurveyService
	surveyOnce    sync.Once
)

func Survey() *SurveyService {
	surveyOnce.Do(func() {
		surveyService = NewSurveyService(database.DB(), defaultPublisher(), utcNow)
	})
	return surveyService
}

// SurveyService manages single-choice surveys. Managers and HR each own a silo of
// surveys identified by creator_role; everyone else answers published surveys.
type SurveyService struct {
	db     *gorm.DB
	events EventPublisher
	now    func() time.Time
}

func NewSurveyService(db *gorm.DB, events EventPublisher, now func() time.Time) *SurveyService {
	return &SurveyService{db: db, events: events, now: now}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order, id")
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order, id")
}

func withQuestions(db *gorm.DB) *gorm.DB {
	return db.Preload("Questions", orderedQuestions).Preload("Questions.Options", orderedOptions)
}

// visibleSurveys limits authors to their own silo and everyone else to published surveys.
func visibleSurveys(actor *model.User) func(*gorm.DB) *gorm.DB {
	role := actor.EffectiveRole()
	return func(db *gorm.DB) *gorm.DB {
		if role.IsSurveyAuthor() {
			return db.Where("creator_role = ?", role)
		}
		return db.Where("status = ?", model.SurveyStatusPublished)
	}
}

func validateQuestions(questions []dto.SurveyQuestionInput) error {
	for _, q := range questions {
		if len(q.Options) == 0 {
			return pkgerrors.SurveyQuestionNoOptions
		}
	}
	return nil
}

// insertQuestions writes the question tree. Missing orders default to the list index and
// missing required flags default to true.
func insertQuestions(tx *gorm.DB, surveyID int64, questions []dto.SurveyQuestionInput) error {
	for i, qd := range questions {
		q := model.SurveyQuestion{
			SurveyID: surveyID,
			Text:     qd.Text,
			Required: true,
			Order:    i,
		}
		if qd.Required != nil {
			q.Required = *qd.Required
		}
		if qd.Order != nil {
			q.Order = *qd.Order
		}
		if err := tx.Create(&q).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		options := make([]model.SurveyOption, 0, len(qd.Options))
		for j, od := range qd.Options {
			opt := model.SurveyOption{QuestionID: q.ID, Text: od.Text, Order: j}
			if od.Order != nil {
				opt.Order = *od.Order
			}
			options = append(options, opt)
		}
		if err := tx.Create(&options).Error; err != nil {
			return fmt.Errorf("failed to create options: %w", err)
		}
	}
	return nil
}

// deleteQuestionTree removes the survey's questions with their options and any answers
// given to them.
func deleteQuestionTree(tx *gorm.DB, surveyID int64) error {
	questionIDs := tx.Session(&gorm.Session{NewDB: true}).
		Model(&model.SurveyQuestion{}).
		Select("id").
		Where("survey_id = ?", surveyID)

	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.SurveyOption{}).Error; err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.SurveyAnswer{}).Error; err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}
	if err := tx.Where("survey_id = ?", surveyID).Delete(&model.SurveyQuestion{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	return nil
}

func (s *SurveyService) Create(ctx context.Context, actor *model.User, req dto.CreateSurveyRequest) (*model.Survey, error) {
	role := actor.EffectiveRole()
	if !role.IsSurveyAuthor() {
		return nil, pkgerrors.Forbidden
	}

	status := model.SurveyStatus(req.Status)
	if status == "" {
		status = model.SurveyStatusDraft
	}
	if !status.Valid() {
		return nil, pkgerrors.SurveyStatusInvalid
	}
	if err := validateQuestions(req.Questions); err != nil {
		return nil, err
	}

	survey := model.Survey{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   actor.ID,
		CreatorRole: role,
		Status:      status,
	}
	if status == model.SurveyStatusPublished {
		now := s.now()
		survey.PublishedAt = &now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&survey).Error; err != nil {
			return fmt.Errorf("failed to create survey: %w", err)
		}
		return insertQuestions(tx, survey.ID, req.Questions)
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Survey created",
		zap.Int64("survey_id", survey.ID),
		zap.String("creator_role", string(role)),
		zap.Int("questions", len(req.Questions)),
	)
	return s.get(ctx, primary(s.db), survey.ID)
}

func (s *SurveyService) get(ctx context.Context, db *gorm.DB, id int64) (*model.Survey, error) {
	var survey model.Survey
	if err := db.WithContext(ctx).Scopes(withQuestions).First(&survey, id).Error; err != nil {
		return nil, notFound(err, pkgerrors.SurveyNotFound, "survey")
	}
	return &survey, nil
}

// loadOwned fetches a survey the actor may edit: the actor must author in the survey's silo.
func (s *SurveyService) loadOwned(ctx context.Context, tx *gorm.DB, actor *model.User, id int64) (*model.Survey, error) {
	var survey model.Survey
	if err := tx.WithContext(ctx).First(&survey, id).Error; err != nil {
		return nil, notFound(err, pkgerrors.SurveyNotFound, "survey")
	}
	role := actor.EffectiveRole()
	if !role.IsSurveyAuthor() || role != survey.CreatorRole {
		return nil, pkgerrors.Forbidden
	}
	return &survey, nil
}

// Update patches scalar fields and, when questions are supplied, replaces the whole
// question tree.
func (s *SurveyService) Update(ctx context.Context, actor *model.User, id int64, req dto.UpdateSurveyRequest) (*model.Survey, error) {
	if req.Status != nil && !model.SurveyStatus(*req.Status).Valid() {
		return nil, pkgerrors.SurveyStatusInvalid
	}
	if req.Questions != nil {
		if err := validateQuestions(*req.Questions); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := s.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Status != nil {
			s.applyStatus(survey, model.SurveyStatus(*req.Status), updates)
		}
		if len(updates) > 0 {
			if err := tx.Model(survey).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update survey: %w", err)
			}
		}

		if req.Questions != nil {
			if err := deleteQuestionTree(tx, survey.ID); err != nil {
				return err
			}
			return insertQuestions(tx, survey.ID, *req.Questions)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Survey updated",
		zap.Int64("survey_id", id),
		zap.Bool("questions_replaced", req.Questions != nil),
	)
	return s.get(ctx, primary(s.db), id)
}

// applyStatus records a status change, stamping published_at on the first publish.
func (s *SurveyService) applyStatus(survey *model.Survey, status model.SurveyStatus, updates map[string]interface{}) {
	updates["status"] = status
	if status == model.SurveyStatusPublished && survey.PublishedAt == nil {
		now := s.now()
		updates["published_at"] = now
		survey.PublishedAt = &now
	}
	survey.Status = status
}

func (s *SurveyService) ChangeStatus(ctx context.Context, actor *model.User, id int64, req dto.ChangeSurveyStatusRequest) (*model.Survey, error) {
	status := model.SurveyStatus(req.Status)
	if !status.Valid() {
		return nil, pkgerrors.SurveyStatusInvalid
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := s.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{}
		s.applyStatus(survey, status, updates)
		if err := tx.Model(survey).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to change survey status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Survey status changed",
		zap.Int64("survey_id", id),
		zap.String("status", string(status)),
	)
	return s.get(ctx, primary(s.db), id)
}

// Delete removes the survey with its questions, options, submissions and answers.
func (s *SurveyService) Delete(ctx context.Context, actor *model.User, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := s.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		submissionIDs := tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.SurveySubmission{}).
			Select("id").
			Where("survey_id = ?", survey.ID)
		if err := tx.Where("submission_id IN (?)", submissionIDs).Delete(&model.SurveyAnswer{}).Error; err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		if err := tx.Where("survey_id = ?", survey.ID).Delete(&model.SurveySubmission{}).Error; err != nil {
			return fmt.Errorf("failed to delete submissions: %w", err)
		}
		if err := deleteQuestionTree(tx, survey.ID); err != nil {
			return err
		}
		if err := tx.Delete(survey).Error; err != nil {
			return fmt.Errorf("failed to delete survey: %w", err)
		}

		logger.Logger.Info("Survey deleted", zap.Int64("survey_id", survey.ID))
		return nil
	})
}

func (s *SurveyService) List(ctx context.Context, actor *model.User, q dto.PageQuery) (*dto.Page[model.Survey], error) {
	q.Normalize()
	scope := visibleSurveys(actor)

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Survey{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count surveys: %w", err)
	}

	var rows []model.Survey
	err := s.db.WithContext(ctx).
		Scopes(scope, withQuestions, paginate(q)).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return &dto.Page[model.Survey]{Items: rows, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *SurveyService) Get(ctx context.Context, actor *model.User, id int64) (*model.Survey, error) {
	var survey model.Survey
	err := s.db.WithContext(ctx).
		Scopes(visibleSurveys(actor), withQuestions).
		First(&survey, id).Error
	if err != nil {
		return nil, notFound(err, pkgerrors.SurveyNotFound, "survey")
	}
	return &survey, nil
}

// Submit records one response per user. Every answer must name a question of this
// survey at most once with one of that question's options, and every required question
// must be answered. Nothing is written when any check fails.
func (s *SurveyService) Submit(ctx context.Context, actor *model.User, id int64, req dto.SubmitSurveyRequest) (*dto.SubmitSurveyResponse, error) {
	var sub model.SurveySubmission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if survey.Status != model.SurveyStatusPublished {
			return pkgerrors.SurveyNotPublished
		}

		var exists int64
		err = tx.Model(&model.SurveySubmission{}).
			Where("survey_id = ? AND user_id = ?", survey.ID, actor.ID).
			Count(&exists).Error
		if err != nil {
			return fmt.Errorf("failed to check submission: %w", err)
		}
		if exists > 0 {
			return pkgerrors.SurveyAlreadySubmitted
		}

		answers, err := checkAnswers(survey, req.Answers)
		if err != nil {
			return err
		}

		sub = model.SurveySubmission{SurveyID: survey.ID, UserID: actor.ID}
		if err := tx.Create(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkgerrors.SurveyAlreadySubmitted
			}
			return fmt.Errorf("failed to create submission: %w", err)
		}
		if len(answers) == 0 {
			return nil
		}
		for i := range answers {
			answers[i].SubmissionID = sub.ID
		}
		if err := tx.Create(&answers).Error; err != nil {
			return fmt.Errorf("failed to create answers: %w", err)
		}
		return nil
	})
	if err != nil {
		var def pkgerrors.Definition
		if errors.As(err, &def) {
			metrics.RecordSurveySubmission(ctx, false, def.Code)
		}
		return nil, err
	}

	metrics.RecordSurveySubmission(ctx, true, "")
	logger.Logger.Info("Survey submitted",
		zap.Int64("survey_id", id),
		zap.Int64("submission_id", sub.ID),
		zap.Int64("user_id", actor.ID),
	)
	emit(ctx, s.events, model.EventSurveySubmitted, model.SurveySubmittedEvent{
		SurveyID:     id,
		SubmissionID: sub.ID,
		UserID:       actor.ID,
	})

	return &dto.SubmitSurveyResponse{ID: sub.ID, CreatedAt: sub.CreatedAt}, nil
}

func checkAnswers(survey *model.Survey, inputs []dto.SurveyAnswerInput) ([]model.SurveyAnswer, error) {
	questions := make(map[int64]*model.SurveyQuestion, len(survey.Questions))
	for i := range survey.Questions {
		questions[survey.Questions[i].ID] = &survey.Questions[i]
	}

	answered := make(map[int64]struct{}, len(inputs))
	answers := make([]model.SurveyAnswer, 0, len(inputs))
	for _, in := range inputs {
		q, ok := questions[in.Question]
		if !ok {
			return nil, pkgerrors.SurveyQuestionForeign
		}
		if _, dup := answered[q.ID]; dup {
			return nil, pkgerrors.SurveyQuestionDuplicated
		}
		if !hasOption(q, in.SelectedOption) {
			return nil, pkgerrors.SurveyOptionMismatch
		}
		answered[q.ID] = struct{}{}
		answers = append(answers, model.SurveyAnswer{QuestionID: q.ID, SelectedOptionID: in.SelectedOption})
	}

	for _, q := range survey.Questions {
		if _, ok := answered[q.ID]; q.Required && !ok {
			return nil, pkgerrors.SurveyRequiredUnanswered
		}
	}
	return answers, nil
}

func hasOption(q *model.SurveyQuestion, optionID int64) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// Results aggregates answer counts per option. Only the owning silo can read them.
func (s *SurveyService) Results(ctx context.Context, actor *model.User, id int64) (*dto.SurveyResults, error) {
	survey, err := s.get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	role := actor.EffectiveRole()
	if !role.IsSurveyAuthor() || role != survey.CreatorRole {
		return nil, pkgerrors.Forbidden
	}

	var total int64
	err = s.db.WithContext(ctx).Model(&model.SurveySubmission{}).
		Where("survey_id = ?", survey.ID).
		Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	var counts []struct {
		SelectedOptionID int64
		N                int64
	}
	err = s.db.WithContext(ctx).Model(&model.SurveyAnswer{}).
		Select("survey_answers.selected_option_id, COUNT(*) AS n").
		Joins("JOIN survey_submissions ON survey_submissions.id = survey_answers.submission_id").
		Where("survey_submissions.survey_id = ?", survey.ID).
		Group("survey_answers.selected_option_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}
	byOption := make(map[int64]int64, len(counts))
	for _, c := range counts {
		byOption[c.SelectedOptionID] = c.N
	}

	out := &dto.SurveyResults{
		ID:               survey.ID,
		Title:            survey.Title,
		Description:      survey.Description,
		Status:           string(survey.Status),
		CreatorRole:      string(survey.CreatorRole),
		TotalSubmissions: total,
		Questions:        make([]dto.SurveyQuestionResult, 0, len(survey.Questions)),
	}
	for _, q := range survey.Questions {
		qr := dto.SurveyQuestionResult{
			ID:       q.ID,
			Text:     q.Text,
			Required: q.Required,
			Options:  make([]dto.SurveyOptionResult, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			n := byOption[o.ID]
			qr.Options = append(qr.Options, dto.SurveyOptionResult{
				ID:         o.ID,
				Text:       o.Text,
				Count:      n,
				Percentage: percentage(n, total),
			})
		}
		out.Questions = append(out.Questions, qr)
	}
	return out, nil
}

func percentage(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return model.Round2(float64(n) * 100 / float64(total))
}

// MySubmission returns the actor's response to a survey. Authors never answer, so they
// always get exists=false.
func (s *SurveyService) MySubmission(ctx context.Context, actor *model.User, id int64) (*dto.MySubmissionResponse, error) {
	if actor.EffectiveRole().IsSurveyAuthor() {
		return &dto.MySubmissionResponse{Exists: false}, nil
	}

	var sub model.SurveySubmission
	err := s.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("survey_id = ? AND user_id = ?", id, actor.ID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.MySubmissionResponse{Exists: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}

	data := &dto.SubmissionData{
		ID:        sub.ID,
		Survey:    sub.SurveyID,
		User:      sub.UserID,
		CreatedAt: sub.CreatedAt,
		Answers:   make([]dto.SubmissionAnswer, 0, len(sub.Answers)),
	}
	for _, a := range sub.Answers {
		data.Answers = append(data.Answers, dto.SubmissionAnswer{Question: a.QuestionID, SelectedOption: a.SelectedOptionID})
	}
	return &dto.MySubmissionResponse{Exists: true, Submission: data}, nil
}
