package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
)

func twoQuestionSurvey(status string) dto.CreateSurveyRequest {
	return dto.CreateSurveyRequest{
		Title:  "Canteen",
		Status: status,
		Questions: []dto.SurveyQuestionInput{
			{Text: "Food?", Options: []dto.SurveyOptionInput{{Text: "Good"}, {Text: "Bad"}}},
			{Text: "Coffee?", Required: boolPtr(false), Options: []dto.SurveyOptionInput{{Text: "Yes"}, {Text: "No"}}},
		},
	}
}

func TestSurveyCreateDefaults(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("human_resources"))
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := NewSurveyService(db, &fakePublisher{}, fixedClock(now))
	ctx := context.Background()

	draft, err := svc.Create(ctx, hr, twoQuestionSurvey(""))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if draft.Status != model.SurveyStatusDraft || draft.PublishedAt != nil || draft.CreatorRole != model.RoleHR {
		t.Errorf("draft = %+v", draft)
	}
	if len(draft.Questions) != 2 {
		t.Fatalf("questions = %d", len(draft.Questions))
	}
	q0, q1 := draft.Questions[0], draft.Questions[1]
	if !q0.Required || q1.Required || q0.Order != 0 || q1.Order != 1 {
		t.Errorf("question defaults = %+v / %+v", q0, q1)
	}
	if q0.Options[0].Order != 0 || q0.Options[1].Order != 1 || q0.Options[0].Text != "Good" {
		t.Errorf("option defaults = %+v", q0.Options)
	}

	published, err := svc.Create(ctx, hr, twoQuestionSurvey("published"))
	if err != nil {
		t.Fatal(err)
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(now) {
		t.Errorf("published_at = %v", published.PublishedAt)
	}
}

func TestSurveyCreateRejects(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	emp := createUser(t, db, "emp")
	gm := createUser(t, db, "gm", withRole("general_manager"))
	svc := NewSurveyService(db, &fakePublisher{}, time.Now)
	ctx := context.Background()

	noOptions := dto.CreateSurveyRequest{Title: "x", Questions: []dto.SurveyQuestionInput{{Text: "q"}}}
	if _, err := svc.Create(ctx, hr, noOptions); !errors.Is(err, pkgerrors.SurveyQuestionNoOptions) {
		t.Errorf("Create() no options error = %v", err)
	}
	if _, err := svc.Create(ctx, hr, dto.CreateSurveyRequest{Title: "x", Status: "live"}); !errors.Is(err, pkgerrors.SurveyStatusInvalid) {
		t.Errorf("Create() bad status error = %v", err)
	}
	for _, u := range []*model.User{emp, gm} {
		if _, err := svc.Create(ctx, u, twoQuestionSurvey("")); !errors.Is(err, pkgerrors.Forbidden) {
			t.Errorf("Create() by %s error = %v", u.Username, err)
		}
	}
	if n := count(t, db, &model.Survey{}, ""); n != 0 {
		t.Errorf("surveys = %d, want 0", n)
	}
}

func TestSurveySubmitValidation(t *testing.T) {
	db := newTestDB(t)
	mgr := createUser(t, db, "mgr", withRole("manager"))
	emp := createUser(t, db, "emp")
	events := &fakePublisher{}
	svc := NewSurveyService(db, events, time.Now)
	ctx := context.Background()

	s, err := svc.Create(ctx, mgr, twoQuestionSurvey("published"))
	if err != nil {
		t.Fatal(err)
	}
	other, err := svc.Create(ctx, mgr, twoQuestionSurvey("published"))
	if err != nil {
		t.Fatal(err)
	}
	q0, q1 := s.Questions[0], s.Questions[1]
	foreignQ := other.Questions[0]

	tests := []struct {
		name    string
		answers []dto.SurveyAnswerInput
		want    error
	}{
		{
			name:    "question from another survey",
			answers: []dto.SurveyAnswerInput{{Question: foreignQ.ID, SelectedOption: foreignQ.Options[0].ID}},
			want:    pkgerrors.SurveyQuestionForeign,
		},
		{
			name: "question answered twice",
			answers: []dto.SurveyAnswerInput{
				{Question: q0.ID, SelectedOption: q0.Options[0].ID},
				{Question: q0.ID, SelectedOption: q0.Options[1].ID},
			},
			want: pkgerrors.SurveyQuestionDuplicated,
		},
		{
			name:    "option of another question",
			answers: []dto.SurveyAnswerInput{{Question: q0.ID, SelectedOption: q1.Options[0].ID}},
			want:    pkgerrors.SurveyOptionMismatch,
		},
		{
			name:    "required question missing",
			answers: []dto.SurveyAnswerInput{{Question: q1.ID, SelectedOption: q1.Options[0].ID}},
			want:    pkgerrors.SurveyRequiredUnanswered,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, emp, s.ID, dto.SubmitSurveyRequest{Answers: tt.answers})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.want)
			}
		})
	}
	if n := count(t, db, &model.SurveySubmission{}, ""); n != 0 {
		t.Fatalf("rejected submissions wrote %d rows", n)
	}

	ok := dto.SubmitSurveyRequest{Answers: []dto.SurveyAnswerInput{{Question: q0.ID, SelectedOption: q0.Options[1].ID}}}
	got, err := svc.Submit(ctx, emp, s.ID, ok)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.ID == 0 || got.CreatedAt.IsZero() {
		t.Errorf("Submit() = %+v", got)
	}
	if _, err := svc.Submit(ctx, emp, s.ID, ok); !errors.Is(err, pkgerrors.SurveyAlreadySubmitted) {
		t.Errorf("second Submit() error = %v", err)
	}
	if types := events.types(); len(types) != 1 || types[0] != model.EventSurveySubmitted {
		t.Errorf("events = %v", types)
	}

	mine, err := svc.MySubmission(ctx, emp, s.ID)
	if err != nil || !mine.Exists || len(mine.Submission.Answers) != 1 || mine.Submission.Answers[0].SelectedOption != q0.Options[1].ID {
		t.Errorf("MySubmission() = %+v, %v", mine, err)
	}
	authorView, _ := svc.MySubmission(ctx, mgr, s.ID)
	if authorView.Exists {
		t.Error("authors never have a submission")
	}
}

func TestSurveySubmitRequiresPublished(t *testing.T) {
	db := newTestDB(t)
	mgr := createUser(t, db, "mgr", withRole("manager"))
	emp := createUser(t, db, "emp")
	svc := NewSurveyService(db, &fakePublisher{}, time.Now)
	ctx := context.Background()

	s, err := svc.Create(ctx, mgr, twoQuestionSurvey("draft"))
	if err != nil {
		t.Fatal(err)
	}
	q := s.Questions[0]
	req := dto.SubmitSurveyRequest{Answers: []dto.SurveyAnswerInput{{Question: q.ID, SelectedOption: q.Options[0].ID}}}
	if _, err := svc.Submit(ctx, emp, s.ID, req); !errors.Is(err, pkgerrors.SurveyNotPublished) {
		t.Fatalf("Submit() draft error = %v", err)
	}
	if _, err := svc.Get(ctx, emp, s.ID); !errors.Is(err, pkgerrors.SurveyNotFound) {
		t.Errorf("Get() draft by employee error = %v", err)
	}
}

func TestSurveyResults(t *testing.T) {
	db := newTestDB(t)
	mgr := createUser(t, db, "mgr", withRole("manager"))
	hr := createUser(t, db, "hr", withRole("hr"))
	svc := NewSurveyService(db, &fakePublisher{}, time.Now)
	ctx := context.Background()

	s, err := svc.Create(ctx, mgr, twoQuestionSurvey("published"))
	if err != nil {
		t.Fatal(err)
	}
	q0 := s.Questions[0]
	picks := []int{0, 0, 1}
	for i, p := range picks {
		u := createUser(t, db, "emp"+string(rune('a'+i)))
		req := dto.SubmitSurveyRequest{Answers: []dto.SurveyAnswerInput{{Question: q0.ID, SelectedOption: q0.Options[p].ID}}}
		if _, err := svc.Submit(ctx, u, s.ID, req); err != nil {
			t.Fatal(err)
		}
	}

	res, err := svc.Results(ctx, mgr, s.ID)
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if res.TotalSubmissions != 3 || res.CreatorRole != "manager" {
		t.Errorf("Results() = %+v", res)
	}
	opts := res.Questions[0].Options
	if opts[0].Count != 2 || opts[0].Percentage != 66.67 || opts[1].Count != 1 || opts[1].Percentage != 33.33 {
		t.Errorf("option results = %+v", opts)
	}
	coffee := res.Questions[1].Options
	if coffee[0].Count != 0 || coffee[0].Percentage != 0 {
		t.Errorf("unanswered question = %+v", coffee)
	}

	if _, err := svc.Results(ctx, hr, s.ID); !errors.Is(err, pkgerrors.Forbidden) {
		t.Errorf("Results() by other silo error = %v", err)
	}
}

func TestSurveyResultsEmpty(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	svc := NewSurveyService(db, &fakePublisher{}, time.Now)

	s, err := svc.Create(context.Background(), hr, twoQuestionSurvey("published"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := svc.Results(context.Background(), hr, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range res.Questions {
		for _, o := range q.Options {
			if o.Count != 0 || o.Percentage != 0 {
				t.Errorf("option %d = %+v", o.ID, o)
			}
		}
	}
}

func TestSurveyUpdateReplacesQuestions(t *testing.T) {
	db := newTestDB(t)
	mgr := createUser(t, db, "mgr", withRole("manager"))
	hr := createUser(t, db, "hr", withRole("hr"))
	emp := createUser(t, db, "emp")
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	svc := NewSurveyService(db, &fakePublisher{}, fixedClock(now))
	ctx := context.Background()

	s, err := svc.Create(ctx, mgr, twoQuestionSurvey("published"))
	if err != nil {
		t.Fatal(err)
	}
	q0 := s.Questions[0]
	req := dto.SubmitSurveyRequest{Answers: []dto.SurveyAnswerInput{{Question: q0.ID, SelectedOption: q0.Options[0].ID}}}
	if _, err := svc.Submit(ctx, emp, s.ID, req); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Update(ctx, hr, s.ID, dto.UpdateSurveyRequest{Title: strPtr("x")}); !errors.Is(err, pkgerrors.Forbidden) {
		t.Fatalf("Update() by other silo error = %v", err)
	}

	questions := []dto.SurveyQuestionInput{{Text: "New?", Options: []dto.SurveyOptionInput{{Text: "A", Order: intPtr(5)}}}}
	updated, err := svc.Update(ctx, mgr, s.ID, dto.UpdateSurveyRequest{Title: strPtr("Renamed"), Questions: &questions})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Renamed" || len(updated.Questions) != 1 || updated.Questions[0].Options[0].Order != 5 {
		t.Errorf("updated = %+v", updated)
	}
	if n := count(t, db, &model.SurveyQuestion{}, "survey_id = ?", s.ID); n != 1 {
		t.Errorf("questions = %d, want 1", n)
	}
	if n := count(t, db, &model.SurveyOption{}, "question_id IN ?", []int64{s.Questions[0].ID, s.Questions[1].ID}); n != 0 {
		t.Errorf("orphan options = %d", n)
	}
	if n := count(t, db, &model.SurveyAnswer{}, "question_id = ?", q0.ID); n != 0 {
		t.Errorf("orphan answers = %d", n)
	}

	bad := []dto.SurveyQuestionInput{{Text: "empty"}}
	if _, err := svc.Update(ctx, mgr, s.ID, dto.UpdateSurveyRequest{Questions: &bad}); !errors.Is(err, pkgerrors.SurveyQuestionNoOptions) {
		t.Errorf("Update() no options error = %v", err)
	}
}

func TestSurveyStatusAndDelete(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	emp := createUser(t, db, "emp")
	now := time.Date(2024, 4, 4, 4, 0, 0, 0, time.UTC)
	svc := NewSurveyService(db, &fakePublisher{}, fixedClock(now))
	ctx := context.Background()

	s, err := svc.Create(ctx, hr, twoQuestionSurvey(""))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ChangeStatus(ctx, hr, s.ID, dto.ChangeSurveyStatusRequest{Status: "open"}); !errors.Is(err, pkgerrors.SurveyStatusInvalid) {
		t.Errorf("ChangeStatus() invalid error = %v", err)
	}
	pub, err := svc.ChangeStatus(ctx, hr, s.ID, dto.ChangeSurveyStatusRequest{Status: "published"})
	if err != nil || pub.PublishedAt == nil || !pub.PublishedAt.Equal(now) {
		t.Fatalf("ChangeStatus() = %+v, %v", pub, err)
	}
	if _, err := svc.ChangeStatus(ctx, emp, s.ID, dto.ChangeSurveyStatusRequest{Status: "archived"}); !errors.Is(err, pkgerrors.Forbidden) {
		t.Errorf("ChangeStatus() by employee error = %v", err)
	}

	list, err := svc.List(ctx, emp, dto.PageQuery{})
	if err != nil || list.Total != 1 {
		t.Fatalf("List() by employee = %+v, %v", list, err)
	}

	q := pub.Questions[0]
	req := dto.SubmitSurveyRequest{Answers: []dto.SurveyAnswerInput{{Question: q.ID, SelectedOption: q.Options[0].ID}}}
	if _, err := svc.Submit(ctx, emp, s.ID, req); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, hr, s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	for _, m := range []interface{}{&model.Survey{}, &model.SurveyQuestion{}, &model.SurveyOption{}, &model.SurveySubmission{}, &model.SurveyAnswer{}} {
		if n := count(t, db, m, ""); n != 0 {
			t.Errorf("%T rows left = %d", m, n)
		}
	}
}
