package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"StaffHub/internal/model/dto"
)

// newLaggingReplicaDB registers a read replica that never receives the primary's writes,
// so any read routed to it observes the state from before the test started.
func newLaggingReplicaDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := newTestDB(t)
	replica := t.Name() + "_replica"
	newNamedTestDB(t, replica)

	err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{sqlite.Open(memoryDSN(replica))},
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		t.Fatalf("register replica: %v", err)
	}
	return db
}

func TestWritesReturnPrimaryStateWithLaggingReplica(t *testing.T) {
	db := newLaggingReplicaDB(t)
	ctx := context.Background()
	mgr := createUser(t, db, "mgr", withRole("manager"))
	hr := createUser(t, db, "hr", withRole("hr"))
	emp := createUser(t, db, "emp")

	t.Run("task create and update", func(t *testing.T) {
		svc := NewTaskService(db, &fakePublisher{}, time.Now)
		task, err := svc.Create(ctx, mgr, dto.CreateTaskRequest{Title: "onboard", PhaseTexts: []string{"a"}, RecipientUserIDs: []int64{emp.ID}})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		updated, err := svc.Update(ctx, mgr, task.ID, dto.UpdateTaskRequest{Title: strPtr("onboard v2")})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Title != "onboard v2" || len(updated.Phases) != 1 {
			t.Errorf("updated = %+v", updated)
		}
		closed, err := svc.Close(ctx, mgr, task.ID, "success")
		if err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if closed.Status != "success" {
			t.Errorf("status = %s, want success", closed.Status)
		}
	})

	t.Run("survey create and status change", func(t *testing.T) {
		svc := NewSurveyService(db, &fakePublisher{}, time.Now)
		survey, err := svc.Create(ctx, mgr, dto.CreateSurveyRequest{
			Title: "pulse",
			Questions: []dto.SurveyQuestionInput{
				{Text: "ok?", Options: []dto.SurveyOptionInput{{Text: "yes"}, {Text: "no"}}},
			},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if len(survey.Questions) != 1 || len(survey.Questions[0].Options) != 2 {
			t.Errorf("survey tree = %+v", survey.Questions)
		}
		published, err := svc.ChangeStatus(ctx, mgr, survey.ID, dto.ChangeSurveyStatusRequest{Status: "published"})
		if err != nil {
			t.Fatalf("ChangeStatus() error = %v", err)
		}
		if published.Status != "published" || published.PublishedAt == nil {
			t.Errorf("published = %+v", published)
		}
	})

	t.Run("honor board after toggle and adjust", func(t *testing.T) {
		svc := NewPointsService(db, nil, &fakePublisher{}, time.Now, time.UTC)
		board, err := svc.Toggle(ctx, hr, dto.ToggleHonorBoardRequest{Scope: "year", Enabled: boolPtr(false)})
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if board.EnabledYear || !board.EnabledMonth {
			t.Fatalf("board = %+v, want year disabled", board)
		}

		if _, err := svc.Adjust(ctx, hr, dto.AdjustPointsRequest{UserID: emp.ID, Delta: intPtr(5)}); err != nil {
			t.Fatal(err)
		}
		board, err = svc.HonorBoard(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(board.Month) != 1 || board.Month[0].ID != emp.ID || board.Month[0].Points != 5 {
			t.Errorf("month winners = %+v, want emp with 5", board.Month)
		}
	})
}
