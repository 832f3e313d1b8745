package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
)

type countingBoardCache struct {
	nopBoardCache
	invalidations int
}

func (c *countingBoardCache) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

func TestPointsAdjust(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	emp := createUser(t, db, "emp")
	events := &fakePublisher{}
	board := &countingBoardCache{}
	svc := NewPointsService(db, board, events, time.Now, time.UTC)
	ctx := context.Background()

	got, err := svc.Adjust(ctx, hr, dto.AdjustPointsRequest{UserID: emp.ID, Delta: intPtr(5), Reason: "helped"})
	if err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}
	if got.Delta != 5 || got.User.ID != emp.ID || got.CreatedBy == nil || got.CreatedBy.ID != hr.ID {
		t.Errorf("Adjust() = %+v", got)
	}
	if got.User.Points != 5 {
		t.Errorf("user points = %d, want 5", got.User.Points)
	}

	if _, err := svc.Adjust(ctx, hr, dto.AdjustPointsRequest{UserID: emp.ID, Delta: intPtr(-2)}); err != nil {
		t.Fatalf("Adjust() negative error = %v", err)
	}

	var reloaded model.User
	db.First(&reloaded, emp.ID)
	if reloaded.Points != 3 {
		t.Errorf("points = %d, want 3", reloaded.Points)
	}
	if n := count(t, db, &model.EmployeePointLog{}, "user_id = ?", emp.ID); n != 2 {
		t.Errorf("ledger rows = %d, want 2", n)
	}
	if board.invalidations != 2 {
		t.Errorf("cache invalidations = %d, want 2", board.invalidations)
	}
	if types := events.types(); len(types) != 2 || types[0] != model.EventPointsAdjusted {
		t.Errorf("events = %v", types)
	}
}

func TestPointsAdjustRejects(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	mgr := createUser(t, db, "mgr", withRole("manager"))
	emp := createUser(t, db, "emp")
	svc := NewPointsService(db, nil, &fakePublisher{}, time.Now, time.UTC)

	tests := []struct {
		name  string
		actor *model.User
		req   dto.AdjustPointsRequest
		want  error
	}{
		{name: "manager", actor: mgr, req: dto.AdjustPointsRequest{UserID: emp.ID, Delta: intPtr(1)}, want: pkgerrors.Forbidden},
		{name: "zero delta", actor: hr, req: dto.AdjustPointsRequest{UserID: emp.ID, Delta: intPtr(0)}, want: pkgerrors.PointsDeltaInvalid},
		{name: "missing delta", actor: hr, req: dto.AdjustPointsRequest{UserID: emp.ID}, want: pkgerrors.PointsDeltaInvalid},
		{name: "unknown user", actor: hr, req: dto.AdjustPointsRequest{UserID: 9999, Delta: intPtr(1)}, want: pkgerrors.UserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Adjust(context.Background(), tt.actor, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Adjust() error = %v, want %v", err, tt.want)
			}
		})
	}
	if n := count(t, db, &model.EmployeePointLog{}, ""); n != 0 {
		t.Errorf("ledger rows = %d, want 0", n)
	}
}

func TestPointsAdjustConcurrentKeepsLedgerInSync(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	emp := createUser(t, db, "emp")
	svc := NewPointsService(db, nil, &fakePublisher{}, time.Now, time.UTC)

	// SQLite runs these one at a time on its single connection; the row lock itself is
	// asserted against the postgres dialect in TestLockUserTakesRowLock.
	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		delta := 1
		if i%4 == 0 {
			delta = -2
		}
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			_, err := svc.Adjust(context.Background(), hr, dto.AdjustPointsRequest{UserID: emp.ID, Delta: intPtr(d)})
			errs <- err
		}(delta)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Adjust() error = %v", err)
		}
	}

	if n := count(t, db, &model.EmployeePointLog{}, "user_id = ?", emp.ID); n != workers {
		t.Fatalf("ledger rows = %d, want %d", n, workers)
	}
	var sum int
	db.Model(&model.EmployeePointLog{}).Select("COALESCE(SUM(delta), 0)").Where("user_id = ?", emp.ID).Scan(&sum)
	if want := 15*1 + 5*-2; sum != want {
		t.Errorf("ledger sum = %d, want %d", sum, want)
	}
	var user model.User
	db.First(&user, emp.ID)
	if user.Points != sum {
		t.Fatalf("points = %d, ledger sum = %d", user.Points, sum)
	}
}

func TestLockUserTakesRowLock(t *testing.T) {
	pg, err := gorm.Open(postgres.Open("host=localhost user=staffhub dbname=staffhub sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open postgres dialect: %v", err)
	}

	sql := pg.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var u model.User
		return tx.Scopes(forUpdate).First(&u, 7)
	})
	if !strings.HasSuffix(sql, "FOR UPDATE") {
		t.Errorf("lock query = %q, want a trailing FOR UPDATE", sql)
	}
}

func TestPointsReconcile(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	emp := createUser(t, db, "emp")
	other := createUser(t, db, "other")
	svc := NewPointsService(db, nil, &fakePublisher{}, time.Now, time.UTC)
	ctx := context.Background()

	if _, err := svc.Adjust(ctx, hr, dto.AdjustPointsRequest{UserID: emp.ID, Delta: intPtr(7)}); err != nil {
		t.Fatal(err)
	}
	db.Model(&model.User{}).Where("id = ?", emp.ID).Update("points", 100)
	db.Model(&model.User{}).Where("id = ?", other.ID).Update("points", 4)

	got, err := svc.Reconcile(ctx, hr, emp.ID)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got.Before != 100 || got.After != 7 {
		t.Errorf("Reconcile() = %+v", got)
	}

	if _, err := svc.Reconcile(ctx, emp, emp.ID); !errors.Is(err, pkgerrors.Forbidden) {
		t.Errorf("Reconcile() by employee error = %v", err)
	}

	fixed, err := svc.ReconcileAll(ctx)
	if err != nil {
		t.Fatalf("ReconcileAll() error = %v", err)
	}
	if len(fixed) != 1 || fixed[0].UserID != other.ID || fixed[0].After != 0 {
		t.Errorf("ReconcileAll() = %+v", fixed)
	}
}

func TestPointsLogsScope(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	a := createUser(t, db, "a")
	b := createUser(t, db, "b")
	svc := NewPointsService(db, nil, &fakePublisher{}, time.Now, time.UTC)
	ctx := context.Background()

	for _, u := range []*model.User{a, a, b} {
		if _, err := svc.Adjust(ctx, hr, dto.AdjustPointsRequest{UserID: u.ID, Delta: intPtr(1)}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := svc.Logs(ctx, hr, 0, dto.PageQuery{})
	if err != nil || all.Total != 3 {
		t.Fatalf("HR Logs() = %+v, %v", all, err)
	}
	mine, err := svc.Logs(ctx, a, 0, dto.PageQuery{})
	if err != nil || mine.Total != 2 {
		t.Fatalf("own Logs() = %+v, %v", mine, err)
	}
	if _, err := svc.Logs(ctx, a, b.ID, dto.PageQuery{}); !errors.Is(err, pkgerrors.Forbidden) {
		t.Errorf("foreign Logs() error = %v", err)
	}
}

func addLog(t *testing.T, db *gorm.DB, userID int64, delta int, at time.Time) {
	t.Helper()
	entry := model.EmployeePointLog{UserID: userID, Delta: delta, BaseModel: model.BaseModel{CreatedAt: at}}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("create log: %v", err)
	}
}

func TestHonorBoard(t *testing.T) {
	db := newTestDB(t)
	hr := createUser(t, db, "hr", withRole("hr"))
	zed := createUser(t, db, "zed", withName("Zed", "Z"))
	amy := createUser(t, db, "amy", withName("Amy", "A"))
	old := createUser(t, db, "old")

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := NewPointsService(db, nil, &fakePublisher{}, fixedClock(now), time.UTC)
	ctx := context.Background()

	addLog(t, db, zed.ID, 5, now.Add(-24*time.Hour))
	addLog(t, db, amy.ID, 3, now.Add(-48*time.Hour))
	addLog(t, db, amy.ID, 2, now.Add(-1*time.Hour))
	addLog(t, db, old.ID, 50, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	addLog(t, db, zed.ID, 100, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))

	board, err := svc.HonorBoard(ctx)
	if err != nil {
		t.Fatalf("HonorBoard() error = %v", err)
	}
	if !board.Enabled || !board.EnabledMonth || !board.EnabledYear {
		t.Errorf("flags = %+v", board)
	}
	if len(board.Month) != 2 || board.Month[0].ID != amy.ID || board.Month[1].ID != zed.ID {
		t.Errorf("month winners = %+v, want amy then zed", board.Month)
	}
	if board.Month[0].FullName != "Amy A" {
		t.Errorf("full name = %q", board.Month[0].FullName)
	}
	if len(board.Year) != 1 || board.Year[0].ID != old.ID {
		t.Errorf("year winners = %+v, want old", board.Year)
	}

	toggled, err := svc.Toggle(ctx, hr, dto.ToggleHonorBoardRequest{Scope: "month", Enabled: boolPtr(false)})
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if toggled.EnabledMonth || !toggled.EnabledYear || !toggled.Enabled {
		t.Errorf("after month off = %+v", toggled)
	}
	if len(toggled.Month) != 0 || toggled.Month == nil {
		t.Errorf("disabled month = %#v, want empty list", toggled.Month)
	}

	toggled, err = svc.Toggle(ctx, hr, dto.ToggleHonorBoardRequest{Enabled: boolPtr(false)})
	if err != nil {
		t.Fatal(err)
	}
	if toggled.Enabled || len(toggled.Year) != 0 {
		t.Errorf("after both off = %+v", toggled)
	}

	if _, err := svc.Toggle(ctx, hr, dto.ToggleHonorBoardRequest{Scope: "week"}); !errors.Is(err, pkgerrors.HonorScopeInvalid) {
		t.Errorf("Toggle() bad scope error = %v", err)
	}
	if _, err := svc.Toggle(ctx, zed, dto.ToggleHonorBoardRequest{}); !errors.Is(err, pkgerrors.Forbidden) {
		t.Errorf("Toggle() by employee error = %v", err)
	}
}

func TestHonorBoardEmptyWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db, nil, &fakePublisher{}, time.Now, time.UTC)

	board, err := svc.HonorBoard(context.Background())
	if err != nil {
		t.Fatalf("HonorBoard() error = %v", err)
	}
	if board.Month == nil || len(board.Month) != 0 || len(board.Year) != 0 {
		t.Errorf("HonorBoard() = %+v, want empty lists", board)
	}
}
