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

func TestComplaintSeenFlags(t *testing.T) {
	db := newTestDB(t)
	emp := createUser(t, db, "emp")
	hr := createUser(t, db, "hr", withRole("hr"))
	mgr := createUser(t, db, "mgr", withRole("manager"))
	events := &fakePublisher{}
	svc := NewComplaintService(db, events, fixedClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	ctx := context.Background()

	c, err := svc.Submit(ctx, emp, dto.SubmitComplaintRequest{RecipientType: "hr", Title: "AC", Message: "too cold"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !c.IsSeenByEmployee || c.IsSeenByRecipient || c.IsResponded {
		t.Fatalf("after submit = %+v", c)
	}

	unread, _ := svc.HasUnread(ctx, hr)
	if !unread.HasNew {
		t.Error("HR should have unread complaints")
	}
	unread, _ = svc.HasUnread(ctx, mgr)
	if unread.HasNew {
		t.Error("manager inbox should be empty")
	}

	if _, err := svc.Reply(ctx, mgr, c.ID, dto.ReplyComplaintRequest{Response: "ok"}); !errors.Is(err, pkgerrors.ComplaintRecipientMismatch) {
		t.Fatalf("Reply() by manager error = %v", err)
	}
	if _, err := svc.Reply(ctx, hr, c.ID, dto.ReplyComplaintRequest{Response: "   "}); !errors.Is(err, pkgerrors.ComplaintResponseRequired) {
		t.Fatalf("Reply() blank error = %v", err)
	}

	replied, err := svc.Reply(ctx, hr, c.ID, dto.ReplyComplaintRequest{Response: " fixed "})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !replied.IsResponded || replied.IsSeenByEmployee || !replied.IsSeenByRecipient {
		t.Errorf("after reply = %+v", replied)
	}
	if replied.Response == nil || *replied.Response != "fixed" || replied.RespondedByID == nil || *replied.RespondedByID != hr.ID {
		t.Errorf("reply fields = %+v", replied)
	}

	var stored model.Complaint
	db.First(&stored, c.ID)
	if stored.IsSeenByEmployee || !stored.IsSeenByRecipient || stored.RespondedAt == nil {
		t.Errorf("stored = %+v", stored)
	}

	unread, _ = svc.HasUnread(ctx, emp)
	if !unread.HasNew {
		t.Error("sender should see the reply as new")
	}
	seen, err := svc.MarkSeen(ctx, emp, c.ID)
	if err != nil || !seen.IsSeenByEmployee {
		t.Fatalf("MarkSeen() = %+v, %v", seen, err)
	}
	unread, _ = svc.HasUnread(ctx, emp)
	if unread.HasNew {
		t.Error("sender has no unread after mark-seen")
	}

	if _, err := svc.MarkSeen(ctx, mgr, c.ID); !errors.Is(err, pkgerrors.Forbidden) {
		t.Errorf("MarkSeen() by stranger error = %v", err)
	}

	want := []model.EventType{model.EventComplaintSubmitted, model.EventComplaintReplied}
	if got := events.types(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestComplaintMarkAllSeen(t *testing.T) {
	db := newTestDB(t)
	emp := createUser(t, db, "emp")
	hr := createUser(t, db, "hr", withRole("hr"))
	svc := NewComplaintService(db, &fakePublisher{}, time.Now)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		c, err := svc.Submit(ctx, emp, dto.SubmitComplaintRequest{RecipientType: "hr", Title: "t", Message: "m"})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, c.ID)
	}
	if _, err := svc.Submit(ctx, emp, dto.SubmitComplaintRequest{RecipientType: "manager", Title: "t", Message: "m"}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.MarkAllSeen(ctx, hr)
	if err != nil || got.Updated != 3 {
		t.Fatalf("MarkAllSeen() by HR = %+v, %v", got, err)
	}
	if n := count(t, db, &model.Complaint{}, "recipient_type = ? AND is_seen_by_recipient = ?", "manager", false); n != 1 {
		t.Errorf("manager complaints touched, unseen = %d", n)
	}

	for _, id := range ids[:2] {
		if _, err := svc.Reply(ctx, hr, id, dto.ReplyComplaintRequest{Response: "r"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err = svc.MarkAllSeen(ctx, emp)
	if err != nil || got.Updated != 2 {
		t.Fatalf("MarkAllSeen() by sender = %+v, %v", got, err)
	}
}

func TestComplaintVisibility(t *testing.T) {
	db := newTestDB(t)
	emp := createUser(t, db, "emp")
	other := createUser(t, db, "other")
	hr := createUser(t, db, "hr", withRole("hr"))
	mgr := createUser(t, db, "mgr", withRole("branch_manager"))
	gm := createUser(t, db, "gm", withRole("general_manager"))
	svc := NewComplaintService(db, &fakePublisher{}, time.Now)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, emp, dto.SubmitComplaintRequest{RecipientType: "finance", Title: "t", Message: "m"}); !errors.Is(err, pkgerrors.ComplaintRecipientInvalid) {
		t.Fatalf("Submit() bad recipient error = %v", err)
	}
	c, err := svc.Submit(ctx, emp, dto.SubmitComplaintRequest{RecipientType: "manager", Title: "t", Message: "m"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(ctx, mgr, c.ID); err != nil {
		t.Errorf("Get() by manager error = %v", err)
	}
	if _, err := svc.Get(ctx, other, c.ID); !errors.Is(err, pkgerrors.ComplaintNotFound) {
		t.Errorf("Get() by other error = %v", err)
	}
	if _, err := svc.Get(ctx, hr, c.ID); !errors.Is(err, pkgerrors.ComplaintNotFound) {
		t.Errorf("Get() by HR error = %v", err)
	}

	inbox, err := svc.Inbox(ctx, mgr, dto.PageQuery{})
	if err != nil || inbox.Total != 1 || inbox.Items[0].SenderUsername != "emp" {
		t.Errorf("Inbox() = %+v, %v", inbox, err)
	}
	if _, err := svc.Inbox(ctx, gm, dto.PageQuery{}); !errors.Is(err, pkgerrors.Forbidden) {
		t.Errorf("Inbox() by general manager error = %v", err)
	}
	mine, err := svc.Mine(ctx, other, dto.PageQuery{})
	if err != nil || mine.Total != 0 {
		t.Errorf("Mine() = %+v, %v", mine, err)
	}
}
