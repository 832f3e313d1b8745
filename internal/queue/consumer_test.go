package queue

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"StaffHub/internal/model"
)

type notifyCall struct {
	ids   []int64
	title string
}

type fakeNotifier struct {
	calls []notifyCall
	roles map[model.Role][]int64
	err   error
}

func (f *fakeNotifier) NotifyUsers(_ context.Context, ids []int64, title, _ string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.calls = append(f.calls, notifyCall{ids: ids, title: title})
	return len(ids), nil
}

func (f *fakeNotifier) UserIDsWithRole(_ context.Context, role model.Role) ([]int64, error) {
	return f.roles[role], nil
}

type fakeDeduper struct {
	seen     map[string]string
	unmarked []string
}

func (f *fakeDeduper) TryMark(_ context.Context, id string) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]string{}
	}
	if _, ok := f.seen[id]; ok {
		return false, nil
	}
	f.seen[id] = "processing"
	return true, nil
}

func (f *fakeDeduper) Unmark(_ context.Context, id string) error {
	delete(f.seen, id)
	f.unmarked = append(f.unmarked, id)
	return nil
}

func (f *fakeDeduper) MarkDone(_ context.Context, id string) error {
	f.seen[id] = "completed"
	return nil
}

func encode(t *testing.T, id string, typ model.EventType, payload interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	body, err := json.Marshal(model.EventMessage{MessageID: id, Type: typ, Payload: raw})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestDispatcherRoutesEvents(t *testing.T) {
	roles := map[model.Role][]int64{
		model.RoleHR:      {10, 11},
		model.RoleManager: {20},
	}

	tests := []struct {
		name    string
		typ     model.EventType
		payload interface{}
		want    []notifyCall
	}{
		{
			name:    "complaint to hr",
			typ:     model.EventComplaintSubmitted,
			payload: model.ComplaintSubmittedEvent{ComplaintID: 1, RecipientType: model.ComplaintRecipientHR, Title: "noise"},
			want:    []notifyCall{{ids: []int64{10, 11}, title: "New complaint"}},
		},
		{
			name:    "complaint to manager",
			typ:     model.EventComplaintSubmitted,
			payload: model.ComplaintSubmittedEvent{ComplaintID: 2, RecipientType: model.ComplaintRecipientManager},
			want:    []notifyCall{{ids: []int64{20}, title: "New complaint"}},
		},
		{
			name:    "complaint reply goes to sender",
			typ:     model.EventComplaintReplied,
			payload: model.ComplaintRepliedEvent{ComplaintID: 1, SenderID: 7},
			want:    []notifyCall{{ids: []int64{7}, title: "Your complaint was answered"}},
		},
		{
			name:    "task with hr team",
			typ:     model.EventTaskAssigned,
			payload: model.TaskAssignedEvent{TaskID: 3, UserIDs: []int64{5}, HRTeam: true},
			want:    []notifyCall{{ids: []int64{5, 10, 11}, title: "New task assigned"}},
		},
		{
			name:    "points adjusted",
			typ:     model.EventPointsAdjusted,
			payload: model.PointsAdjustedEvent{UserID: 9, Delta: -3, Reason: "late"},
			want:    []notifyCall{{ids: []int64{9}, title: "Points updated"}},
		},
		{
			name:    "survey submitted is silent",
			typ:     model.EventSurveySubmitted,
			payload: model.SurveySubmittedEvent{SurveyID: 1, UserID: 2},
		},
		{
			name:    "unknown type is dropped",
			typ:     model.EventType("something.else"),
			payload: struct{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{roles: roles}
			d := NewDispatcher(n, &fakeDeduper{})
			if err := d.Handle(context.Background(), encode(t, "m1", tt.typ, tt.payload)); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if len(tt.want) == 0 && len(n.calls) == 0 {
				return
			}
			if !reflect.DeepEqual(n.calls, tt.want) {
				t.Errorf("calls = %+v, want %+v", n.calls, tt.want)
			}
		})
	}
}

func TestDispatcherDeduplicates(t *testing.T) {
	n := &fakeNotifier{}
	dd := &fakeDeduper{}
	d := NewDispatcher(n, dd)
	body := encode(t, "dup", model.EventComplaintReplied, model.ComplaintRepliedEvent{SenderID: 1})

	for i := 0; i < 2; i++ {
		if err := d.Handle(context.Background(), body); err != nil {
			t.Fatalf("Handle() #%d error = %v", i, err)
		}
	}
	if len(n.calls) != 1 {
		t.Errorf("notified %d times, want 1", len(n.calls))
	}
	if dd.seen["dup"] != "completed" {
		t.Errorf("mark = %q, want completed", dd.seen["dup"])
	}
}

func TestDispatcherUnmarksOnFailure(t *testing.T) {
	n := &fakeNotifier{err: errors.New("db down")}
	dd := &fakeDeduper{}
	d := NewDispatcher(n, dd)
	body := encode(t, "m2", model.EventPointsAdjusted, model.PointsAdjustedEvent{UserID: 1, Delta: 1})

	if err := d.Handle(context.Background(), body); err == nil {
		t.Fatal("Handle() error = nil, want failure")
	}
	if len(dd.unmarked) != 1 || dd.unmarked[0] != "m2" {
		t.Errorf("unmarked = %v", dd.unmarked)
	}
	if err := d.Handle(context.Background(), []byte("{")); err == nil {
		t.Error("Handle() on malformed body error = nil")
	}
}
