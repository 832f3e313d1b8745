package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StaffHub/internal/model/dto"
)

type fakeReconciler struct {
	mu    sync.Mutex
	calls int
	out   []dto.ReconcileResponse
	err   error
	block chan struct{}
}

func (f *fakeReconciler) ReconcileAll(context.Context) ([]dto.ReconcileResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.out, f.err
}

type fakeLocker struct {
	held     bool
	err      error
	unlocked int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return !l.held, nil
}

func (l *fakeLocker) Unlock(context.Context, string) error {
	l.unlocked++
	return nil
}

func TestRunOnce(t *testing.T) {
	diverged := []dto.ReconcileResponse{{UserID: 1, Before: 5, After: 3}}

	tests := []struct {
		name      string
		locker    *fakeLocker
		recErr    error
		wantN     int
		wantCalls int
		wantErr   bool
	}{
		{name: "lock acquired", locker: &fakeLocker{}, wantN: 1, wantCalls: 1},
		{name: "lock held elsewhere", locker: &fakeLocker{held: true}, wantN: 0, wantCalls: 0},
		{name: "redis unavailable", locker: &fakeLocker{err: errors.New("dial tcp")}, wantN: 1, wantCalls: 1},
		{name: "reconcile fails", locker: &fakeLocker{}, recErr: errors.New("db"), wantCalls: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeReconciler{out: diverged, err: tt.recErr}
			p := NewPointsReconciler(r, tt.locker, time.Minute)

			n, err := p.RunOnce(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("RunOnce() error = %v, wantErr %v", err, tt.wantErr)
			}
			if n != tt.wantN {
				t.Errorf("RunOnce() = %d, want %d", n, tt.wantN)
			}
			if r.calls != tt.wantCalls {
				t.Errorf("ReconcileAll calls = %d, want %d", r.calls, tt.wantCalls)
			}
		})
	}
}

func TestRunOnceSkipsOverlappingPass(t *testing.T) {
	r := &fakeReconciler{block: make(chan struct{})}
	locker := &fakeLocker{}
	p := NewPointsReconciler(r, locker, time.Minute)

	done := make(chan struct{})
	go func() {
		_, _ = p.RunOnce(context.Background())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		r.mu.Lock()
		started := r.calls == 1
		r.mu.Unlock()
		if started || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if n, err := p.RunOnce(context.Background()); err != nil || n != 0 {
		t.Errorf("overlapping RunOnce() = %d, %v", n, err)
	}
	close(r.block)
	<-done

	if r.calls != 1 {
		t.Errorf("ReconcileAll calls = %d, want 1", r.calls)
	}
	if locker.unlocked != 1 {
		t.Errorf("unlocked = %d, want 1", locker.unlocked)
	}
}
