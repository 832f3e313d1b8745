package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"StaffHub/config"
	"StaffHub/internal/model/dto"
	pkgerrors "StaffHub/pkg/errors"
	"StaffHub/pkg/token"
	"StaffHub/utils"
)

type memoryRefreshStore struct {
	mu  sync.Mutex
	ids map[int64]string
}

func (m *memoryRefreshStore) Save(_ context.Context, userID int64, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids == nil {
		m.ids = map[int64]string{}
	}
	m.ids[userID] = id
	return nil
}

func (m *memoryRefreshStore) Matches(_ context.Context, userID int64, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[userID] == id, nil
}

func (m *memoryRefreshStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, userID)
	return nil
}

func initTokens(t *testing.T) {
	t.Helper()
	config.Cfg.JWTSecret = "test-secret-0123456789"
	config.Cfg.JWTExpireMinutes = 15
	config.Cfg.JWTRefreshDays = 1
	if err := token.Init(); err != nil {
		t.Fatalf("token.Init() error = %v", err)
	}
}

func TestAuthLoginAndRefresh(t *testing.T) {
	initTokens(t)
	db := newTestDB(t)
	hash, err := utils.HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	u := createUser(t, db, "alice", withRole("HR"))
	db.Model(u).Update("password_hash", hash)
	off := createUser(t, db, "bob", inactive())
	db.Model(off).Update("password_hash", hash)

	store := &memoryRefreshStore{}
	svc := NewAuthService(db, store)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.User.Role != "hr" {
		t.Errorf("Login() = %+v", resp)
	}

	tests := []struct {
		name string
		req  dto.LoginRequest
		want error
	}{
		{name: "wrong password", req: dto.LoginRequest{Username: "alice", Password: "nope"}, want: pkgerrors.InvalidCredentials},
		{name: "unknown user", req: dto.LoginRequest{Username: "mallory", Password: "s3cret"}, want: pkgerrors.InvalidCredentials},
		{name: "inactive user", req: dto.LoginRequest{Username: "bob", Password: "s3cret"}, want: pkgerrors.UserInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("Login() error = %v, want %v", err, tt.want)
			}
		})
	}

	rotated, err := svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if rotated.RefreshToken == resp.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if _, err := svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: resp.RefreshToken}); !errors.Is(err, pkgerrors.InvalidRefreshToken) {
		t.Errorf("Refresh() with rotated-out token error = %v", err)
	}
	if _, err := svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: rotated.AccessToken}); !errors.Is(err, pkgerrors.InvalidRefreshToken) {
		t.Errorf("Refresh() with access token error = %v", err)
	}
}
