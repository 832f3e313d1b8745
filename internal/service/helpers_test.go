package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"StaffHub/internal/model"
	"StaffHub/storage/database"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newNamedTestDB(t, t.Name())
}

func memoryDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func newNamedTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(memoryDSN(name)), database.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.EnsureHonorBoardSetting(context.Background(), gdb); err != nil {
		t.Fatalf("honor board setting: %v", err)
	}
	return gdb
}

type userOpt func(*model.User)

func withRole(role string) userOpt        { return func(u *model.User) { u.Role = role } }
func withName(first, last string) userOpt { return func(u *model.User) { u.FirstName, u.LastName = first, last } }
func inactive() userOpt                   { return func(u *model.User) { u.IsActive = false } }

func createUser(t *testing.T, db *gorm.DB, username string, opts ...userOpt) *model.User {
	t.Helper()
	u := &model.User{Username: username, IsActive: true}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

type publishedEvent struct {
	Type    model.EventType
	Payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, t model.EventType, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: t, Payload: payload})
	return p.err
}

func (p *fakePublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int             { return &v }
func boolPtr(v bool) *bool          { return &v }
func strPtr(v string) *string       { return &v }
func idsPtr(v []int64) *[]int64     { return &v }
func textsPtr(v []string) *[]string { return &v }

func count(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	tx := db.Model(m)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
