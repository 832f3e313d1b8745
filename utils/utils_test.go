package utils

import (
	"strings"
	"testing"
	"time"
)

func TestWindowStarts(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*3600)
	// 22:30 UTC on Jan 31 is already Feb 1 in UTC+3
	instant := time.Date(2024, time.January, 31, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		got  time.Time
		want time.Time
	}{
		{name: "month utc", got: MonthStart(instant, time.UTC), want: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{name: "month shifted zone", got: MonthStart(instant, riyadh), want: time.Date(2024, time.February, 1, 0, 0, 0, 0, riyadh)},
		{name: "year utc", got: YearStart(instant, time.UTC), want: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{name: "year boundary", got: YearStart(time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC), riyadh), want: time.Date(2024, time.January, 1, 0, 0, 0, 0, riyadh)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword(hash, "battery staple") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword("", "") {
		t.Error("CheckPassword() accepted an empty hash")
	}
}

type sample struct {
	Title string `json:"title" validate:"required,max=5"`
	Kind  string `json:"kind" validate:"omitempty,oneof=hr manager"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{name: "valid", in: sample{Title: "ok", Kind: "hr"}},
		{name: "missing title", in: sample{}, wantErr: "sample.title: failed required"},
		{name: "too long", in: sample{Title: "toolong"}, wantErr: "failed max=5"},
		{name: "bad kind", in: sample{Title: "ok", Kind: "ceo"}, wantErr: "sample.kind: failed oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateStruct() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
