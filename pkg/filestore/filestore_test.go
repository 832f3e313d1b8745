package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveImage(t *testing.T) {
	root := t.TempDir()
	s := New(root, "/media", 16)

	rel, err := s.SaveImage("avatars", "Me.JPEG", 5, strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("SaveImage() error = %v", err)
	}
	if !strings.HasPrefix(rel, "avatars/") || !strings.HasSuffix(rel, ".jpg") {
		t.Errorf("SaveImage() path = %q", rel)
	}
	got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil || string(got) != "hello" {
		t.Fatalf("stored content = %q, %v", got, err)
	}
	if url := s.URL(rel); url != "/media/"+rel {
		t.Errorf("URL() = %q", url)
	}
}

func TestSaveImageRejects(t *testing.T) {
	s := New(t.TempDir(), "/media/", 4)

	tests := []struct {
		name     string
		filename string
		size     int64
		body     string
		want     error
	}{
		{name: "declared size too large", filename: "a.png", size: 10, body: "0123456789", want: ErrTooLarge},
		{name: "body larger than declared", filename: "a.png", size: 2, body: "0123456789", want: ErrTooLarge},
		{name: "not an image", filename: "a.pdf", size: 2, body: "ab", want: ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SaveImage("avatars", tt.filename, tt.size, strings.NewReader(tt.body))
			if !errors.Is(err, tt.want) {
				t.Fatalf("SaveImage() error = %v, want %v", err, tt.want)
			}
		})
	}
}
