package snowflake

import "testing"

func TestNextIDUnique(t *testing.T) {
	if err := Init(1, 1); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := NextID()
		if err != nil {
			t.Fatalf("NextID() error = %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}

	s, err := NextString()
	if err != nil || s == "" {
		t.Fatalf("NextString() = %q, %v", s, err)
	}
}
