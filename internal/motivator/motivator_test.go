package motivator

import (
	"context"
	"strings"
	"testing"
)

func TestStatic_Deterministic(t *testing.T) {
	m := Static{}
	ctx := context.Background()
	a := m.Message(ctx, "Ana", 3)
	b := m.Message(ctx, "Ana", 3)
	if a != b {
		t.Error("same streak should produce the same message")
	}
	if !strings.Contains(a, "Ana") {
		t.Errorf("message %q should mention the child", a)
	}
}

func TestStatic_RotatesWithStreak(t *testing.T) {
	m := Static{}
	ctx := context.Background()
	seen := map[string]bool{}
	for streak := 0; streak < len(staticMessages); streak++ {
		seen[m.Message(ctx, "Ana", streak)] = true
	}
	if len(seen) != len(staticMessages) {
		t.Errorf("expected %d distinct messages, got %d", len(staticMessages), len(seen))
	}
}
