package bridge

import (
	"testing"
	"time"
)

func TestBackoff_DoublesToCap(t *testing.T) {
	b := newBackoff(0, 0)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		15 * time.Second,
		15 * time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("attempt %d: got %v, want %v", i, got, w)
		}
	}
}

func TestBackoff_ResetReturnsToMinimum(t *testing.T) {
	b := newBackoff(0, 0)

	b.Next()
	b.Next()
	b.Next()
	b.Reset()

	if got := b.Next(); got != 1*time.Second {
		t.Errorf("after reset: got %v, want 1s", got)
	}
	if got := b.Next(); got != 2*time.Second {
		t.Errorf("second attempt after reset: got %v, want 2s", got)
	}
}

func TestBackoff_CustomBounds(t *testing.T) {
	b := newBackoff(time.Millisecond, 3*time.Millisecond)

	if got := b.Next(); got != time.Millisecond {
		t.Errorf("got %v, want 1ms", got)
	}
	if got := b.Next(); got != 2*time.Millisecond {
		t.Errorf("got %v, want 2ms", got)
	}
	if got := b.Next(); got != 3*time.Millisecond {
		t.Errorf("got %v, want capped 3ms", got)
	}
}
