package scene

import (
	"math"
	"testing"
)

func TestTurntableEasesBehindTarget(t *testing.T) {
	tt := NewTurntable(24, 24, 1, 4, 1)
	if tt.Angle() != 0 {
		t.Fatalf("initial angle = %v, want 0", tt.Angle())
	}

	prev := 0.0
	for i := range 24 {
		got := tt.Next()
		if i == 0 && got <= 0 {
			t.Errorf("first angle = %v, want > 0", got)
		}
		if got < prev-1e-9 {
			t.Errorf("frame %d: angle %v went back from %v", i, got, prev)
		}
		if got > tt.Target()+1e-9 {
			t.Errorf("frame %d: angle %v overshot target %v", i, got, tt.Target())
		}
		prev = got
	}

	if math.Abs(tt.Target()-360) > 1e-9 {
		t.Errorf("final target = %v, want 360", tt.Target())
	}
}

func TestTurntableNoFrames(t *testing.T) {
	tt := NewTurntable(0, 24, 1, 4, 1)
	if got := tt.Next(); got != 0 {
		t.Errorf("angle = %v, want 0", got)
	}
}
