package timeline

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func assertInvariants(t *testing.T, m *Model) {
	t.Helper()
	if m.Start() < 0 {
		t.Fatalf("start below zero: %v", m.Start())
	}
	if m.End() > m.Duration() {
		t.Fatalf("end beyond duration: %v > %v", m.End(), m.Duration())
	}
	if !(m.Start() < m.End()) {
		t.Fatalf("start must be before end: %v >= %v", m.Start(), m.End())
	}
	if m.Duration() >= MinSelection && m.Selection() < MinSelection {
		t.Fatalf("selection shorter than minimum: %v", m.Selection())
	}
	if max, ok := m.MaxDuration(); ok && m.Selection() > max {
		t.Fatalf("selection exceeds max duration: %v > %v", m.Selection(), max)
	}
	if m.Playhead() < 0 || m.Playhead() > m.Duration() {
		t.Fatalf("playhead out of range: %v", m.Playhead())
	}
}

func TestNewInitialEndRespectsMaxDuration(t *testing.T) {
	tests := []struct {
		duration float64
		max      float64
		wantEnd  float64
	}{
		{duration: 45, max: 0, wantEnd: 45},
		{duration: 45, max: 20, wantEnd: 20},
		{duration: 12, max: 20, wantEnd: 12},
		{duration: 120, max: 30, wantEnd: 30},
	}
	for _, tt := range tests {
		m := New(tt.duration, tt.max)
		if m.Start() != 0 {
			t.Fatalf("New(%v,%v): unexpected start %v", tt.duration, tt.max, m.Start())
		}
		if m.End() != tt.wantEnd {
			t.Fatalf("New(%v,%v): expected end %v, got %v", tt.duration, tt.max, tt.wantEnd, m.End())
		}
	}
}

func TestSetTrimStartClampsToEndMinusMinSelection(t *testing.T) {
	m := New(45, 0)
	m.SetTrimEnd(10)
	m.SetTrimStart(30)
	if got := m.Start(); got != 10-MinSelection {
		t.Fatalf("expected start %v, got %v", 10-MinSelection, got)
	}
	m.SetTrimStart(-5)
	if m.Start() != 0 {
		t.Fatalf("expected start clamped to 0, got %v", m.Start())
	}
	assertInvariants(t, m)
}

func TestSetTrimEndClampsToStartPlusMinSelection(t *testing.T) {
	m := New(45, 0)
	m.SetTrimStart(20)
	m.SetTrimEnd(3)
	if got := m.End(); got != 20+MinSelection {
		t.Fatalf("expected end %v, got %v", 20+MinSelection, got)
	}
	m.SetTrimEnd(1000)
	if m.End() != 45 {
		t.Fatalf("expected end clamped to duration, got %v", m.End())
	}
	assertInvariants(t, m)
}

func TestMaxDurationCouplesStartToEnd(t *testing.T) {
	m := New(120, 20)
	m.Shift(80)
	if m.End() != 100 {
		t.Fatalf("expected end at 100 after shift, got %v", m.End())
	}
	m.SetTrimStart(0)
	if m.Start() < 80-eps {
		t.Fatalf("start must not drop below 80, got %v", m.Start())
	}
	if m.Start() != 80 {
		t.Fatalf("expected start 80, got %v", m.Start())
	}
	assertInvariants(t, m)
}

func TestMaxDurationLimitsEndDrag(t *testing.T) {
	m := New(120, 20)
	m.SetTrimStart(10)
	m.SetTrimEnd(100)
	if m.End() != 30 {
		t.Fatalf("expected end limited to start+max (30), got %v", m.End())
	}

	// Pencereyi adım adım sağa yürüt.
	for m.End() < 100 {
		m.SetTrimStart(m.End() - MinSelection)
		m.SetTrimEnd(100)
		assertInvariants(t, m)
	}
	m.SetTrimStart(0)
	if m.Start() < 80-eps {
		t.Fatalf("start must not drop below 80, got %v", m.Start())
	}
}

func TestResetIsIdempotent(t *testing.T) {
	m := New(60, 15)
	m.SetTrimStart(5)
	m.SetTrimEnd(12)
	m.SetPlayhead(7)

	m.Reset()
	first := *m
	m.Reset()
	if *m != first {
		t.Fatalf("second reset changed state: %+v vs %+v", *m, first)
	}
	if m.Start() != 0 || m.End() != 15 {
		t.Fatalf("unexpected reset range: %v-%v", m.Start(), m.End())
	}
}

func TestAdjustRoutesThroughSetters(t *testing.T) {
	m := New(30, 0)
	m.Adjust(HandleStart, 0.1)
	if math.Abs(m.Start()-0.1) > eps {
		t.Fatalf("expected start 0.1, got %v", m.Start())
	}
	m.Adjust(HandleEnd, -100)
	if math.Abs(m.End()-(m.Start()+MinSelection)) > eps {
		t.Fatalf("expected end pinned to start+min, got %v", m.End())
	}
	m.Adjust(HandlePlayhead, 50)
	if m.Playhead() != 30 {
		t.Fatalf("expected playhead clamped to duration, got %v", m.Playhead())
	}
	assertInvariants(t, m)
}

func TestInvariantsHoldForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 2000; round++ {
		duration := 1 + rng.Float64()*300
		max := 0.0
		if rng.Intn(2) == 0 {
			max = 0.5 + rng.Float64()*60
		}
		m := New(duration, max)
		assertInvariants(t, m)

		for step := 0; step < 100; step++ {
			v := rng.Float64()*duration*1.5 - duration*0.25
			switch rng.Intn(6) {
			case 0:
				m.SetTrimStart(v)
			case 1:
				m.SetTrimEnd(v)
			case 2:
				m.Adjust(HandleStart, rng.Float64()*4-2)
			case 3:
				m.Adjust(HandleEnd, rng.Float64()*4-2)
			case 4:
				m.Shift(rng.Float64()*20 - 10)
			case 5:
				m.SetPlayhead(v)
			}
			assertInvariants(t, m)
		}
	}
}

func TestClampedSelectionHasNoRoundingDrift(t *testing.T) {
	const max = 14.983254023917864
	for offset := 0.0; offset < 290; offset += 0.37 {
		m := New(300, max)
		m.Shift(offset)
		if m.Selection() > max {
			t.Fatalf("shift %v: selection %v exceeds max %v", offset, m.Selection(), max)
		}
		m.SetTrimStart(m.Start() + 0.3)
		m.SetTrimEnd(1000)
		if m.Selection() > max {
			t.Fatalf("start %v: selection %v exceeds max %v", m.Start(), m.Selection(), max)
		}
		m.SetTrimStart(m.End() - 1000)
		if m.Selection() > max {
			t.Fatalf("end %v: selection %v exceeds max %v", m.End(), m.Selection(), max)
		}
		m.SetTrimEnd(m.Start() + 0.1)
		if m.Selection() < MinSelection || !m.CanCommit() {
			t.Fatalf("start %v: selection %v below minimum", m.Start(), m.Selection())
		}
		m.SetTrimStart(m.End())
		if m.Selection() < MinSelection {
			t.Fatalf("end %v: selection %v below minimum", m.End(), m.Selection())
		}
	}
}

func TestNonFiniteInputsAreIgnored(t *testing.T) {
	m := New(10, 0)
	m.SetTrimStart(2)
	m.SetTrimStart(math.NaN())
	m.SetTrimEnd(math.Inf(1))
	m.SetPlayhead(math.NaN())
	m.Adjust(HandleEnd, math.NaN())
	if m.Start() != 2 || m.End() != 10 || m.Playhead() != 0 {
		t.Fatalf("unexpected state after non-finite input: %v %v %v", m.Start(), m.End(), m.Playhead())
	}
}

func TestShortAssetCannotCommit(t *testing.T) {
	m := New(0.3, 0)
	m.SetTrimStart(1)
	m.SetTrimEnd(-1)
	if m.Start() != 0 || m.End() != 0.3 {
		t.Fatalf("expected whole asset selected, got %v-%v", m.Start(), m.End())
	}
	if m.CanCommit() {
		t.Fatalf("commit must be disabled for selections below minimum")
	}
}

func TestPixelTimeMapping(t *testing.T) {
	m := New(120, 0)
	tests := []struct {
		px   float64
		want float64
	}{
		{px: 0, want: 0},
		{px: 50, want: 30},
		{px: 200, want: 120},
		{px: 400, want: 120},
		{px: -10, want: 0},
	}
	for _, tt := range tests {
		if got := m.TimeAt(tt.px, 200); math.Abs(got-tt.want) > eps {
			t.Fatalf("TimeAt(%v) = %v, want %v", tt.px, got, tt.want)
		}
	}
	if got := m.PositionOf(60, 200); got != 100 {
		t.Fatalf("PositionOf(60) = %v, want 100", got)
	}
	if got := m.TimeAt(10, 0); got != 0 {
		t.Fatalf("zero-width track must map to 0, got %v", got)
	}
}
