package ptframe

import (
	"math"
	"testing"
)

func TestLineArclen(t *testing.T) {
	l := Line{Vec(0, 0, 0), Vec(1, 1, 1)}
	want := math.Sqrt(3.0)
	epsilon := 1e-9
	assertNear(t, l.Arclen(epsilon), want, epsilon)

	ts := l.SolveForArclen(want/3.0, epsilon)
	assertNear(t, ts, 1.0/3.0, epsilon)

	assertNear(t, l.ArclenRange(0.25, 0.75, epsilon), want/2, epsilon)
}

func TestLineSolveForArclenClamps(t *testing.T) {
	l := Line{Vec(0, 0, 0), Vec(0, 10, 0)}
	if got := l.SolveForArclen(-1, 1e-9); got != 0 {
		t.Errorf("got %g, want 0", got)
	}
	if got := l.SolveForArclen(11, 1e-9); got != 1 {
		t.Errorf("got %g, want 1", got)
	}
	if got := (Line{}).SolveForArclen(1, 1e-9); got != 0 {
		t.Errorf("degenerate line: got %g, want 0", got)
	}
}

func TestLineSubsegment(t *testing.T) {
	l := Line{Vec(0, 0, 0), Vec(4, 0, 8)}
	diff(t, Line{Vec(1, 0, 2), Vec(3, 0, 6)}, l.Subsegment(0.25, 0.75))
}

func TestLineIsFinite(t *testing.T) {
	if !(Line{Vec(0, 0, 0), Vec(1, 1, 1)}).IsFinite() {
		t.Error("line is infinite but shouldn't be")
	}
	if (Line{Vec(0, 0, 0), Vec(math.Inf(1), 1, 1)}).IsFinite() {
		t.Error("line is finite but shouldn't be")
	}
	if (Line{Vec(0, math.NaN(), 0), Vec(1, 1, 1)}).IsFinite() {
		t.Error("line is finite but shouldn't be")
	}
}
