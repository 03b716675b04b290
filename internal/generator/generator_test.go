package generator

import (
	"testing"

	"github.com/verte-zerg/kanatype/internal/problem"
)

func problems(readings ...string) []problem.Problem {
	out := make([]problem.Problem, 0, len(readings))
	for i, r := range readings {
		out = append(out, problem.Problem{
			Line:  i + 2,
			Words: []problem.Word{{Segments: []problem.Segment{{Display: r, Reading: r}}}},
		})
	}
	return out
}

func lines(ps []problem.Problem) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Line)
	}
	return out
}

func TestSelectKeepsOrderWithoutShuffle(t *testing.T) {
	in := problems("あ", "い", "う", "え")
	got := NewWithSeed(1).Select(in, 2, false)
	if len(got) != 2 || got[0].Line != 2 || got[1].Line != 3 {
		t.Fatalf("unexpected selection %v", lines(got))
	}
	if all := NewWithSeed(1).Select(in, 0, false); len(all) != 4 {
		t.Fatalf("expected all problems, got %d", len(all))
	}
}

func TestSelectShuffleIsDeterministicForSeed(t *testing.T) {
	in := problems("あ", "い", "う", "え", "お", "か", "き")
	a := lines(NewWithSeed(42).Select(in, 0, true))
	b := lines(NewWithSeed(42).Select(in, 0, true))
	if len(a) != len(in) {
		t.Fatalf("expected %d problems, got %d", len(in), len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical order for same seed: %v vs %v", a, b)
		}
	}
	if in[0].Line != 2 {
		t.Fatalf("input slice was modified")
	}
}

func TestSelectWeightedDrawsDistinctProblems(t *testing.T) {
	in := problems("かか", "さ", "た", "な")
	weak := map[string]struct{}{"か": {}}
	got := NewWithSeed(7).SelectWeighted(in, 0, weak, 3)
	if len(got) != len(in) {
		t.Fatalf("expected %d problems, got %d", len(in), len(got))
	}
	seen := map[int]bool{}
	for _, p := range got {
		if seen[p.Line] {
			t.Fatalf("problem on line %d drawn twice", p.Line)
		}
		seen[p.Line] = true
	}
}

func TestSelectWeightedPrefersWeakKana(t *testing.T) {
	in := problems("カカカカ", "さ", "た", "な", "は", "ま")
	weak := map[string]struct{}{"か": {}}
	g := NewWithSeed(3)
	hits := 0
	for i := 0; i < 200; i++ {
		got := g.SelectWeighted(in, 1, weak, 5)
		if got[0].Line == 2 {
			hits++
		}
	}
	// weight 21 against 5: the weak problem should win most draws.
	if hits < 120 {
		t.Fatalf("expected weak problem to dominate, got %d/200", hits)
	}
}
