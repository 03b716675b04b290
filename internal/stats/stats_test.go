package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/kanatype/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(5, 10, 1, 2000)
	if cpm != 150 || wpm != 30 {
		t.Fatalf("unexpected speed wpm=%v cpm=%v", wpm, cpm)
	}
	if acc < 0.909 || acc > 0.910 {
		t.Fatalf("unexpected accuracy %v", acc)
	}
	wpm, cpm, acc = SessionMetrics(5, 1, 1, 0)
	if wpm != 0 || cpm != 0 || acc != 0.5 {
		t.Fatalf("expected zero speed and accuracy kept, got %v %v %v", wpm, cpm, acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 10}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestWeakestChars(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "し", Correct: 3, Incorrect: 1},
		{Char: "か", Correct: 5},
		{Char: "つ", Correct: 1, Incorrect: 1},
	}
	weak := WeakestChars(aggs, 5)
	if len(weak) != 2 || weak[0] != "つ" || weak[1] != "し" {
		t.Fatalf("unexpected weakest %v", weak)
	}
	if got := WeakestChars(aggs, 1); len(got) != 1 || got[0] != "つ" {
		t.Fatalf("unexpected limited weakest %v", got)
	}
}

func TestTopCharsByFrequency(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "b", Correct: 3, Incorrect: 1},
		{Char: "a", Correct: 2, Incorrect: 2},
		{Char: "c", Correct: 1, Incorrect: 0},
	}
	top := TopCharsByFrequency(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 chars, got %d", len(top))
	}
	if top[0].Char != "a" || top[1].Char != "b" {
		t.Fatalf("unexpected order: %v", top)
	}
	if all := TopCharsByFrequency(aggs, 0); len(all) != 3 {
		t.Fatalf("expected all chars, got %d", len(all))
	}
}

func TestRenderResult(t *testing.T) {
	r := Result{
		Title:          "百人一首",
		Finished:       true,
		Elapsed:        65300 * time.Millisecond,
		Keystrokes:     120,
		Correct:        115,
		Incorrect:      5,
		Backspaces:     2,
		CommittedChars: 60,
		WordsCompleted: 12,
		WordsSkipped:   1,
		WPM:            11.03,
		CPM:            55.13,
		Accuracy:       0.9583,
		KeysPerSecond:  1.76,
		WordCPM:        []float64{40, 50, 60},
		Chars: []model.CharAggregate{
			{Char: "し", Correct: 3, Incorrect: 1, LatencySumMs: 900, LatencyCount: 3},
			{Char: "か", Correct: 5},
		},
	}
	var buf bytes.Buffer
	if err := RenderResult(&buf, r, 1, 10); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Title: 百人一首",
		"Time: 1:05.3",
		"WPM: 11.03",
		"Accuracy: 95.83%",
		"Keystrokes: 120 (5 missed, 2 backspaces)",
		"Words: 12 completed, 1 skipped",
		"Speed: [ +@]",
		"Weakest: し",
		"Per-Kana",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "aborted") {
		t.Fatalf("did not expect aborted note")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[len(lines)-2], "し") {
		t.Fatalf("expected lowest accuracy first, got %q", lines[len(lines)-2])
	}
}

func TestSummary(t *testing.T) {
	got := Summary(Result{Title: "t", WPM: 30, CPM: 150, Accuracy: 0.5, Elapsed: 2 * time.Second, Incorrect: 3})
	want := "t (aborted): 30.0 WPM · 150.0 CPM · 50.0% accuracy · 0:02.0 · 3 misses"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
