// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/kanatype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes WPM and CPM from committed characters and accuracy
// from accepted and rejected keystrokes. A word is five characters.
func SessionMetrics(chars, correct, incorrect int, durationMs int64) (wpm, cpm, accuracy float64) {
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return 0, 0, accuracy
	}
	cpm = float64(chars) * 60000.0 / float64(durationMs)
	wpm = cpm / 5.0
	return wpm, cpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Result is the post-session report input.
type Result struct {
	Title          string
	Finished       bool
	Elapsed        time.Duration
	Keystrokes     int
	Correct        int
	Incorrect      int
	Backspaces     int
	CommittedChars int
	WordsCompleted int
	WordsSkipped   int
	WPM            float64
	CPM            float64
	Accuracy       float64
	KeysPerSecond  float64
	// WordCPM is the typing speed of each finished, unskipped word in order.
	WordCPM []float64
	Chars   []model.CharAggregate
}

// Summary returns a one-line summary of the result.
func Summary(r Result) string {
	status := "completed"
	if !r.Finished {
		status = "aborted"
	}
	title := r.Title
	if title == "" {
		title = "practice"
	}
	return fmt.Sprintf("%s (%s): %.1f WPM · %.1f CPM · %.1f%% accuracy · %s · %d misses",
		title, status, r.WPM, r.CPM, r.Accuracy*100, FormatElapsed(r.Elapsed), r.Incorrect)
}

// RenderResult prints the post-session report.
func RenderResult(w io.Writer, r Result, window, topChars int) error {
	if _, err := fmt.Fprintln(w, "Result"); err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("Title: %s", r.Title),
		fmt.Sprintf("Time: %s", FormatElapsed(r.Elapsed)),
		fmt.Sprintf("WPM: %.2f", r.WPM),
		fmt.Sprintf("CPM: %.2f", r.CPM),
		fmt.Sprintf("Keys/s: %.2f", r.KeysPerSecond),
		fmt.Sprintf("Accuracy: %.2f%%", r.Accuracy*100),
		fmt.Sprintf("Keystrokes: %d (%d missed, %d backspaces)", r.Keystrokes, r.Incorrect, r.Backspaces),
		fmt.Sprintf("Words: %d completed, %d skipped", r.WordsCompleted, r.WordsSkipped),
	}
	if !r.Finished {
		lines = append(lines, "Session aborted before the end.")
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(r.WordCPM) > 1 {
		spark := Sparkline(MovingAverage(r.WordCPM, window))
		if _, err := fmt.Fprintf(w, "Speed: [%s]\n", spark); err != nil {
			return err
		}
	}
	if weak := WeakestChars(r.Chars, topChars); len(weak) > 0 {
		if _, err := fmt.Fprintf(w, "Weakest: %s\n", strings.Join(weak, " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return RenderCharTable(w, TopCharsByFrequency(r.Chars, topChars))
}

// RenderCharTable prints per-kana aggregates, lowest accuracy first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats.")
		return err
	}
	type row struct {
		char      string
		acc       float64
		latency   float64
		correct   int
		incorrect int
	}
	rows := make([]row, 0, len(aggs))
	for _, agg := range aggs {
		charLabel := agg.Char
		if charLabel == " " {
			charLabel = "<space>"
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, row{
			char:      charLabel,
			acc:       accuracy(agg),
			latency:   lat,
			correct:   agg.Correct,
			incorrect: agg.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].acc == rows[j].acc {
			return rows[i].char < rows[j].char
		}
		return rows[i].acc < rows[j].acc
	})

	if _, err := fmt.Fprintln(w, "Per-Kana"); err != nil {
		return err
	}

	headers := []string{"Kana", "Accuracy", "Avg Latency (ms)", "Typed", "Missed"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.char,
			fmt.Sprintf("%.2f%%", r.acc*100),
			fmt.Sprintf("%.1f", r.latency),
			fmt.Sprintf("%d", r.correct),
			fmt.Sprintf("%d", r.incorrect),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range FormatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatElapsed renders d as m:ss.s.
func FormatElapsed(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	return fmt.Sprintf("%d:%04.1f", minutes, seconds)
}
