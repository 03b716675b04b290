package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanatype/internal/model"
	"github.com/verte-zerg/kanatype/internal/stats"
)

func buildCharTable(aggs []model.CharAggregate, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Kana", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Latency (ms)", Width: 17},
		{Title: "Typed", Width: 6},
		{Title: "Missed", Width: 6},
	}
	sorted := stats.TopCharsByFrequency(aggs, 0)
	rows := make([]table.Row, 0, len(sorted))
	for _, agg := range sorted {
		total := agg.Correct + agg.Incorrect
		acc := 0.0
		if total > 0 {
			acc = float64(agg.Correct) / float64(total) * 100
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		charLabel := agg.Char
		if charLabel == " " {
			charLabel = "<space>"
		}
		rows = append(rows, table.Row{
			charLabel,
			fmt.Sprintf("%.2f%%", acc),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height)),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	t.SetStyles(charTableStyles())
	return t
}

func charTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// resultLines is the headline block of the result screen.
func resultLines(r stats.Result, weakTop int) []string {
	status := "Completed"
	style := correctStyle
	if !r.Finished {
		status = "Aborted"
		style = incorrectStyle
	}
	title := r.Title
	if title == "" {
		title = "practice"
	}
	lines := []string{
		titleStyle.Render(title) + "  " + style.Render(status),
		"",
		fmt.Sprintf("%.1f WPM · %.1f CPM · %.1f%% accuracy · %s",
			r.WPM, r.CPM, r.Accuracy*100, stats.FormatElapsed(r.Elapsed)),
		footerStyle.Render(fmt.Sprintf("%d keys · %d missed · %d backspaces · %d words · %d skipped",
			r.Keystrokes, r.Incorrect, r.Backspaces, r.WordsCompleted, r.WordsSkipped)),
	}
	if len(r.WordCPM) > 1 {
		lines = append(lines, footerStyle.Render("Speed ["+stats.Sparkline(r.WordCPM)+"]"))
	}
	if weak := stats.WeakestChars(r.Chars, weakTop); len(weak) > 0 {
		lines = append(lines, "Weakest "+incorrectStyle.Render(strings.Join(weak, " ")))
	}
	return lines
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
