package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kanatype/internal/session"
)

// cell is one segment laid out as a display row over a reading row.
type cell struct {
	top         string
	bottom      string
	topWidth    int
	bottomWidth int
	isSpace     bool
}

func (c cell) width() int {
	if c.bottomWidth > c.topWidth {
		return c.bottomWidth
	}
	return c.topWidth
}

func buildCells(words []session.WordView, showReading bool) []cell {
	out := make([]cell, 0, len(words))
	for _, w := range words {
		for _, seg := range w.Segments {
			c := cell{
				isSpace:  strings.TrimSpace(seg.Display) == "" && seg.Display != "",
				topWidth: runewidth.StringWidth(seg.Display),
			}
			reading, readingWidth := styleTarget(seg.Target, w.Active)
			switch {
			case showReading:
				c.top = segmentStyle(seg, w).Render(seg.Display)
				c.bottom = reading
				c.bottomWidth = readingWidth
			case seg.Annotated:
				c.top = segmentStyle(seg, w).Render(seg.Display)
			default:
				c.top = reading
				c.topWidth = readingWidth
			}
			out = append(out, c)
		}
	}
	return out
}

func styleTarget(chars []session.CharView, active bool) (string, int) {
	var b strings.Builder
	width := 0
	for _, cv := range chars {
		displayed := cv.Rune
		style := pendingStyle
		switch cv.State {
		case session.Correct:
			style = correctStyle
		case session.Incorrect:
			style = incorrectStyle
			if displayed == ' ' {
				displayed = '•'
			}
		case session.Current:
			style = cursorStyle
		default:
			if active {
				style = currentWordStyle
			}
		}
		b.WriteString(style.Render(string(displayed)))
		width += runewidth.RuneWidth(displayed)
	}
	return b.String(), width
}

func segmentStyle(seg session.SegmentView, w session.WordView) lipgloss.Style {
	if w.Active {
		return currentWordStyle
	}
	if !w.Done {
		return pendingStyle
	}
	for _, cv := range seg.Target {
		if cv.State == session.Incorrect {
			return incorrectStyle
		}
	}
	return correctStyle
}

// wrapCells breaks cells into lines no wider than width, preferring to
// break at spaces so words stay together.
func wrapCells(cells []cell, width int) [][]cell {
	if width <= 0 {
		return [][]cell{cells}
	}
	var lines [][]cell
	line := make([]cell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width() > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				lines = append(lines, line[:lastSpaceIdx])
				line = append([]cell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				lines = append(lines, line)
				line = make([]cell, 0, len(cells)-i)
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width()
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	return append(lines, line)
}

func renderLines(lines [][]cell, showReading bool) string {
	rows := make([]string, 0, len(lines)*2)
	for _, line := range lines {
		var top, bottom strings.Builder
		for _, c := range line {
			w := c.width()
			top.WriteString(c.top)
			top.WriteString(strings.Repeat(" ", w-c.topWidth))
			bottom.WriteString(c.bottom)
			bottom.WriteString(strings.Repeat(" ", w-c.bottomWidth))
		}
		rows = append(rows, top.String())
		if showReading {
			rows = append(rows, bottom.String())
		}
	}
	return strings.Join(rows, "\n")
}

func lineWidthOf(line []cell) int {
	total := 0
	for _, item := range line {
		total += item.width()
	}
	return total
}

func lastSpaceIndex(line []cell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
