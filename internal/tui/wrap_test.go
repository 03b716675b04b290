package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/kanatype/internal/problem"
	"github.com/verte-zerg/kanatype/internal/session"
)

func snapshotAfter(t *testing.T, line, keys string) session.Snapshot {
	t.Helper()
	words, err := problem.ParseLine(line)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s := session.New()
	at := time.Unix(0, 0)
	if err := s.Start([]problem.Problem{{Line: 1, Words: words}}, at); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, k := range keys {
		if _, err := s.OnKey(k, at); err != nil {
			t.Fatalf("key %q: %v", k, err)
		}
	}
	return s.Snapshot()
}

func TestBuildCellsStylesTypedAndCurrent(t *testing.T) {
	snap := snapshotAfter(t, "ね こ", "ne")
	cells := buildCells(snap.Words, false)
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	if cells[0].top != correctStyle.Render("ね") {
		t.Fatalf("expected correct style for typed kana")
	}
	if cells[1].top != cursorStyle.Render(" ") || !cells[1].isSpace {
		t.Fatalf("expected cursor on the space word")
	}
	if cells[2].top != pendingStyle.Render("こ") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildCellsCurrentWordHighlighting(t *testing.T) {
	snap := snapshotAfter(t, "ねこ", "ne")
	cells := buildCells(snap.Words, false)
	want := correctStyle.Render("ね") + cursorStyle.Render("こ")
	if len(cells) != 1 || cells[0].top != want {
		t.Fatalf("unexpected cell %+v", cells)
	}
}

func TestBuildCellsReadingRow(t *testing.T) {
	snap := snapshotAfter(t, "(猫/ねこ)", "")
	cells := buildCells(snap.Words, true)
	if len(cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(cells))
	}
	c := cells[0]
	if c.top != currentWordStyle.Render("猫") {
		t.Fatalf("expected active display style")
	}
	if c.bottom != cursorStyle.Render("ね")+currentWordStyle.Render("こ") {
		t.Fatalf("unexpected reading row %q", c.bottom)
	}
	if c.topWidth != 2 || c.bottomWidth != 4 || c.width() != 4 {
		t.Fatalf("unexpected widths %d/%d", c.topWidth, c.bottomWidth)
	}
}

func TestBuildCellsHidesReadingOfAnnotatedSegments(t *testing.T) {
	snap := snapshotAfter(t, "(猫/ねこ)", "")
	cells := buildCells(snap.Words, false)
	if cells[0].bottom != "" || cells[0].width() != 2 {
		t.Fatalf("expected display only, got %+v", cells[0])
	}
}

func TestBuildCellsSkippedWordIsIncorrect(t *testing.T) {
	words, err := problem.ParseLine("ね/こ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s := session.New()
	at := time.Unix(0, 0)
	if err := s.Start([]problem.Problem{{Line: 1, Words: words}}, at); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.SkipWord(at); err != nil {
		t.Fatalf("skip: %v", err)
	}
	cells := buildCells(s.Snapshot().Words, false)
	if cells[0].top != incorrectStyle.Render("ね") {
		t.Fatalf("expected incorrect style for skipped word")
	}
}

func plainCell(s string) cell {
	return cell{top: s, topWidth: len(s), isSpace: s == " "}
}

func TestWrapCellsBreaksAtSpaces(t *testing.T) {
	cells := []cell{plainCell("ab"), plainCell(" "), plainCell("cd"), plainCell(" "), plainCell("ef")}
	lines := wrapCells(cells, 5)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len(lines[0]) != 1 || lines[0][0].top != "ab" {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lineWidthOf(lines[1]) != 5 {
		t.Fatalf("unexpected second line width %d", lineWidthOf(lines[1]))
	}
}

func TestWrapCellsWithoutSpacesBreaksBetweenSegments(t *testing.T) {
	cells := []cell{
		{top: "漢字", topWidth: 4},
		{top: "の", topWidth: 2},
		{top: "読み", topWidth: 4},
	}
	lines := wrapCells(cells, 6)
	if len(lines) != 2 || len(lines[0]) != 2 || len(lines[1]) != 1 {
		t.Fatalf("unexpected wrap %+v", lines)
	}
}

func TestWrapCellsOversizedSegmentKeepsOwnLine(t *testing.T) {
	cells := []cell{{top: "ながいことば", topWidth: 12}, {top: "あ", topWidth: 2}}
	lines := wrapCells(cells, 4)
	if len(lines) != 2 || lines[0][0].topWidth != 12 {
		t.Fatalf("unexpected wrap %+v", lines)
	}
}

func TestRenderLinesPadsRows(t *testing.T) {
	lines := [][]cell{{
		{top: "漢字", topWidth: 4, bottom: "かんじ", bottomWidth: 6},
		{top: "x", topWidth: 1, bottom: "x", bottomWidth: 1},
	}}
	out := renderLines(lines, true)
	rows := strings.Split(out, "\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0] != "漢字  x" || rows[1] != "かんじx" {
		t.Fatalf("unexpected rows %q", rows)
	}
	if got := renderLines(lines, false); strings.Contains(got, "\n") {
		t.Fatalf("expected single row without readings, got %q", got)
	}
}
