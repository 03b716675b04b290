// Package problem parses problem files into typing targets.
package problem

import "strings"

// Segment pairs display text with the reading that has to be typed.
type Segment struct {
	Display   string
	Reading   string
	Annotated bool
}

// Word is the scoring unit: one or more segments typed as a whole.
type Word struct {
	Segments []Segment
}

// Display returns the concatenated display text of the word.
func (w Word) Display() string {
	var b strings.Builder
	for _, s := range w.Segments {
		b.WriteString(s.Display)
	}
	return b.String()
}

// Reading returns the concatenated reading of the word.
func (w Word) Reading() string {
	var b strings.Builder
	for _, s := range w.Segments {
		b.WriteString(s.Reading)
	}
	return b.String()
}

// Problem is one line of a problem file.
type Problem struct {
	Title string
	Line  int
	Words []Word
}

// Display returns the visible text of the whole problem.
func (p Problem) Display() string {
	var b strings.Builder
	for _, w := range p.Words {
		b.WriteString(w.Display())
	}
	return b.String()
}

// Reading returns the reading of the whole problem.
func (p Problem) Reading() string {
	var b strings.Builder
	for _, w := range p.Words {
		b.WriteString(w.Reading())
	}
	return b.String()
}

// Set is a parsed problem file.
type Set struct {
	Title      string
	TitleWords []Word
	Problems   []Problem
}

// WordCount returns the number of words across all problems.
func (s Set) WordCount() int {
	n := 0
	for _, p := range s.Problems {
		n += len(p.Words)
	}
	return n
}
