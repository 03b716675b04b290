// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Count       int
	Shuffle     bool
	Seed        int64
	ShowReading bool
	ShowGuide   bool
	ProblemsDir string
	FocusWeak   bool
	WeakTop     int
	WeakFactor  float64
}

// ProblemFile is a catalog entry for one problem file.
type ProblemFile struct {
	Path      string
	Name      string
	Title     string
	Problems  int
	Words     int
	ModTime   time.Time
	IndexedAt time.Time
	// ParseErr holds the parse error message when the file does not parse.
	ParseErr string
}

// Valid reports whether the file parsed cleanly.
func (p ProblemFile) Valid() bool {
	return p.ParseErr == ""
}

// CharAggregate aggregates per-kana stats for a session.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}
