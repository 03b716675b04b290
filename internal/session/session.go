// Package session drives a typing run over parsed problems.
package session

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/kanatype/internal/model"
	"github.com/verte-zerg/kanatype/internal/problem"
	"github.com/verte-zerg/kanatype/internal/romaji"
	"github.com/verte-zerg/kanatype/internal/stats"
)

var (
	// ErrInvalidState is returned when an operation does not fit the session state.
	ErrInvalidState = errors.New("invalid session state")
	// ErrEmptyProblemSet is returned by Start when there is nothing to type.
	ErrEmptyProblemSet = errors.New("empty problem set")
)

// State is the lifecycle state of a session.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Cursor points at the next character to type. Char is the rune index
// within the current segment's target reading.
type Cursor struct {
	Problem int
	Word    int
	Segment int
	Char    int
	Pending string
}

// Position identifies a character by its rune index within a word target.
type Position struct {
	Problem int
	Word    int
	Char    int
}

// Mistake records one rejected key.
type Mistake struct {
	Position Position
	Expected rune
	Key      rune
	At       time.Time
}

// WordResult records how a word was finished.
type WordResult struct {
	Problem    int
	Word       int
	StartedAt  time.Time
	FinishedAt time.Time
	Mistakes   int
	Skipped    bool
}

// Duration returns the time spent on the word.
func (r WordResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type wordTarget struct {
	runes   []rune
	offsets []int
}

type wordKey struct {
	problem int
	word    int
}

// Session is a single typing run. It is not safe for concurrent use.
type Session struct {
	table    *romaji.Table
	problems []problem.Problem
	targets  [][]wordTarget

	state  State
	cursor Cursor
	offset int

	startedAt   time.Time
	lastAt      time.Time
	endedAt     time.Time
	wordStarted time.Time

	wordMistakes int
	mistakes     []Mistake
	results      []WordResult
	missed       map[Position]bool
	skippedAt    map[wordKey]int
	chars        map[string]*model.CharAggregate
	lastCommitAt time.Time

	keystrokes int
	correct    int
	incorrect  int
	backspaces int
	committed  int
}

// New returns a session using the default romaji table.
func New() *Session {
	return NewWithTable(romaji.Default)
}

// NewWithTable returns a session using a custom romaji table.
func NewWithTable(table *romaji.Table) *Session {
	return &Session{table: table}
}

// Start begins a new run over problems, discarding any previous run.
func (s *Session) Start(problems []problem.Problem, at time.Time) error {
	targets := make([][]wordTarget, len(problems))
	total := 0
	for i, p := range problems {
		targets[i] = make([]wordTarget, len(p.Words))
		for j, w := range p.Words {
			targets[i][j] = s.wordTarget(w)
			total += len(targets[i][j].runes)
		}
	}
	if total == 0 {
		return fmt.Errorf("failed to start session: %w", ErrEmptyProblemSet)
	}

	s.problems = problems
	s.targets = targets
	s.state = InProgress
	s.cursor = Cursor{}
	s.offset = 0
	s.startedAt = at
	s.lastAt = at
	s.endedAt = time.Time{}
	s.wordStarted = at
	s.wordMistakes = 0
	s.mistakes = nil
	s.results = nil
	s.missed = make(map[Position]bool)
	s.skippedAt = make(map[wordKey]int)
	s.chars = make(map[string]*model.CharAggregate)
	s.lastCommitAt = at
	s.keystrokes = 0
	s.correct = 0
	s.incorrect = 0
	s.backspaces = 0
	s.committed = 0
	s.skipEmpty(at)
	s.syncCursor()
	return nil
}

// wordTarget builds the kana target of a word. Annotated readings written
// in romaji are converted to hiragana.
func (s *Session) wordTarget(w problem.Word) wordTarget {
	var t wordTarget
	for _, seg := range w.Segments {
		reading := seg.Reading
		if seg.Annotated && romaji.IsRomaji(reading) {
			if kana, ok := s.table.ToKana(reading); ok {
				reading = kana
			}
		}
		t.offsets = append(t.offsets, len(t.runes))
		t.runes = append(t.runes, []rune(reading)...)
	}
	return t
}

// OnKey feeds one key to the matcher. Mismatches are recorded as mistakes
// and leave the cursor in place.
func (s *Session) OnKey(key rune, at time.Time) (romaji.Result, error) {
	if err := s.expect(InProgress, "type"); err != nil {
		return romaji.Result{}, err
	}
	remaining := s.remaining()
	res := s.table.Advance(s.cursor.Pending, key, remaining)
	s.keystrokes++
	s.lastAt = at
	switch res.Kind {
	case romaji.Mismatch:
		pos := s.position()
		s.incorrect++
		s.wordMistakes++
		s.missed[pos] = true
		s.mistakes = append(s.mistakes, Mistake{Position: pos, Expected: remaining[0], Key: key, At: at})
		s.tally(remaining[0]).Incorrect++
	case romaji.Pending:
		s.correct++
		s.cursor.Pending = res.Spelling
	case romaji.Committed:
		s.correct++
		s.committed += res.Consumed
		s.recordCommit(res.Output, at)
		s.advance(res.Consumed, at)
		if s.state == InProgress {
			s.cursor.Pending = res.Spelling
		}
	}
	return res, nil
}

// Backspace drops the last key of the pending spelling.
func (s *Session) Backspace(at time.Time) error {
	if err := s.expect(InProgress, "backspace"); err != nil {
		return err
	}
	if s.cursor.Pending == "" {
		return nil
	}
	_, size := utf8.DecodeLastRuneInString(s.cursor.Pending)
	s.cursor.Pending = s.cursor.Pending[:len(s.cursor.Pending)-size]
	s.backspaces++
	s.lastAt = at
	return nil
}

// ClearPending discards the pending spelling.
func (s *Session) ClearPending(at time.Time) error {
	if err := s.expect(InProgress, "clear pending input"); err != nil {
		return err
	}
	if s.cursor.Pending != "" {
		s.cursor.Pending = ""
		s.lastAt = at
	}
	return nil
}

// SkipWord moves to the start of the next word without finishing the current one.
func (s *Session) SkipWord(at time.Time) error {
	if err := s.expect(InProgress, "skip word"); err != nil {
		return err
	}
	s.lastAt = at
	s.skippedAt[wordKey{s.cursor.Problem, s.cursor.Word}] = s.offset
	s.finishWord(at, true)
	s.syncCursor()
	return nil
}

// Abort ends the run early and freezes its metrics.
func (s *Session) Abort(at time.Time) error {
	if err := s.expect(InProgress, "abort"); err != nil {
		return err
	}
	s.state = Aborted
	s.lastAt = at
	s.endedAt = at
	return nil
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Cursor returns the current cursor.
func (s *Session) Cursor() Cursor {
	return s.cursor
}

// Problems returns the problems of the current run.
func (s *Session) Problems() []problem.Problem {
	return s.problems
}

// Mistakes returns a copy of the mistake log.
func (s *Session) Mistakes() []Mistake {
	return append([]Mistake(nil), s.mistakes...)
}

// Results returns a copy of the finished word results.
func (s *Session) Results() []WordResult {
	return append([]WordResult(nil), s.results...)
}

// Target returns the kana target of a word, after romaji readings were converted.
func (s *Session) Target(problemIdx, wordIdx int) string {
	if problemIdx < 0 || problemIdx >= len(s.targets) || wordIdx < 0 || wordIdx >= len(s.targets[problemIdx]) {
		return ""
	}
	return string(s.targets[problemIdx][wordIdx].runes)
}

func (s *Session) expect(want State, op string) error {
	if s.state != want {
		return fmt.Errorf("cannot %s while %s: %w", op, s.state, ErrInvalidState)
	}
	return nil
}

// remaining is the rest of the current word followed by the rest of the
// problem, so the matcher can carry keys across word boundaries.
func (s *Session) remaining() []rune {
	words := s.targets[s.cursor.Problem]
	out := append([]rune(nil), words[s.cursor.Word].runes[s.offset:]...)
	for _, w := range words[s.cursor.Word+1:] {
		out = append(out, w.runes...)
	}
	return out
}

func (s *Session) position() Position {
	return Position{Problem: s.cursor.Problem, Word: s.cursor.Word, Char: s.offset}
}

func (s *Session) advance(n int, at time.Time) {
	for n > 0 && s.state == InProgress {
		w := s.targets[s.cursor.Problem][s.cursor.Word]
		step := len(w.runes) - s.offset
		if step > n {
			step = n
		}
		s.offset += step
		n -= step
		if s.offset >= len(w.runes) {
			s.finishWord(at, false)
		}
	}
	s.syncCursor()
}

func (s *Session) finishWord(at time.Time, skipped bool) {
	s.results = append(s.results, WordResult{
		Problem:    s.cursor.Problem,
		Word:       s.cursor.Word,
		StartedAt:  s.wordStarted,
		FinishedAt: at,
		Mistakes:   s.wordMistakes,
		Skipped:    skipped,
	})
	s.wordMistakes = 0
	s.wordStarted = at
	s.offset = 0
	s.cursor.Pending = ""
	s.cursor.Word++
	s.skipEmpty(at)
}

// skipEmpty moves past words without a target and completes the run when
// the last problem is exhausted.
func (s *Session) skipEmpty(at time.Time) {
	for {
		if s.cursor.Problem >= len(s.targets) {
			s.state = Completed
			s.endedAt = at
			s.cursor = Cursor{Problem: len(s.targets)}
			return
		}
		words := s.targets[s.cursor.Problem]
		if s.cursor.Word >= len(words) {
			s.cursor.Problem++
			s.cursor.Word = 0
			s.cursor.Pending = ""
			continue
		}
		if len(words[s.cursor.Word].runes) == 0 {
			s.cursor.Word++
			continue
		}
		return
	}
}

func (s *Session) syncCursor() {
	if s.state == Completed {
		return
	}
	w := s.targets[s.cursor.Problem][s.cursor.Word]
	seg := 0
	for i, start := range w.offsets {
		if start <= s.offset {
			seg = i
		}
	}
	// Empty segments share an offset with the next one; keep the last.
	s.cursor.Segment = seg
	s.cursor.Char = s.offset - w.offsets[seg]
}

// Metrics summarizes the run. It only depends on recorded events, so
// repeated calls return identical values.
func (s *Session) Metrics() Metrics {
	if s.state == NotStarted {
		return Metrics{}
	}
	end := s.lastAt
	if s.state == Completed || s.state == Aborted {
		end = s.endedAt
	}
	return s.metrics(end.Sub(s.startedAt))
}

// Elapsed returns the live clock: time since start while in progress, the
// final duration once the run has ended.
func (s *Session) Elapsed(now time.Time) time.Duration {
	switch s.state {
	case InProgress:
		if now.Before(s.startedAt) {
			return 0
		}
		return now.Sub(s.startedAt)
	case Completed, Aborted:
		return s.endedAt.Sub(s.startedAt)
	default:
		return 0
	}
}

// LiveMetrics is Metrics measured against now instead of the last event.
func (s *Session) LiveMetrics(now time.Time) Metrics {
	if s.state == NotStarted {
		return Metrics{}
	}
	return s.metrics(s.Elapsed(now))
}

// Metrics are derived session statistics.
type Metrics struct {
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
	KeysPerSecond  float64
	Accuracy       float64
}

func (s *Session) metrics(elapsed time.Duration) Metrics {
	m := Metrics{
		Elapsed:        elapsed,
		Keystrokes:     s.keystrokes,
		Correct:        s.correct,
		Incorrect:      s.incorrect,
		Backspaces:     s.backspaces,
		CommittedChars: s.committed,
	}
	for _, r := range s.results {
		if r.Skipped {
			m.WordsSkipped++
		} else {
			m.WordsCompleted++
		}
	}
	m.WPM, m.CPM, m.Accuracy = stats.SessionMetrics(s.committed, s.correct, s.incorrect, elapsed.Milliseconds())
	if secs := elapsed.Seconds(); secs > 0 {
		m.KeysPerSecond = float64(s.correct) / secs
	}
	return m
}
