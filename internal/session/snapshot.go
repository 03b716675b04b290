package session

// CharState tags one target character for rendering.
type CharState int

const (
	Untyped CharState = iota
	Current
	Correct
	Incorrect
)

func (c CharState) String() string {
	switch c {
	case Untyped:
		return "untyped"
	case Current:
		return "current"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// CharView is one target character. Missed is set when a key was rejected
// at this character, even if it was typed correctly afterwards.
type CharView struct {
	Rune   rune
	State  CharState
	Missed bool
}

// SegmentView is one segment of the current problem.
type SegmentView struct {
	Display   string
	Annotated bool
	Target    []CharView
}

// WordView is one word of the current problem.
type WordView struct {
	Segments []SegmentView
	Done     bool
	Skipped  bool
	Active   bool
}

// Snapshot is a read-only view of the session for renderers.
type Snapshot struct {
	State        State
	Title        string
	ProblemIndex int
	ProblemCount int
	Cursor       Cursor
	Words        []WordView
	Pending      string
	Guide        string
	Metrics      Metrics
}

// Snapshot returns the render view of the current problem. Once the run is
// completed it shows the last problem fully typed.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:        s.state,
		ProblemCount: len(s.problems),
		Cursor:       s.cursor,
		Pending:      s.cursor.Pending,
		Metrics:      s.Metrics(),
	}
	if len(s.problems) == 0 {
		return snap
	}
	pi := s.cursor.Problem
	if pi >= len(s.problems) {
		pi = len(s.problems) - 1
	}
	snap.ProblemIndex = pi
	snap.Title = s.problems[pi].Title
	for wi, w := range s.problems[pi].Words {
		target := s.targets[pi][wi]
		done := s.state == Completed || pi < s.cursor.Problem || wi < s.cursor.Word
		active := !done && wi == s.cursor.Word
		skipAt, skipped := s.skippedAt[wordKey{pi, wi}]
		view := WordView{Done: done, Skipped: skipped, Active: active && s.state == InProgress}
		for si, seg := range w.Segments {
			end := len(target.runes)
			if si+1 < len(target.offsets) {
				end = target.offsets[si+1]
			}
			sv := SegmentView{Display: seg.Display, Annotated: seg.Annotated}
			for k := target.offsets[si]; k < end; k++ {
				missed := s.missed[Position{Problem: pi, Word: wi, Char: k}]
				cv := CharView{Rune: target.runes[k], Missed: missed}
				switch {
				case done && skipped && k >= skipAt:
					cv.State = Incorrect
				case done || (active && k < s.offset):
					cv.State = Correct
					if missed {
						cv.State = Incorrect
					}
				case active && k == s.offset:
					cv.State = Current
				default:
					cv.State = Untyped
				}
				sv.Target = append(sv.Target, cv)
			}
			view.Segments = append(view.Segments, sv)
		}
		snap.Words = append(snap.Words, view)
	}
	if s.state == InProgress {
		snap.Guide = s.table.GuideFrom(s.cursor.Pending, s.remaining())
	}
	return snap
}
