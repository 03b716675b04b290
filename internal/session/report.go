package session

import (
	"sort"
	"time"

	"github.com/verte-zerg/kanatype/internal/model"
	"github.com/verte-zerg/kanatype/internal/romaji"
	"github.com/verte-zerg/kanatype/internal/stats"
)

// tally returns the per-kana aggregate for r. Katakana and fullwidth forms
// share an entry with their folded form.
func (s *Session) tally(r rune) *model.CharAggregate {
	key := romaji.Fold(string(r))
	entry, ok := s.chars[key]
	if !ok {
		entry = &model.CharAggregate{Char: key}
		s.chars[key] = entry
	}
	return entry
}

// recordCommit spreads the time since the previous commit over the
// committed characters.
func (s *Session) recordCommit(output string, at time.Time) {
	runes := []rune(output)
	if len(runes) == 0 {
		return
	}
	share := at.Sub(s.lastCommitAt).Milliseconds() / int64(len(runes))
	for _, r := range runes {
		entry := s.tally(r)
		entry.Correct++
		entry.LatencySumMs += share
		entry.LatencyCount++
	}
	s.lastCommitAt = at
}

// Report builds the post-session report.
func (s *Session) Report() stats.Result {
	m := s.Metrics()
	r := stats.Result{
		Finished:       s.state == Completed,
		Elapsed:        m.Elapsed,
		Keystrokes:     m.Keystrokes,
		Correct:        m.Correct,
		Incorrect:      m.Incorrect,
		Backspaces:     m.Backspaces,
		CommittedChars: m.CommittedChars,
		WordsCompleted: m.WordsCompleted,
		WordsSkipped:   m.WordsSkipped,
		WPM:            m.WPM,
		CPM:            m.CPM,
		Accuracy:       m.Accuracy,
		KeysPerSecond:  m.KeysPerSecond,
	}
	if len(s.problems) > 0 {
		r.Title = s.problems[0].Title
	}
	for _, wr := range s.results {
		if wr.Skipped {
			continue
		}
		d := wr.Duration()
		n := len(s.targets[wr.Problem][wr.Word].runes)
		if d <= 0 || n == 0 {
			continue
		}
		_, cpm, _ := stats.SessionMetrics(n, 0, 0, d.Milliseconds())
		r.WordCPM = append(r.WordCPM, cpm)
	}
	keys := make([]string, 0, len(s.chars))
	for k := range s.chars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.Chars = append(r.Chars, *s.chars[k])
	}
	return r
}
