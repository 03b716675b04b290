package romaji

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind tags the outcome of a single keystroke.
type Kind int

const (
	// Pending means the spelling is a valid partial input; nothing was committed.
	Pending Kind = iota
	// Committed means one or more target characters were satisfied.
	Committed
	// Mismatch means the key was rejected and the pending spelling is unchanged.
	Mismatch
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Result is the outcome of Advance.
//
// For Committed, Output holds the satisfied target characters exactly as
// they appear in the target, Consumed is their rune count, KeysConsumed is
// the number of keys from the accumulated spelling that were used, and
// Spelling is whatever was carried over into the next character.
type Result struct {
	Kind         Kind
	Spelling     string
	Output       string
	Consumed     int
	KeysConsumed int
}

type condition int

const (
	condNone condition = iota
	// condNasal is the single "n" for ん.
	condNasal
	// condGeminate is a doubled consonant for っ.
	condGeminate
)

type candidate struct {
	kana     int
	spelling string
	cond     condition
}

type matchState int

const (
	stateDead matchState = iota
	statePrefix
	stateExact
	stateExactDeferred
)

type classified struct {
	state matchState
	exact candidate
}

// Advance feeds one key against the remaining target using the Default table.
func Advance(pending string, key rune, remaining []rune) Result {
	return Default.Advance(pending, key, remaining)
}

// Advance feeds one key against the remaining target.
//
// pending is the spelling accumulated so far for the current target
// character; the caller owns it and replaces it with Result.Spelling unless
// the result is a Mismatch.
func (t *Table) Advance(pending string, key rune, remaining []rune) Result {
	if len(remaining) == 0 {
		return Result{Kind: Mismatch, Spelling: pending}
	}
	cands := t.candidates(remaining)
	s := pending + string(key)
	c := classify(s, cands)
	switch c.state {
	case stateExact:
		return Result{
			Kind:         Committed,
			Output:       string(remaining[:c.exact.kana]),
			Consumed:     c.exact.kana,
			KeysConsumed: utf8.RuneCountInString(s),
		}
	case statePrefix, stateExactDeferred:
		return Result{Kind: Pending, Spelling: s}
	default:
		return t.retroactive(pending, key, remaining, cands)
	}
}

// retroactive commits the rule that pending fully spelled once key proved
// that no longer rule applies, then re-feeds key against the rest.
func (t *Table) retroactive(pending string, key rune, remaining []rune, cands []candidate) Result {
	mismatch := Result{Kind: Mismatch, Spelling: pending}
	if pending == "" {
		return mismatch
	}
	full, ok := bestExact(pending, cands, true)
	if !ok {
		return mismatch
	}
	switch full.cond {
	case condNasal:
		if key > unicode.MaxASCII || !unicode.IsLetter(key) || isVowel(key) || key == 'n' || key == 'y' {
			return mismatch
		}
	case condGeminate:
		last, _ := utf8.DecodeLastRuneInString(pending)
		if key != last {
			return mismatch
		}
	}
	rest := remaining[full.kana:]
	if len(rest) == 0 {
		return mismatch
	}
	inner := t.Advance("", key, rest)
	if inner.Kind == Mismatch {
		return mismatch
	}
	out := Result{
		Kind:         Committed,
		Output:       string(remaining[:full.kana]),
		Consumed:     full.kana,
		KeysConsumed: utf8.RuneCountInString(pending),
	}
	if inner.Kind == Committed {
		out.Output += inner.Output
		out.Consumed += inner.Consumed
		out.KeysConsumed += inner.KeysConsumed
	}
	out.Spelling = inner.Spelling
	return out
}

func classify(s string, cands []candidate) classified {
	exact, hasExact := bestExact(s, cands, false)
	_, hasConditional := bestConditional(s, cands)
	longer := false
	for _, c := range cands {
		if len(c.spelling) > len(s) && strings.HasPrefix(c.spelling, s) {
			longer = true
			break
		}
	}
	switch {
	case hasExact && !longer && !hasConditional:
		return classified{state: stateExact, exact: exact}
	case hasExact || hasConditional:
		return classified{state: stateExactDeferred, exact: exact}
	case longer:
		return classified{state: statePrefix}
	default:
		return classified{state: stateDead}
	}
}

// bestExact returns the candidate spelled exactly s that commits the most
// target characters. Conditional candidates are only considered when
// withConditional is set, and lose to unconditional ones.
func bestExact(s string, cands []candidate, withConditional bool) (candidate, bool) {
	var best candidate
	found := false
	for _, c := range cands {
		if c.spelling != s {
			continue
		}
		if c.cond != condNone && !withConditional {
			continue
		}
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func better(a, b candidate) bool {
	if (a.cond == condNone) != (b.cond == condNone) {
		return a.cond == condNone
	}
	return a.kana > b.kana
}

func bestConditional(s string, cands []candidate) (candidate, bool) {
	for _, c := range cands {
		if c.cond != condNone && c.spelling == s {
			return c, true
		}
	}
	return candidate{}, false
}

// candidates lists every spelling that can start the remaining target.
func (t *Table) candidates(remaining []rune) []candidate {
	folded := []rune(Fold(string(remaining)))
	var out []candidate
	for n := 1; n <= t.maxChunk && n <= len(folded); n++ {
		for _, sp := range t.spellings[string(folded[:n])] {
			out = append(out, candidate{kana: n, spelling: sp})
		}
	}
	if _, ok := t.spellings[string(folded[0])]; !ok {
		out = append(out, candidate{kana: 1, spelling: string(folded[0])})
	}
	switch folded[0] {
	case 'ん':
		out = append(out, candidate{kana: 1, spelling: "n", cond: condNasal})
	case 'っ':
		if len(remaining) > 1 {
			seen := map[rune]bool{}
			for _, next := range t.candidates(remaining[1:]) {
				if next.cond != condNone {
					continue
				}
				r, _ := utf8.DecodeRuneInString(next.spelling)
				if !isGeminateLetter(r) || seen[r] {
					continue
				}
				seen[r] = true
				out = append(out, candidate{kana: 1, spelling: string(r), cond: condGeminate})
			}
		}
	}
	return out
}
