package romaji

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Guide returns the preferred keystrokes for typing target from scratch.
func Guide(target string) string {
	return Default.Guide(target)
}

// Guide returns the preferred keystrokes for typing target from scratch.
func (t *Table) Guide(target string) string {
	rs := []rune(target)
	var b strings.Builder
	for i := 0; i < len(rs); {
		spelling, n := t.guideStep(rs[i:])
		b.WriteString(spelling)
		i += n
	}
	return b.String()
}

// GuideFrom returns the keys still needed for target when pending has
// already been typed towards its first character. An unrelated pending
// spelling is ignored.
func (t *Table) GuideFrom(pending string, target []rune) string {
	full := t.Guide(string(target))
	if pending == "" || strings.HasPrefix(full, pending) {
		return full[len(pending):]
	}
	if len(target) == 0 {
		return ""
	}
	var best candidate
	found := false
	for _, c := range t.candidates(target) {
		if c.cond != condNone || !strings.HasPrefix(c.spelling, pending) {
			continue
		}
		if !found || c.kana > best.kana {
			best = c
			found = true
		}
	}
	if !found {
		return full
	}
	return best.spelling[len(pending):] + t.Guide(string(target[best.kana:]))
}

func (t *Table) guideStep(rs []rune) (string, int) {
	switch foldRune(rs[0]) {
	case 'っ':
		if len(rs) > 1 {
			next, _ := t.guideStep(rs[1:])
			if r, _ := utf8.DecodeRuneInString(next); isGeminateLetter(r) {
				return string(r), 1
			}
		}
	case 'ん':
		if len(rs) > 1 {
			next, _ := t.guideStep(rs[1:])
			r, _ := utf8.DecodeRuneInString(next)
			if r <= unicode.MaxASCII && unicode.IsLetter(r) && !isVowel(r) && r != 'n' && r != 'y' {
				return "n", 1
			}
		}
	}
	var best candidate
	found := false
	for _, c := range t.candidates(rs) {
		if c.cond != condNone {
			continue
		}
		if !found || c.kana > best.kana {
			best = c
			found = true
		}
	}
	return best.spelling, best.kana
}

// ToKana converts an ASCII romaji string into hiragana. It reports false
// when some part of the input has no kana spelling.
func ToKana(romaji string) (string, bool) {
	return Default.ToKana(romaji)
}

// ToKana converts an ASCII romaji string into hiragana. It reports false
// when some part of the input has no kana spelling.
func (t *Table) ToKana(romaji string) (string, bool) {
	s := strings.ToLower(romaji)
	var b strings.Builder
	for i := 0; i < len(s); {
		if i+1 < len(s) && s[i] == s[i+1] && isGeminateLetter(rune(s[i])) {
			b.WriteString("っ")
			i++
			continue
		}
		matched := false
		for n := t.maxSpell; n >= 1; n-- {
			if i+n > len(s) {
				continue
			}
			kana, ok := t.reverse[s[i:i+n]]
			if !ok || !isKana(kana) {
				continue
			}
			b.WriteString(kana)
			i += n
			matched = true
			break
		}
		if matched {
			continue
		}
		if s[i] == 'n' {
			b.WriteString("ん")
			i++
			continue
		}
		return "", false
	}
	return b.String(), true
}

// IsRomaji reports whether s looks like a romaji reading: ASCII letters
// and apostrophes only.
func IsRomaji(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || r == '\'') {
			return false
		}
	}
	return true
}

func isKana(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.Hiragana, r) {
			return false
		}
	}
	return true
}
