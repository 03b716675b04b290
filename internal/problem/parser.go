package problem

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const titleMarker = "#title"

var (
	// ErrMissingTitle is returned when the first non-empty line is not a title line.
	ErrMissingTitle = errors.New("missing #title line")
	// ErrMalformedAnnotation is returned for annotations without a proper display/reading pair.
	ErrMalformedAnnotation = errors.New("malformed annotation")
	// ErrUnbalancedAnnotation is returned for unclosed, nested or stray parentheses.
	ErrUnbalancedAnnotation = errors.New("unbalanced annotation")
	// ErrDanglingEscape is returned for a backslash at the end of a line.
	ErrDanglingEscape = errors.New("dangling escape")
)

// ParseError locates a parse failure. Line and Column are 1-based; Column
// counts runes.
type ParseError struct {
	Kind   error
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

type tokenKind int

const (
	tokSegment tokenKind = iota
	tokJoiner
	tokSeparator
	tokSpace
)

type token struct {
	kind    tokenKind
	segment Segment
}

// Parse parses a whole problem file. The first non-empty line must be the
// title line; every later non-blank line becomes one Problem.
func Parse(raw string) (Set, error) {
	var set Set
	titled := false
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		lineNo := i + 1
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !titled {
			words, err := parseTitle(line, lineNo)
			if err != nil {
				return Set{}, err
			}
			set.TitleWords = words
			set.Title = Problem{Words: words}.Display()
			titled = true
			continue
		}
		words, err := parseLine(line, lineNo, 0)
		if err != nil {
			return Set{}, err
		}
		if len(words) == 0 {
			continue
		}
		set.Problems = append(set.Problems, Problem{Line: lineNo, Words: words})
	}
	if !titled {
		return Set{}, &ParseError{Kind: ErrMissingTitle, Line: 1, Column: 1}
	}
	for i := range set.Problems {
		set.Problems[i].Title = set.Title
	}
	return set, nil
}

// ParseLine parses a single problem line into words.
func ParseLine(line string) ([]Word, error) {
	return parseLine(strings.TrimSuffix(line, "\r"), 1, 0)
}

func parseTitle(line string, lineNo int) ([]Word, error) {
	if !strings.HasPrefix(line, titleMarker) {
		return nil, &ParseError{Kind: ErrMissingTitle, Line: lineNo, Column: 1}
	}
	rest := line[len(titleMarker):]
	if rest != "" && rest[0] != ' ' {
		return nil, &ParseError{Kind: ErrMissingTitle, Line: lineNo, Column: 1}
	}
	content := strings.TrimSpace(rest)
	offset := utf8.RuneCountInString(titleMarker)
	if content != "" {
		offset += utf8.RuneCountInString(rest[:strings.Index(rest, content)])
	}
	return parseLine(content, lineNo, offset)
}

func parseLine(line string, lineNo, offset int) ([]Word, error) {
	tokens, err := tokenize(line)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Line = lineNo
			perr.Column += offset
		}
		return nil, err
	}
	return group(tokens), nil
}

// tokenize splits a line into segments, joiners and separators. Errors carry
// a column but no line.
func tokenize(line string) ([]token, error) {
	rs := []rune(line)
	var tokens []token
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			tokens = append(tokens, token{kind: tokSegment, segment: Segment{Display: plain.String(), Reading: plain.String()}})
			plain.Reset()
		}
	}
	for pos := 0; pos < len(rs); pos++ {
		switch rs[pos] {
		case '\\':
			if pos+1 >= len(rs) {
				return nil, &ParseError{Kind: ErrDanglingEscape, Column: pos + 1}
			}
			pos++
			plain.WriteRune(rs[pos])
		case '(':
			flush()
			seg, next, err := annotation(rs, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokSegment, segment: seg})
			pos = next
		case ')':
			return nil, &ParseError{Kind: ErrUnbalancedAnnotation, Column: pos + 1}
		case '-':
			flush()
			tokens = append(tokens, token{kind: tokJoiner})
		case '/':
			flush()
			tokens = append(tokens, token{kind: tokSeparator})
		case ' ':
			flush()
			tokens = append(tokens, token{kind: tokSpace})
		default:
			plain.WriteRune(rs[pos])
		}
	}
	flush()
	return tokens, nil
}

// annotation parses "(display/reading)" starting at the opening paren and
// returns the index of the closing paren.
func annotation(rs []rune, start int) (Segment, int, error) {
	var display, reading strings.Builder
	cur := &display
	slash := false
	for pos := start + 1; pos < len(rs); pos++ {
		switch rs[pos] {
		case '\\':
			if pos+1 >= len(rs) {
				return Segment{}, 0, &ParseError{Kind: ErrDanglingEscape, Column: pos + 1}
			}
			pos++
			cur.WriteRune(rs[pos])
		case '(':
			return Segment{}, 0, &ParseError{Kind: ErrUnbalancedAnnotation, Column: pos + 1}
		case '/':
			if slash {
				return Segment{}, 0, &ParseError{Kind: ErrMalformedAnnotation, Column: pos + 1}
			}
			slash = true
			cur = &reading
		case ')':
			if !slash || display.Len() == 0 || reading.Len() == 0 {
				return Segment{}, 0, &ParseError{Kind: ErrMalformedAnnotation, Column: start + 1}
			}
			return Segment{Display: display.String(), Reading: reading.String(), Annotated: true}, pos, nil
		default:
			cur.WriteRune(rs[pos])
		}
	}
	return Segment{}, 0, &ParseError{Kind: ErrUnbalancedAnnotation, Column: start + 1}
}

// group folds tokens into words. A joiner only merges when it sits between
// two segments; otherwise it is typed as a literal "-" word.
func group(tokens []token) []Word {
	var words []Word
	var current []Segment
	finish := func() {
		if len(current) > 0 {
			words = append(words, Word{Segments: current})
			current = nil
		}
	}
	joined := false
	for i, tok := range tokens {
		switch tok.kind {
		case tokSegment:
			if !joined {
				finish()
			}
			current = append(current, tok.segment)
			joined = false
		case tokJoiner:
			nextIsSegment := i+1 < len(tokens) && tokens[i+1].kind == tokSegment
			if len(current) > 0 && nextIsSegment {
				joined = true
				continue
			}
			finish()
			words = append(words, Word{Segments: []Segment{{Display: "-", Reading: "-"}}})
			joined = false
		case tokSeparator:
			finish()
			joined = false
		case tokSpace:
			finish()
			words = append(words, Word{Segments: []Segment{{Display: " ", Reading: " "}}})
			joined = false
		}
	}
	finish()
	return words
}
