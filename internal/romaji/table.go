// Package romaji maps romaji keystrokes onto kana targets.
package romaji

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Rule pairs a kana chunk with one of its spellings.
type Rule struct {
	Kana     string
	Spelling string
}

// Table is an immutable kana -> spellings mapping.
type Table struct {
	spellings map[string][]string
	reverse   map[string]string
	maxChunk  int
	maxSpell  int
}

// Default is the process-wide conversion table.
var Default = NewTable(defaultRules)

// NewTable builds a table from rules. Spellings for the same kana keep
// their declaration order; the first one is the preferred spelling.
func NewTable(rules []Rule) *Table {
	t := &Table{
		spellings: make(map[string][]string, len(rules)),
		reverse:   make(map[string]string, len(rules)),
	}
	for _, r := range rules {
		if r.Kana == "" || r.Spelling == "" {
			continue
		}
		t.spellings[r.Kana] = append(t.spellings[r.Kana], r.Spelling)
		if _, ok := t.reverse[r.Spelling]; !ok {
			t.reverse[r.Spelling] = r.Kana
		}
		if n := len([]rune(r.Kana)); n > t.maxChunk {
			t.maxChunk = n
		}
		if n := len(r.Spelling); n > t.maxSpell {
			t.maxSpell = n
		}
	}
	return t
}

// Spellings returns the spellings registered for a kana chunk. Katakana and
// fullwidth input is folded first.
func (t *Table) Spellings(kana string) []string {
	out := t.spellings[Fold(kana)]
	return append([]string(nil), out...)
}

// Rules returns every rule, sorted by kana then declaration order.
func (t *Table) Rules() []Rule {
	keys := make([]string, 0, len(t.spellings))
	for k := range t.spellings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []Rule
	for _, k := range keys {
		for _, s := range t.spellings[k] {
			out = append(out, Rule{Kana: k, Spelling: s})
		}
	}
	return out
}

// Fold normalizes a target string for table lookup: katakana becomes
// hiragana and fullwidth ASCII becomes ASCII.
func Fold(s string) string {
	return strings.Map(foldRune, s)
}

func foldRune(r rune) rune {
	switch {
	case r >= 'ァ' && r <= 'ヶ':
		return r - 0x60
	}
	if p := width.LookupRune(r); p.Kind() == width.EastAsianFullwidth {
		if n := p.Narrow(); n != 0 {
			return n
		}
	}
	return r
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'i', 'u', 'e', 'o':
		return true
	}
	return false
}

// isGeminateLetter reports whether a spelling starting with r may be
// doubled to produce っ. x and l start small-kana spellings instead.
func isGeminateLetter(r rune) bool {
	if r > unicode.MaxASCII || !unicode.IsLetter(r) || isVowel(r) {
		return false
	}
	switch r {
	case 'n', 'x', 'l':
		return false
	}
	return true
}

func rows(kana, spellings string) []Rule {
	k := strings.Fields(kana)
	s := strings.Split(spellings, "|")
	out := make([]Rule, 0, len(k)*2)
	for i, kk := range k {
		if i >= len(s) {
			break
		}
		for _, sp := range strings.Fields(s[i]) {
			out = append(out, Rule{Kana: kk, Spelling: sp})
		}
	}
	return out
}

var defaultRules = concat(
	rows("あ い う え お", "a|i yi|u wu whu|e|o"),
	rows("か き く け こ", "ka ca|ki|ku cu qu|ke|ko co"),
	rows("さ し す せ そ", "sa|si shi ci|su|se ce|so"),
	rows("た ち つ て と", "ta|ti chi|tu tsu|te|to"),
	rows("な に ぬ ね の", "na|ni|nu|ne|no"),
	rows("は ひ ふ へ ほ", "ha|hi|hu fu|he|ho"),
	rows("ま み む め も", "ma|mi|mu|me|mo"),
	rows("や ゆ よ", "ya|yu|yo"),
	rows("ら り る れ ろ", "ra|ri|ru|re|ro"),
	rows("わ ゐ ゑ を ん", "wa|wyi|wye|wo|nn xn n'"),
	rows("が ぎ ぐ げ ご", "ga|gi|gu|ge|go"),
	rows("ざ じ ず ぜ ぞ", "za|zi ji|zu|ze|zo"),
	rows("だ ぢ づ で ど", "da|di|du|de|do"),
	rows("ば び ぶ べ ぼ", "ba|bi|bu|be|bo"),
	rows("ぱ ぴ ぷ ぺ ぽ", "pa|pi|pu|pe|po"),
	rows("ゔ", "vu"),

	rows("ぁ ぃ ぅ ぇ ぉ", "xa la|xi li xyi lyi|xu lu|xe le xye lye|xo lo"),
	rows("ゃ ゅ ょ ゎ っ", "xya lya|xyu lyu|xyo lyo|xwa lwa|xtu ltu xtsu ltsu"),
	rows("ゕ ゖ", "xka lka|xke lke"),

	rows("きゃ きぃ きゅ きぇ きょ", "kya|kyi|kyu|kye|kyo"),
	rows("ぎゃ ぎぃ ぎゅ ぎぇ ぎょ", "gya|gyi|gyu|gye|gyo"),
	rows("しゃ しぃ しゅ しぇ しょ", "sya sha|syi|syu shu|sye she|syo sho"),
	rows("じゃ じぃ じゅ じぇ じょ", "ja zya jya|zyi jyi|ju zyu jyu|je zye jye|jo zyo jyo"),
	rows("ちゃ ちぃ ちゅ ちぇ ちょ", "tya cha cya|tyi cyi|tyu chu cyu|tye che cye|tyo cho cyo"),
	rows("ぢゃ ぢぃ ぢゅ ぢぇ ぢょ", "dya|dyi|dyu|dye|dyo"),
	rows("にゃ にぃ にゅ にぇ にょ", "nya|nyi|nyu|nye|nyo"),
	rows("ひゃ ひぃ ひゅ ひぇ ひょ", "hya|hyi|hyu|hye|hyo"),
	rows("びゃ びぃ びゅ びぇ びょ", "bya|byi|byu|bye|byo"),
	rows("ぴゃ ぴぃ ぴゅ ぴぇ ぴょ", "pya|pyi|pyu|pye|pyo"),
	rows("みゃ みぃ みゅ みぇ みょ", "mya|myi|myu|mye|myo"),
	rows("りゃ りぃ りゅ りぇ りょ", "rya|ryi|ryu|rye|ryo"),

	rows("てゃ てぃ てゅ てぇ てょ", "tha|thi|thu|the|tho"),
	rows("でゃ でぃ でゅ でぇ でょ", "dha|dhi|dhu|dhe|dho"),
	rows("とぁ とぃ とぅ とぇ とぉ", "twa|twi|twu|twe|two"),
	rows("どぁ どぃ どぅ どぇ どぉ", "dwa|dwi|dwu|dwe|dwo"),
	rows("つぁ つぃ つぇ つぉ", "tsa|tsi|tse|tso"),
	rows("ふぁ ふぃ ふぅ ふぇ ふぉ", "fa fwa|fi fwi fyi|fwu|fe fwe fye|fo fwo"),
	rows("ふゃ ふゅ ふょ", "fya|fyu|fyo"),
	rows("ゔぁ ゔぃ ゔぇ ゔぉ", "va|vi vyi|ve vye|vo"),
	rows("ゔゃ ゔゅ ゔょ", "vya|vyu|vyo"),
	rows("うぁ うぃ うぇ うぉ いぇ", "wha|wi whi|we whe|who|ye"),
	rows("くぁ くぃ くぅ くぇ くぉ", "qa kwa qwa|qi qwi qyi|qwu|qe qwe qye|qo qwo"),
	rows("くゃ くゅ くょ", "qya|qyu|qyo"),
	rows("ぐぁ ぐぃ ぐぅ ぐぇ ぐぉ", "gwa|gwi|gwu|gwe|gwo"),
	rows("すぁ すぃ すぅ すぇ すぉ", "swa|swi|swu|swe|swo"),

	rows("ー 。 、 ・ 「 」 『 』 〜", "-|.|,|/|[|]|[|]|~"),
)

func concat(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
