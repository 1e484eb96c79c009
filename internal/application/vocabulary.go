package application

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Vocabulary corrections for domain terms the speech recognizer reliably
// mishears. Matched whole-word and case-insensitive; replacements are never
// themselves keys, which keeps Normalize idempotent.
var vocabPairs = []struct{ heard, term string }{
	{"expresso", "espresso"},
	{"express o", "espresso"},
	{"ground", "grind"},
	{"grinned", "grind"},
	{"grynd", "grind"},
	{"doze", "dose"},
	{"dos", "dose"},
	{"dosage", "dose"},
	{"yeild", "yield"},
	{"yelled", "yield"},
	{"temper", "tamper"},
	{"tampa", "tamper"},
	{"roster", "roaster"},
	{"rooster", "roaster"},
	{"oregon", "origin"},
	{"porter filter", "portafilter"},
	{"porta filter", "portafilter"},
}

var vocabRules = buildVocabRules()

type vocabRule struct {
	re   *regexp.Regexp
	term string
}

func buildVocabRules() []vocabRule {
	rules := make([]vocabRule, 0, len(vocabPairs))
	for _, p := range vocabPairs {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p.heard) + `\b`)
		rules = append(rules, vocabRule{re: re, term: p.term})
	}
	return rules
}

var onesWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var smallWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// splitNumberRe catches the recognizer artifact where a two-digit number is
// rendered as the tens part plus a trailing ones digit or word, e.g. "30 4"
// or "30 four".
var splitNumberRe = regexp.MustCompile(`(?i)\b([2-9])0 +(one|two|three|four|five|six|seven|eight|nine|[1-9])\b`)

var wordTokenRe = regexp.MustCompile(`[A-Za-z]+`)

// Normalize rewrites a raw transcript into the form handed to the model:
// vocabulary substitution, split-number reassembly, number-word recognition
// and whitespace collapse, in that order. Total and idempotent.
func Normalize(raw string) string {
	s := raw

	for _, r := range vocabRules {
		s = r.re.ReplaceAllString(s, r.term)
	}

	s = collapseSplitNumbers(s)
	s = replaceNumberWords(s)
	s = collapseSplitNumbers(s)

	return strings.Join(strings.Fields(s), " ")
}

// collapseSplitNumbers rewrites split two-digit numbers into one numeral.
// It runs before the general recognizer so "30 4" is not read as two
// separate numbers, and again after it because the recognizer itself can
// surface the digit form ("thirty 4" becomes "30 4" first).
func collapseSplitNumbers(s string) string {
	return splitNumberRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := splitNumberRe.FindStringSubmatch(m)
		ones := sub[2]
		if v, ok := onesWords[strings.ToLower(ones)]; ok {
			return sub[1] + strconv.Itoa(v)
		}
		return sub[1] + ones
	})
}

type numberSpan struct {
	start, end int
	value      float64
}

// replaceNumberWords finds every spoken numeric phrase and substitutes its
// canonical numeral. Replacements are applied from the highest offset down
// so earlier spans keep valid offsets; non-finite values are dropped.
func replaceNumberWords(s string) string {
	tokens := wordTokenRe.FindAllStringIndex(s, -1)
	spans := scanNumberSpans(s, tokens)

	for i := len(spans) - 1; i >= 0; i-- {
		sp := spans[i]
		if math.IsNaN(sp.value) || math.IsInf(sp.value, 0) {
			continue
		}
		numeral := strconv.FormatFloat(sp.value, 'f', -1, 64)
		s = s[:sp.start] + numeral + s[sp.end:]
	}
	return s
}

func scanNumberSpans(s string, tokens [][]int) []numberSpan {
	var spans []numberSpan

	for i := 0; i < len(tokens); {
		word := strings.ToLower(s[tokens[i][0]:tokens[i][1]])

		value, ok := 0.0, false
		j := i

		if v, isTens := tensWords[word]; isTens {
			value, ok = float64(v), true
			j++
			if j < len(tokens) && adjacent(s, tokens[j-1], tokens[j]) {
				next := strings.ToLower(s[tokens[j][0]:tokens[j][1]])
				if u, isOnes := onesWords[next]; isOnes {
					value += float64(u)
					j++
				}
			}
		} else if v, isSmall := smallWords[word]; isSmall {
			value, ok = float64(v), true
			j++
		}

		if !ok {
			i++
			continue
		}

		// "three point five" style decimals
		if j+1 < len(tokens) && adjacent(s, tokens[j-1], tokens[j]) &&
			strings.EqualFold(s[tokens[j][0]:tokens[j][1]], "point") {
			frac, consumed := scanFraction(s, tokens, j+1)
			if consumed > 0 {
				value += frac
				j += 1 + consumed
			}
		}

		spans = append(spans, numberSpan{
			start: tokens[i][0],
			end:   tokens[j-1][1],
			value: value,
		})
		i = j
	}
	return spans
}

func scanFraction(s string, tokens [][]int, from int) (float64, int) {
	frac, scale, consumed := 0.0, 0.1, 0
	for k := from; k < len(tokens); k++ {
		if !adjacent(s, tokens[k-1], tokens[k]) {
			break
		}
		word := strings.ToLower(s[tokens[k][0]:tokens[k][1]])
		d, ok := smallWords[word]
		if !ok || d > 9 {
			break
		}
		frac += float64(d) * scale
		scale /= 10
		consumed++
	}
	return frac, consumed
}

// adjacent reports whether only spaces or hyphens separate two tokens, so
// "thirty-four" and "thirty four" group while "four. Two" does not.
func adjacent(s string, prev, next []int) bool {
	gap := s[prev[1]:next[0]]
	if gap == "" {
		return false
	}
	return strings.Trim(gap, " -") == ""
}
