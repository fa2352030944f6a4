package postprocess

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	disfluencyRe = regexp.MustCompile(`(?i)\b(?:um+|uh+m?|erm?|ah+|hmm+|mhm|mm+)\b,?`)

	// Tics only count as filler when followed by a comma ("I was, like, there")
	gatedTicRe = regexp.MustCompile(`(?i)(,\s*)?\b(?:like|basically|literally|actually|you know|i mean|you see)\s*,\s*`)

	sentenceInitialTicRe = regexp.MustCompile(`(?i)(^|[.!?]\s+)(?:so|well|okay|ok|right|anyway)\s*,\s*`)
	fillerPhraseRe       = regexp.MustCompile(`(?i)\b(?:you know what i mean|kind of like|sort of like|if you will)\b,?`)
	falseStartRe         = regexp.MustCompile(`\b[A-Za-z']+-(?:\s+|$)`)
	doubleDashRe         = regexp.MustCompile(`\s+--+\s+`)

	whitespaceRe       = regexp.MustCompile(`\s+`)
	spaceBeforePunctRe = regexp.MustCompile(`\s+([,.!?;:])`)
	repeatedCommaRe    = regexp.MustCompile(`,{2,}`)
	repeatedPeriodRe   = regexp.MustCompile(`\.{2,}`)
	repeatedBangRe     = regexp.MustCompile(`!{2,}`)
	repeatedQuestionRe = regexp.MustCompile(`\?{2,}`)
	commaBeforeEndRe   = regexp.MustCompile(`,\s*([.!?])`)
	commaAfterEndRe    = regexp.MustCompile(`([.!?])\s*,`)
	leadingPunctRe     = regexp.MustCompile(`^[,;:\s]+`)
)

// Words that are legitimately doubled in English ("I think that that works")
var repetitionExempt = map[string]bool{
	"that": true,
	"had":  true,
}

// RemoveFillers strips disfluencies, verbal tics, filler phrases, stammered
// repetitions and false starts, then tidies whitespace and punctuation.
// Passes repeat until the text stops changing, so RemoveFillers(RemoveFillers(s))
// equals RemoveFillers(s).
func RemoveFillers(text string) string {
	current := text
	for i := 0; i < 16; i++ {
		next := removeFillersOnce(current)
		if next == current {
			break
		}
		current = next
	}
	return current
}

func removeFillersOnce(text string) string {
	s := disfluencyRe.ReplaceAllString(text, "")
	s = gatedTicRe.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, ",") {
			return " "
		}
		return ""
	})
	s = sentenceInitialTicRe.ReplaceAllString(s, "${1}")
	s = fillerPhraseRe.ReplaceAllString(s, "")
	s = collapseRepetitions(s)
	s = falseStartRe.ReplaceAllString(s, "")
	s = doubleDashRe.ReplaceAllString(s, " ")
	return tidy(s)
}

// collapseRepetitions drops a token when the next one is the same word,
// keeping the later token since it carries any trailing punctuation
func collapseRepetitions(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return s
	}
	out := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if i+1 < len(tokens) {
			cur, next := bareWord(tok), bareWord(tokens[i+1])
			if cur != "" && cur == next && !repetitionExempt[cur] && !hasTrailingPunct(tok) {
				continue
			}
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

func tidy(s string) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = spaceBeforePunctRe.ReplaceAllString(s, "$1")
	s = repeatedCommaRe.ReplaceAllString(s, ",")
	s = repeatedPeriodRe.ReplaceAllString(s, ".")
	s = repeatedBangRe.ReplaceAllString(s, "!")
	s = repeatedQuestionRe.ReplaceAllString(s, "?")
	s = commaBeforeEndRe.ReplaceAllString(s, "$1")
	s = commaAfterEndRe.ReplaceAllString(s, "$1")
	s = leadingPunctRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func bareWord(tok string) string {
	return strings.ToLower(strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}))
}

func hasTrailingPunct(tok string) bool {
	return strings.ContainsAny(tok[len(tok)-1:], ".!?")
}
