package postprocess

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var sentenceStartRe = regexp.MustCompile(`([.!?]\s+)(\p{Ll})`)

// RepairSentences capitalizes the first letter of the text and of every
// sentence, and terminates the text with a period when it has no final
// punctuation. Trailing commas, semicolons and colons are dropped first.
// Blank input yields "".
func RepairSentences(text string) string {
	s := strings.TrimSpace(strings.TrimRightFunc(text, isDanglingPunct))
	if s == "" {
		return ""
	}
	s = capitalizeFirstLetter(s)
	s = sentenceStartRe.ReplaceAllStringFunc(s, strings.ToUpper)

	last, _ := utf8.DecodeLastRuneInString(s)
	if last != '.' && last != '!' && last != '?' {
		s += "."
	}
	return s
}

func isDanglingPunct(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == ';' || r == ':'
}

func capitalizeFirstLetter(s string) string {
	for i, r := range s {
		if unicode.IsLetter(r) {
			if unicode.IsUpper(r) {
				return s
			}
			return s[:i] + string(unicode.ToUpper(r)) + s[i+utf8.RuneLen(r):]
		}
	}
	return s
}
