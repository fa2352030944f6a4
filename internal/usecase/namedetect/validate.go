package namedetect

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokens that look like names in introduction phrases but never are
var falsePositives = toSet(
	// greetings and fillers
	"hi", "hey", "hello", "everyone", "everybody", "all", "guys", "folks", "team",
	"there", "thanks", "thank", "welcome", "morning", "afternoon", "evening",
	// discourse markers and common words caught by "i'm X" / "it's X"
	"just", "so", "well", "okay", "ok", "yeah", "yes", "no", "not", "here",
	"going", "gonna", "trying", "sorry", "sure", "good", "great", "fine", "glad",
	"happy", "excited", "back", "also", "still", "really", "actually", "basically",
	"the", "a", "an", "and", "but", "that", "this", "what", "on", "in", "at",
	"now", "today", "time", "me", "you", "we", "it",
	// predicates following "i'm" that are not names
	"from", "with", "for", "to", "of", "about", "over", "off", "out", "up", "by",
	"having", "done", "late", "early", "calling", "dialing", "joining", "driving",
	"working", "doing", "getting", "being", "looking", "running", "muted",
	"ready", "new", "away", "busy", "free", "available", "online", "offline",
	// days
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	// months
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
	// meeting platforms
	"zoom", "teams", "meet", "google", "slack", "webex", "skype", "discord", "microsoft",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// NormalizeName trims surrounding punctuation and title-cases each token,
// including parts after a hyphen ("mary-jane" -> "Mary-Jane")
func NormalizeName(candidate string) string {
	fields := strings.Fields(candidate)
	for i, f := range fields {
		f = strings.Trim(f, `.,!?;:"()`)
		f = strings.Trim(f, "'")
		fields[i] = titleCase(f)
	}
	return strings.TrimSpace(strings.Join(fields, " "))
}

func titleCase(token string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range token {
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upperNext = r == '-'
	}
	return b.String()
}

// ValidateName normalizes candidate and reports whether it is a plausible name
func ValidateName(candidate string) (string, bool) {
	name := NormalizeName(candidate)
	if utf8.RuneCountInString(name) < 2 {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(first) {
		return "", false
	}
	for _, tok := range strings.Fields(name) {
		if falsePositives[strings.ToLower(tok)] {
			return "", false
		}
	}
	return name, true
}
