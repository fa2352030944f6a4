package namedetect

import (
	"fmt"
	"regexp"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
)

// Built-in pattern IDs, most specific first
const (
	PatternIntroIm     = "intro_im"
	PatternMyNameIs    = "my_name_is"
	PatternThisIsFrom  = "this_is_from"
	PatternNameHere    = "name_here"
	PatternNameJoining = "name_joining"
	PatternItsName     = "its_name"
	PatternThanksName  = "thanks_name"
)

// PatternSpec describes one introduction pattern before compilation
type PatternSpec struct {
	ID           string
	Expression   string
	CaptureGroup int
	Confidence   float64
}

// BuiltinPatterns is the default ordered pattern list. Order is precedence:
// the first pattern yielding a valid name wins. Trigger words match in any
// case; the captured name must start with a capital letter.
var BuiltinPatterns = []PatternSpec{
	{
		ID:           PatternIntroIm,
		Expression:   `(?i:\b(?:hi|hey|hello)\b[^.!?]*?\b(?:i'm|i am))\s+([A-Z][A-Za-z'-]+)`,
		CaptureGroup: 1,
		Confidence:   0.95,
	},
	{
		ID:           PatternMyNameIs,
		Expression:   `(?i:\bmy name is)\s+([A-Z][A-Za-z'-]+(?:\s+[A-Z][A-Za-z'-]+)?)`,
		CaptureGroup: 1,
		Confidence:   0.95,
	},
	{
		ID:           PatternThisIsFrom,
		Expression:   `(?i:\bthis is)\s+([A-Z][A-Za-z'-]+)\s+(?i:from|at|with)\b`,
		CaptureGroup: 1,
		Confidence:   0.9,
	},
	{
		ID:           PatternNameHere,
		Expression:   `(?:^|[.!?,]\s*)([A-Z][A-Za-z'-]+)\s+(?i:here|speaking)\b`,
		CaptureGroup: 1,
		Confidence:   0.85,
	},
	{
		ID:           PatternNameJoining,
		Expression:   `\b([A-Z][A-Za-z'-]+)\s+(?i:joining|hopping on|jumping on)\b`,
		CaptureGroup: 1,
		Confidence:   0.8,
	},
	{
		ID:           PatternItsName,
		Expression:   `(?i:\bit's|\bit is)\s+([A-Z][A-Za-z'-]+)\b`,
		CaptureGroup: 1,
		Confidence:   0.7,
	},
	{
		ID:           PatternThanksName,
		Expression:   `(?i:\bthanks|\bthank you)\s*,\s*([A-Z][A-Za-z'-]+)\b`,
		CaptureGroup: 1,
		Confidence:   0.6,
	},
}

type pattern struct {
	id         string
	re         *regexp.Regexp
	group      int
	confidence float64
}

func compilePattern(spec PatternSpec) (pattern, error) {
	re, err := regexp.Compile(spec.Expression)
	if err != nil {
		return pattern{}, fmt.Errorf("%w: %s: %v", ucerrors.ErrInvalidPattern, spec.ID, err)
	}
	if spec.CaptureGroup < 1 || spec.CaptureGroup > re.NumSubexp() {
		return pattern{}, fmt.Errorf("%w: %s: %w (group %d, expression has %d)",
			ucerrors.ErrInvalidPattern, spec.ID, ucerrors.ErrInvalidCaptureGroup, spec.CaptureGroup, re.NumSubexp())
	}
	return pattern{id: spec.ID, re: re, group: spec.CaptureGroup, confidence: spec.Confidence}, nil
}

// CustomSpecs converts stored organization patterns into specs at the fixed
// custom confidence
func CustomSpecs(stored []*entities.NamePattern) []PatternSpec {
	specs := make([]PatternSpec, 0, len(stored))
	for i, p := range stored {
		id := p.PatternID
		if id == "" {
			id = fmt.Sprintf("custom_%d", i+1)
		}
		group := p.CaptureGroup
		if group == 0 {
			group = 1
		}
		specs = append(specs, PatternSpec{
			ID:           id,
			Expression:   p.Expression,
			CaptureGroup: group,
			Confidence:   entities.CustomPatternConfidence,
		})
	}
	return specs
}

// ValidatePatterns compiles every spec and reports the first failure
func ValidatePatterns(specs []PatternSpec) error {
	for _, s := range specs {
		if _, err := compilePattern(s); err != nil {
			return err
		}
	}
	return nil
}
