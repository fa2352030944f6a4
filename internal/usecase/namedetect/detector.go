package namedetect

import (
	"sort"
	"strings"
	"time"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
)

const (
	DefaultIntroductionWindow = 5 * time.Minute
	DefaultLatePenalty        = 0.9

	// A detection at or above this confidence ends the search for its speaker
	confidentThreshold = 0.9
)

// Options tunes the introduction-focused strategy
type Options struct {
	IntroductionWindow time.Duration
	LatePenalty        float64
}

// DefaultOptions returns the standard five minute window and 10% late penalty
func DefaultOptions() Options {
	return Options{
		IntroductionWindow: DefaultIntroductionWindow,
		LatePenalty:        DefaultLatePenalty,
	}
}

// Detector matches self-introductions against an ordered pattern list.
// It is immutable after construction.
type Detector struct {
	patterns []pattern
	opts     Options
}

// NewDetector compiles custom patterns ahead of the built-ins. Any invalid
// expression or capture group fails construction.
func NewDetector(custom []PatternSpec, opts Options) (*Detector, error) {
	if opts.IntroductionWindow <= 0 {
		opts.IntroductionWindow = DefaultIntroductionWindow
	}
	if opts.LatePenalty <= 0 || opts.LatePenalty > 1 {
		opts.LatePenalty = DefaultLatePenalty
	}

	compiled := make([]pattern, 0, len(custom)+len(BuiltinPatterns))
	for _, spec := range custom {
		spec.Confidence = entities.CustomPatternConfidence
		p, err := compilePattern(spec)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}
	for _, spec := range BuiltinPatterns {
		p, err := compilePattern(spec)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}
	return &Detector{patterns: compiled, opts: opts}, nil
}

// PatternIDs returns pattern IDs in evaluation order
func (d *Detector) PatternIDs() []string {
	ids := make([]string, 0, len(d.patterns))
	for _, p := range d.patterns {
		ids = append(ids, p.id)
	}
	return ids
}

// DetectInSegment returns the detection of the first pattern, in list order,
// that matches with a valid name. Later patterns are not evaluated.
func (d *Detector) DetectInSegment(seg entities.TranscriptSegment) (entities.DetectedName, bool) {
	for _, p := range d.patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(seg.Text, -1) {
			gs, ge := loc[2*p.group], loc[2*p.group+1]
			if gs < 0 {
				continue
			}
			name, ok := ValidateName(seg.Text[gs:ge])
			if !ok {
				continue
			}
			return entities.DetectedName{
				Name:          name,
				SpeakerLabel:  seg.SpeakerLabel,
				MatchedPhrase: strings.TrimSpace(seg.Text[loc[0]:loc[1]]),
				TimestampMs:   seg.StartMs,
				Confidence:    p.confidence,
				PatternID:     p.id,
			}, true
		}
	}
	return entities.DetectedName{}, false
}

// DetectInTranscript scans segments in time order keeping the highest
// confidence detection per speaker. Speakers already detected at 0.9 or
// above are skipped.
func (d *Detector) DetectInTranscript(segments []entities.TranscriptSegment) []entities.DetectedName {
	best := d.detectBySpeaker(segments, nil)
	return Rank(values(best))
}

// DetectWithIntroductionFocus detects within the introduction window first,
// then searches later segments only for speakers still unnamed, scaling
// those late detections by the late penalty.
func (d *Detector) DetectWithIntroductionFocus(segments []entities.TranscriptSegment) []entities.DetectedName {
	windowMs := d.opts.IntroductionWindow.Milliseconds()
	var intro, late []entities.TranscriptSegment
	for _, s := range segments {
		if s.StartMs < windowMs {
			intro = append(intro, s)
		} else {
			late = append(late, s)
		}
	}

	found := d.detectBySpeaker(intro, nil)
	lateFound := d.detectBySpeaker(late, found)
	for label, det := range lateFound {
		det.Confidence *= d.opts.LatePenalty
		found[label] = det
	}
	return Rank(values(found))
}

// detectBySpeaker runs per-segment detection over time-ordered segments,
// ignoring speakers present in exclude
func (d *Detector) detectBySpeaker(segments []entities.TranscriptSegment, exclude map[string]entities.DetectedName) map[string]entities.DetectedName {
	ordered := make([]entities.TranscriptSegment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartMs < ordered[j].StartMs
	})

	best := make(map[string]entities.DetectedName)
	for _, seg := range ordered {
		if _, skip := exclude[seg.SpeakerLabel]; skip {
			continue
		}
		current, seen := best[seg.SpeakerLabel]
		if seen && current.Confidence >= confidentThreshold {
			continue
		}
		det, ok := d.DetectInSegment(seg)
		if !ok {
			continue
		}
		if !seen || det.Confidence > current.Confidence {
			best[seg.SpeakerLabel] = det
		}
	}
	return best
}

// Rank orders detections by confidence, then earliest timestamp, then label
func Rank(detections []entities.DetectedName) []entities.DetectedName {
	out := make([]entities.DetectedName, len(detections))
	copy(out, detections)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].TimestampMs != out[j].TimestampMs {
			return out[i].TimestampMs < out[j].TimestampMs
		}
		return out[i].SpeakerLabel < out[j].SpeakerLabel
	})
	return out
}

func values(m map[string]entities.DetectedName) []entities.DetectedName {
	out := make([]entities.DetectedName, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
