package postprocess

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	"github.com/johnquangdev/transcript-intel/pkg/timeutil"
)

const DefaultConfidenceThreshold = 0.7

// Options controls which transformations ProcessSegment applies
type Options struct {
	RemoveFillers           bool
	CleanSentenceBoundaries bool
	HighlightLowConfidence  bool
	ConfidenceThreshold     float64
	SpeakerAliases          map[string]string
}

// DefaultOptions enables every transformation with the standard threshold
func DefaultOptions() Options {
	return Options{
		RemoveFillers:           true,
		CleanSentenceBoundaries: true,
		HighlightLowConfidence:  true,
		ConfidenceThreshold:     DefaultConfidenceThreshold,
		SpeakerAliases:          map[string]string{},
	}
}

// WithAliases returns a copy of the options using the given alias map
func (o Options) WithAliases(aliases map[string]string) Options {
	o.SpeakerAliases = aliases
	return o
}

// Processor applies text cleanup to transcript segments. It holds no mutable
// state and is safe for concurrent use.
type Processor struct {
	opts Options
}

// NewProcessor creates a processor with the given options
func NewProcessor(opts Options) *Processor {
	if opts.SpeakerAliases == nil {
		opts.SpeakerAliases = map[string]string{}
	}
	return &Processor{opts: opts}
}

// Options returns the processor's configuration
func (p *Processor) Options() Options {
	return p.opts
}

// ProcessSegment derives cleaned text, display speaker and low-confidence ranges
func (p *Processor) ProcessSegment(seg entities.TranscriptSegment) entities.ProcessedSegment {
	cleaned := seg.Text
	if p.opts.RemoveFillers {
		cleaned = RemoveFillers(cleaned)
	}
	if p.opts.CleanSentenceBoundaries {
		cleaned = RepairSentences(cleaned)
	} else {
		cleaned = strings.TrimSpace(cleaned)
	}

	out := entities.ProcessedSegment{
		TranscriptSegment: seg,
		CleanedText:       cleaned,
		DisplaySpeaker:    ResolveSpeaker(seg.SpeakerLabel, p.opts.SpeakerAliases),
	}
	if p.opts.HighlightLowConfidence {
		out.LowConfidenceRanges = LowConfidenceRanges(seg.Words, p.opts.ConfidenceThreshold)
	}
	return out
}

// ProcessTranscript maps ProcessSegment over segments, preserving order
func (p *Processor) ProcessTranscript(segments []entities.TranscriptSegment) []entities.ProcessedSegment {
	out := make([]entities.ProcessedSegment, 0, len(segments))
	for _, s := range segments {
		out = append(out, p.ProcessSegment(s))
	}
	return out
}

// ResolveSpeaker returns the alias for label, or label itself
func ResolveSpeaker(label string, aliases map[string]string) string {
	if name, ok := aliases[label]; ok && name != "" {
		return name
	}
	return label
}

// LowConfidenceRanges returns character spans of consecutive words scoring
// below threshold. Offsets count runes of each word plus one separating space.
func LowConfidenceRanges(words []entities.Word, threshold float64) []entities.CharRange {
	var (
		ranges []entities.CharRange
		offset int
		inRun  bool
	)
	for _, w := range words {
		length := utf8.RuneCountInString(w.Display())
		if w.Confidence < threshold {
			if inRun {
				ranges[len(ranges)-1].End = offset + length
			} else {
				ranges = append(ranges, entities.CharRange{Start: offset, End: offset + length})
				inRun = true
			}
		} else {
			inRun = false
		}
		offset += length + 1
	}
	return ranges
}

// FullText renders "{speaker}: {text}" per segment separated by blank lines.
// Segments whose cleaned text is empty (filler-only speech) are omitted.
func FullText(segments []entities.ProcessedSegment) string {
	blocks := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.CleanedText == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s: %s", s.DisplaySpeaker, s.CleanedText))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderMarkdown renders a timestamped transcript document. As with
// FullText, segments with empty cleaned text are omitted, and a speaker
// appears in the header only when at least one of their segments is rendered.
func RenderMarkdown(title string, generatedAt time.Time, segments []entities.ProcessedSegment) string {
	var b strings.Builder
	if title == "" {
		title = "Transcript"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Generated %s_\n\n", generatedAt.UTC().Format(time.RFC3339))

	speakers := make([]string, 0)
	seen := make(map[string]bool)
	for _, s := range segments {
		if s.CleanedText != "" && !seen[s.DisplaySpeaker] {
			seen[s.DisplaySpeaker] = true
			speakers = append(speakers, s.DisplaySpeaker)
		}
	}
	if len(speakers) > 0 {
		fmt.Fprintf(&b, "**Speakers:** %s\n\n", strings.Join(speakers, ", "))
	}

	for _, s := range segments {
		if s.CleanedText == "" {
			continue
		}
		fmt.Fprintf(&b, "**[%s] %s:** %s\n\n", timeutil.FormatTimestamp(s.StartMs), s.DisplaySpeaker, s.CleanedText)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
