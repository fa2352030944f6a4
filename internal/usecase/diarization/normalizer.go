package diarization

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
	"github.com/johnquangdev/transcript-intel/pkg/timeutil"
)

const (
	DefaultMaxMergeGapMs           int64   = 1500
	DefaultChunkMs                 int64   = 30_000
	DefaultQualityWarningThreshold float64 = 0.7

	// Label used when the vendor response carries no diarization signal
	SingleSpeakerLabel = "Speaker 1"
)

// Options tunes normalization
type Options struct {
	MaxMergeGapMs           int64
	ChunkMs                 int64
	QualityWarningThreshold float64
}

// DefaultOptions returns the standard normalization settings
func DefaultOptions() Options {
	return Options{
		MaxMergeGapMs:           DefaultMaxMergeGapMs,
		ChunkMs:                 DefaultChunkMs,
		QualityWarningThreshold: DefaultQualityWarningThreshold,
	}
}

// Strategy names the diarization signal a result was built from
type Strategy string

const (
	StrategyUtterances Strategy = "utterances"
	StrategyWords      Strategy = "speaker_words"
	StrategyParagraphs Strategy = "paragraphs"
	StrategyChunks     Strategy = "chunks"
	StrategyTranscript Strategy = "transcript"
)

// Result is the normalized transcript of one vendor response
type Result struct {
	Segments          []entities.TranscriptSegment
	Strategy          Strategy
	DurationMs        int64
	AverageConfidence float64
	QualityWarning    bool
}

// Normalizer converts vendor responses into canonical speaker segments
type Normalizer struct {
	opts   Options
	logger *zap.Logger
}

// NewNormalizer creates a normalizer; zero option fields fall back to defaults
func NewNormalizer(opts Options, logger *zap.Logger) *Normalizer {
	d := DefaultOptions()
	if opts.MaxMergeGapMs < 0 {
		opts.MaxMergeGapMs = 0
	} else if opts.MaxMergeGapMs == 0 {
		opts.MaxMergeGapMs = d.MaxMergeGapMs
	}
	if opts.ChunkMs <= 0 {
		opts.ChunkMs = d.ChunkMs
	}
	if opts.QualityWarningThreshold <= 0 {
		opts.QualityWarningThreshold = d.QualityWarningThreshold
	}
	return &Normalizer{opts: opts, logger: logger}
}

// Normalize builds ordered, merged, non-overlapping segments from a vendor response.
// A response without channels or alternatives is rejected with ErrMalformedResponse.
func (n *Normalizer) Normalize(resp *entities.VendorResponse) (*Result, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", ucerrors.ErrMalformedResponse)
	}
	if len(resp.Results.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ucerrors.ErrMalformedResponse)
	}
	if len(resp.Results.Channels[0].Alternatives) == 0 {
		return nil, fmt.Errorf("%w: no alternatives", ucerrors.ErrMalformedResponse)
	}
	alt := resp.Results.Channels[0].Alternatives[0]
	durationMs := timeutil.SecondsToMs(resp.Metadata.Duration)

	var (
		segments []entities.TranscriptSegment
		strategy Strategy
	)
	switch {
	case len(resp.Results.Utterances) > 0:
		segments, strategy = FromUtterances(resp.Results.Utterances), StrategyUtterances
	case hasSpeakerTags(alt.Words):
		segments, strategy = FromSpeakerWords(alt.Words), StrategyWords
	case alt.Paragraphs != nil && len(alt.Paragraphs.Paragraphs) > 0:
		segments, strategy = FromParagraphs(alt.Paragraphs.Paragraphs, alt.Words), StrategyParagraphs
	case len(alt.Words) > 0:
		segments, strategy = FromChunks(alt.Words, n.opts.ChunkMs), StrategyChunks
	default:
		segments, strategy = fromTranscript(alt, durationMs), StrategyTranscript
	}

	segments = Merge(clampOverlaps(segments), n.opts.MaxMergeGapMs)
	if durationMs == 0 && len(segments) > 0 {
		durationMs = segments[len(segments)-1].EndMs
	}

	avg := entities.AverageSegmentConfidence(segments)
	result := &Result{
		Segments:          segments,
		Strategy:          strategy,
		DurationMs:        durationMs,
		AverageConfidence: avg,
		QualityWarning:    len(segments) > 0 && avg < n.opts.QualityWarningThreshold,
	}

	if n.logger != nil {
		n.logger.Debug("transcript normalized",
			zap.String("strategy", string(strategy)),
			zap.Int("segments", len(segments)),
			zap.Float64("average_confidence", avg),
			zap.Bool("quality_warning", result.QualityWarning),
		)
	}
	return result, nil
}

// SpeakerLabel renders the canonical label for a zero-based vendor speaker index
func SpeakerLabel(index int) string {
	return fmt.Sprintf("Speaker %d", index+1)
}

// ConvertWords maps vendor words (seconds) to domain words (milliseconds)
func ConvertWords(in []entities.VendorWord) []entities.Word {
	out := make([]entities.Word, 0, len(in))
	for _, w := range in {
		word := entities.Word{
			Text:           w.Word,
			StartMs:        timeutil.SecondsToMs(w.Start),
			EndMs:          timeutil.SecondsToMs(w.End),
			Confidence:     w.Confidence,
			PunctuatedText: w.PunctuatedWord,
		}
		if w.Speaker != nil {
			idx := *w.Speaker
			word.SpeakerIndex = &idx
		}
		out = append(out, word)
	}
	return out
}

// FromUtterances maps each vendor utterance to one segment
func FromUtterances(utterances []entities.VendorUtterance) []entities.TranscriptSegment {
	segments := make([]entities.TranscriptSegment, 0, len(utterances))
	for _, u := range utterances {
		words := ConvertWords(u.Words)
		text := strings.TrimSpace(u.Transcript)
		if text == "" {
			text = entities.JoinWords(words)
		}
		segments = append(segments, entities.TranscriptSegment{
			SpeakerLabel: SpeakerLabel(u.Speaker),
			Text:         text,
			StartMs:      timeutil.SecondsToMs(u.Start),
			EndMs:        timeutil.SecondsToMs(u.End),
			Confidence:   entities.AverageWordConfidence(words, u.Confidence),
			Words:        words,
		})
	}
	return segments
}

// FromSpeakerWords starts a new segment whenever the speaker tag changes.
// Untagged words stay with the current speaker.
func FromSpeakerWords(vendorWords []entities.VendorWord) []entities.TranscriptSegment {
	var (
		segments []entities.TranscriptSegment
		current  *entities.TranscriptSegment
	)
	for _, w := range ConvertWords(vendorWords) {
		label := SingleSpeakerLabel
		if w.SpeakerIndex != nil {
			label = SpeakerLabel(*w.SpeakerIndex)
		} else if current != nil {
			label = current.SpeakerLabel
		}

		if current == nil || current.SpeakerLabel != label {
			if current != nil {
				segments = append(segments, *current)
			}
			current = &entities.TranscriptSegment{
				SpeakerLabel: label,
				StartMs:      w.StartMs,
			}
		}
		appendWord(current, w)
	}
	if current != nil {
		segments = append(segments, *current)
	}
	return segments
}

// FromParagraphs builds single-speaker segments from vendor paragraph boundaries
func FromParagraphs(paragraphs []entities.VendorParagraph, vendorWords []entities.VendorWord) []entities.TranscriptSegment {
	words := ConvertWords(vendorWords)
	segments := make([]entities.TranscriptSegment, 0, len(paragraphs))
	for _, p := range paragraphs {
		start, end := timeutil.SecondsToMs(p.Start), timeutil.SecondsToMs(p.End)
		inside := wordsWithin(words, start, end)

		sentences := make([]string, 0, len(p.Sentences))
		for _, s := range p.Sentences {
			if t := strings.TrimSpace(s.Text); t != "" {
				sentences = append(sentences, t)
			}
		}
		text := strings.Join(sentences, " ")
		if text == "" {
			text = entities.JoinWords(inside)
		}
		segments = append(segments, entities.TranscriptSegment{
			SpeakerLabel: SingleSpeakerLabel,
			Text:         text,
			StartMs:      start,
			EndMs:        end,
			Confidence:   entities.AverageWordConfidence(inside, 1.0),
			Words:        inside,
		})
	}
	return segments
}

// FromChunks groups words into fixed windows as a last-resort single-speaker fallback
func FromChunks(vendorWords []entities.VendorWord, chunkMs int64) []entities.TranscriptSegment {
	words := ConvertWords(vendorWords)
	if len(words) == 0 {
		return nil
	}
	if chunkMs <= 0 {
		chunkMs = DefaultChunkMs
	}
	var segments []entities.TranscriptSegment
	for _, bounds := range timeutil.ChunkBounds(words[len(words)-1].EndMs+1, chunkMs) {
		var inside []entities.Word
		for _, w := range words {
			if w.StartMs >= bounds.StartMs && w.StartMs < bounds.EndMs {
				inside = append(inside, w)
			}
		}
		if len(inside) == 0 {
			continue
		}
		seg := entities.TranscriptSegment{SpeakerLabel: SingleSpeakerLabel, StartMs: inside[0].StartMs}
		for _, w := range inside {
			appendWord(&seg, w)
		}
		segments = append(segments, seg)
	}
	return segments
}

func fromTranscript(alt entities.VendorAlternative, durationMs int64) []entities.TranscriptSegment {
	text := strings.TrimSpace(alt.Transcript)
	if text == "" {
		return nil
	}
	return []entities.TranscriptSegment{{
		SpeakerLabel: SingleSpeakerLabel,
		Text:         text,
		StartMs:      0,
		EndMs:        durationMs,
		Confidence:   alt.Confidence,
	}}
}

// Merge joins each segment into the previous output segment when both share a
// speaker and the gap is at most maxGapMs. Running it twice yields the same list.
func Merge(segments []entities.TranscriptSegment, maxGapMs int64) []entities.TranscriptSegment {
	if len(segments) == 0 {
		return segments
	}
	out := make([]entities.TranscriptSegment, 0, len(segments))
	out = append(out, cloneSegment(segments[0]))
	for _, next := range segments[1:] {
		last := &out[len(out)-1]
		if last.SpeakerLabel == next.SpeakerLabel && next.StartMs-last.EndMs <= maxGapMs {
			mergeInto(last, next)
			continue
		}
		out = append(out, cloneSegment(next))
	}
	return out
}

func mergeInto(dst *entities.TranscriptSegment, src entities.TranscriptSegment) {
	switch {
	case dst.Text == "":
		dst.Text = src.Text
	case src.Text != "":
		dst.Text = dst.Text + " " + src.Text
	}
	if src.EndMs > dst.EndMs {
		dst.EndMs = src.EndMs
	}

	// Weight by word count so the result stays the mean of all contained words
	dn, sn := len(dst.Words), len(src.Words)
	switch {
	case dn > 0 && sn > 0:
		dst.Confidence = (dst.Confidence*float64(dn) + src.Confidence*float64(sn)) / float64(dn+sn)
	case dn == 0 && sn == 0:
		dst.Confidence = (dst.Confidence + src.Confidence) / 2
	case dn == 0:
		dst.Confidence = src.Confidence
	}
	dst.Words = append(dst.Words, src.Words...)
}

func appendWord(seg *entities.TranscriptSegment, w entities.Word) {
	n := float64(len(seg.Words))
	seg.Confidence = (seg.Confidence*n + w.Confidence) / (n + 1)
	seg.Words = append(seg.Words, w)
	if t := strings.TrimSpace(w.Display()); t != "" {
		if seg.Text == "" {
			seg.Text = t
		} else {
			seg.Text += " " + t
		}
	}
	if w.EndMs > seg.EndMs {
		seg.EndMs = w.EndMs
	}
}

// clampOverlaps sorts by start, pulls overlapping starts forward to the previous
// end and drops segments without text
func clampOverlaps(segments []entities.TranscriptSegment) []entities.TranscriptSegment {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].StartMs < segments[j].StartMs
	})
	out := make([]entities.TranscriptSegment, 0, len(segments))
	for _, s := range segments {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		if len(out) > 0 {
			prevEnd := out[len(out)-1].EndMs
			if s.StartMs < prevEnd {
				s.StartMs = prevEnd
			}
		}
		if s.EndMs < s.StartMs {
			s.EndMs = s.StartMs
		}
		out = append(out, s)
	}
	return out
}

func cloneSegment(s entities.TranscriptSegment) entities.TranscriptSegment {
	if s.Words != nil {
		s.Words = append([]entities.Word(nil), s.Words...)
	}
	return s
}

func hasSpeakerTags(words []entities.VendorWord) bool {
	for _, w := range words {
		if w.Speaker != nil {
			return true
		}
	}
	return false
}

func wordsWithin(words []entities.Word, startMs, endMs int64) []entities.Word {
	var out []entities.Word
	for _, w := range words {
		if w.StartMs >= startMs && w.StartMs < endMs {
			out = append(out, w)
		}
	}
	return out
}
