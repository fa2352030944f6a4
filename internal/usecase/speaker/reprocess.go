package speaker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
)

// Synthetic timing used when segments are rebuilt from flat text
const (
	reprocessWordMs = 300
	reprocessGapMs  = 1000
)

var (
	blockSeparatorRe = regexp.MustCompile(`\n\s*\n`)
	speakerBlockRe   = regexp.MustCompile(`(?s)^\s*(Speaker\s+\d+)\s*:\s*(.*\S)\s*$`)
	innerSpaceRe     = regexp.MustCompile(`\s+`)
)

// ReprocessRequest re-runs recognition from a flat "Speaker N: text" transcript
type ReprocessRequest struct {
	OrganizationID uuid.UUID
	MeetingID      uuid.UUID
	Transcript     string
	SpeakerAliases map[string]string
	CalendarEmails []string
}

// ReprocessResult holds the rebuilt segments and the new recognition
type ReprocessResult struct {
	Segments    []entities.TranscriptSegment
	Recognition *entities.RecognitionResult
}

// ReprocessMeeting rebuilds segments from flat text and recognizes speakers again
func (s *speakerService) ReprocessMeeting(ctx context.Context, req ReprocessRequest) (*ReprocessResult, error) {
	segments := ParseFlatTranscript(req.Transcript)
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: meeting %s", ucerrors.ErrNoSegments, req.MeetingID)
	}
	if s.logger != nil {
		s.logger.Info("reprocessing meeting speakers",
			zap.String("meeting_id", req.MeetingID.String()),
			zap.Int("segments", len(segments)),
		)
	}

	recognition, err := s.Recognize(ctx, RecognizeRequest{
		OrganizationID: req.OrganizationID,
		MeetingID:      req.MeetingID,
		Segments:       segments,
		SpeakerAliases: req.SpeakerAliases,
		CalendarEmails: req.CalendarEmails,
	})
	if err != nil {
		return nil, err
	}
	return &ReprocessResult{Segments: segments, Recognition: recognition}, nil
}

// ParseFlatTranscript splits text on blank lines and turns every
// "Speaker N: text" block into a segment with approximate timing
// (300 ms per word, 1 s between segments). Other blocks are skipped.
func ParseFlatTranscript(text string) []entities.TranscriptSegment {
	var (
		segments []entities.TranscriptSegment
		cursor   int64
	)
	for _, block := range blockSeparatorRe.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		m := speakerBlockRe.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		label := innerSpaceRe.ReplaceAllString(m[1], " ")
		body := innerSpaceRe.ReplaceAllString(m[2], " ")

		fields := strings.Fields(body)
		words := make([]entities.Word, 0, len(fields))
		start := cursor
		for _, f := range fields {
			words = append(words, entities.Word{
				Text:       f,
				StartMs:    cursor,
				EndMs:      cursor + reprocessWordMs,
				Confidence: 1.0,
			})
			cursor += reprocessWordMs
		}
		segments = append(segments, entities.TranscriptSegment{
			SpeakerLabel: label,
			Text:         body,
			StartMs:      start,
			EndMs:        cursor,
			Confidence:   1.0,
			Words:        words,
		})
		cursor += reprocessGapMs
	}
	return segments
}

// FormatFlatTranscript renders raw-labelled segments in the form
// ParseFlatTranscript reads back
func FormatFlatTranscript(segments []entities.TranscriptSegment) string {
	blocks := make([]string, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		blocks = append(blocks, s.SpeakerLabel+": "+text)
	}
	return strings.Join(blocks, "\n\n")
}
