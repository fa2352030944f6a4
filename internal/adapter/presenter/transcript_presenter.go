package presenter

import (
	"github.com/google/uuid"

	"github.com/johnquangdev/transcript-intel/internal/adapter/dto/transcript"
	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	"github.com/johnquangdev/transcript-intel/internal/usecase/postprocess"
	"github.com/johnquangdev/transcript-intel/pkg/timeutil"
)

// ToTranscriptResponse converts a stored Transcript to its DTO
func ToTranscriptResponse(t *entities.Transcript, archiveURL string) *transcript.TranscriptResponse {
	if t == nil {
		return nil
	}

	segments := make([]transcript.SegmentResponse, 0, len(t.Segments))
	for _, s := range t.Segments {
		segments = append(segments, toSegmentResponse(s))
	}

	return &transcript.TranscriptResponse{
		ID:             t.ID.String(),
		MeetingID:      t.MeetingID.String(),
		OrganizationID: t.OrganizationID.String(),
		SpeakerMap:     t.SpeakerMap.Data(),
		Segments:       segments,
		FullText:       postprocess.FullText(t.Segments),
		Confidence:     t.Confidence,
		QualityWarning: t.QualityWarning,
		SpeakerCount:   t.SpeakerCount,
		DurationMs:     t.DurationMs,
		Source:         t.ModelUsed,
		ArchiveKey:     t.ArchiveKey,
		ArchiveURL:     archiveURL,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toSegmentResponse(s entities.ProcessedSegment) transcript.SegmentResponse {
	var ranges []transcript.CharRange
	for _, r := range s.LowConfidenceRanges {
		ranges = append(ranges, transcript.CharRange{Start: r.Start, End: r.End})
	}
	return transcript.SegmentResponse{
		SpeakerLabel:        s.SpeakerLabel,
		Speaker:             s.DisplaySpeaker,
		Text:                s.Text,
		CleanedText:         s.CleanedText,
		StartMs:             s.StartMs,
		EndMs:               s.EndMs,
		Timestamp:           timeutil.FormatTimestamp(s.StartMs),
		Confidence:          s.Confidence,
		LowConfidenceRanges: ranges,
	}
}

// ToRecognitionResponse converts a recognition result to its DTO
func ToRecognitionResponse(r *entities.RecognitionResult) *transcript.RecognitionResponse {
	if r == nil {
		return nil
	}
	detections := make([]transcript.DetectionResponse, 0, len(r.Detections))
	for _, d := range r.Detections {
		detections = append(detections, transcript.DetectionResponse{
			Name:          d.Name,
			SpeakerLabel:  d.SpeakerLabel,
			MatchedPhrase: d.MatchedPhrase,
			TimestampMs:   d.TimestampMs,
			Confidence:    d.Confidence,
			PatternID:     d.PatternID,
		})
	}
	return &transcript.RecognitionResponse{
		SpeakerMap:         r.SpeakerMap,
		Detections:         detections,
		NewProfileIDs:      uuidStrings(r.NewProfileIDs),
		MatchedProfileIDs:  uuidStrings(r.MatchedProfileIDs),
		UnresolvedSpeakers: r.UnresolvedSpeakers,
		QualityWarning:     r.QualityWarning,
	}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
