package entities

import (
	"time"

	"github.com/google/uuid"
)

// SpeakersRecognizedEvent announces a meeting's resolved speaker map
type SpeakersRecognizedEvent struct {
	EventID            uuid.UUID         `json:"event_id"`
	MeetingID          uuid.UUID         `json:"meeting_id"`
	OrganizationID     uuid.UUID         `json:"organization_id"`
	SpeakerMap         map[string]string `json:"speaker_map"`
	NewProfileIDs      []uuid.UUID       `json:"new_profile_ids"`
	MatchedProfileIDs  []uuid.UUID       `json:"matched_profile_ids"`
	UnresolvedSpeakers []string          `json:"unresolved_speakers"`
	QualityWarning     bool              `json:"quality_warning"`
	OccurredAt         time.Time         `json:"occurred_at"`
}

// NewSpeakersRecognizedEvent builds the event from a recognition result
func NewSpeakersRecognizedEvent(organizationID, meetingID uuid.UUID, r *RecognitionResult) SpeakersRecognizedEvent {
	return SpeakersRecognizedEvent{
		EventID:            uuid.New(),
		MeetingID:          meetingID,
		OrganizationID:     organizationID,
		SpeakerMap:         r.SpeakerMap,
		NewProfileIDs:      r.NewProfileIDs,
		MatchedProfileIDs:  r.MatchedProfileIDs,
		UnresolvedSpeakers: r.UnresolvedSpeakers,
		QualityWarning:     r.QualityWarning,
		OccurredAt:         time.Now().UTC(),
	}
}
