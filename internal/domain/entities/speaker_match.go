package entities

import (
	"time"

	"github.com/google/uuid"
)

// MatchMethod records how a speaker label was bound to a profile
type MatchMethod string

const (
	MatchMethodIntroduction MatchMethod = "introduction"
	MatchMethodManual       MatchMethod = "manual"
	MatchMethodCalendar     MatchMethod = "calendar"
)

// SpeakerMatch binds one meeting's speaker label to a voice profile.
// (MeetingID, SpeakerLabel) is unique; rows are upserted.
type SpeakerMatch struct {
	ID             uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MeetingID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_speaker_match_meeting_label" json:"meeting_id"`
	SpeakerLabel   string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_speaker_match_meeting_label" json:"speaker_label"`
	VoiceProfileID uuid.UUID   `gorm:"type:uuid;not null;index" json:"voice_profile_id"`
	MatchMethod    MatchMethod `gorm:"type:varchar(20);not null" json:"match_method"`
	Confidence     float64     `json:"confidence"`
	DetectedPhrase *string     `gorm:"type:text" json:"detected_phrase,omitempty"`
	DetectedAtMs   *int64      `json:"detected_at_ms,omitempty"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SpeakerMatch) TableName() string {
	return "speaker_matches"
}

// NewIntroductionMatch builds a match from an introduction detection
func NewIntroductionMatch(meetingID, profileID uuid.UUID, d DetectedName) *SpeakerMatch {
	phrase := d.MatchedPhrase
	at := d.TimestampMs
	return &SpeakerMatch{
		ID:             uuid.New(),
		MeetingID:      meetingID,
		SpeakerLabel:   d.SpeakerLabel,
		VoiceProfileID: profileID,
		MatchMethod:    MatchMethodIntroduction,
		Confidence:     d.Confidence,
		DetectedPhrase: &phrase,
		DetectedAtMs:   &at,
	}
}
