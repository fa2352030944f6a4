package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Transcript is the stored, speaker-identified transcript of one meeting
type Transcript struct {
	ID             uuid.UUID                                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID      uuid.UUID                                  `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex"`
	OrganizationID uuid.UUID                                  `json:"organization_id" gorm:"type:uuid;not null;index"`
	Text           string                                     `json:"text" gorm:"type:text"`
	Segments       datatypes.JSONSlice[ProcessedSegment]      `json:"segments,omitempty" gorm:"type:jsonb"`
	SpeakerMap     datatypes.JSONType[map[string]string]      `json:"speaker_map" gorm:"type:jsonb"`
	Confidence     float64                                    `json:"confidence"`
	QualityWarning bool                                       `json:"quality_warning" gorm:"default:false"`
	SpeakerCount   int                                        `json:"speaker_count"`
	DurationMs     int64                                      `json:"duration_ms"`
	ModelUsed      string                                     `json:"model_used,omitempty" gorm:"type:varchar(100)"`
	ArchiveKey     string                                     `json:"archive_key,omitempty" gorm:"type:varchar(500)"`
	RawData        datatypes.JSONType[map[string]interface{}] `json:"raw_data,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time                                  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time                                  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript creates a new transcript
func NewTranscript(meetingID, organizationID uuid.UUID) *Transcript {
	return &Transcript{
		ID:             uuid.New(),
		MeetingID:      meetingID,
		OrganizationID: organizationID,
		SpeakerMap:     datatypes.NewJSONType(map[string]string{}),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// RawSegments returns the stored segments without their post-processing fields
func (t *Transcript) RawSegments() []TranscriptSegment {
	out := make([]TranscriptSegment, 0, len(t.Segments))
	for _, s := range t.Segments {
		out = append(out, s.TranscriptSegment)
	}
	return out
}
