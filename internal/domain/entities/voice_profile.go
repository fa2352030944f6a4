package entities

import (
	"time"

	"github.com/google/uuid"
)

// Initial confidence assigned to a profile created from a single introduction
const NewProfileConfidence = 0.5

// VoiceProfile is a persistent recognized individual scoped to an organization.
// (organization, lower(display_name)) is unique by convention only; there is
// no database index behind it.
type VoiceProfile struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	DisplayName     string     `gorm:"type:varchar(255);not null" json:"display_name"`
	Email           *string    `gorm:"type:varchar(255);index" json:"email,omitempty"`
	SampleCount     int        `gorm:"not null;default:0" json:"sample_count"`
	TotalDurationMs int64      `gorm:"not null;default:0" json:"total_duration_ms"`
	Confidence      float64    `gorm:"not null;default:0" json:"confidence"`
	FirstMeetingID  *uuid.UUID `gorm:"type:uuid" json:"first_meeting_id,omitempty"`
	LastMeetingID   *uuid.UUID `gorm:"type:uuid" json:"last_meeting_id,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (VoiceProfile) TableName() string {
	return "voice_profiles"
}

// NewVoiceProfile creates a profile for a name seen for the first time in meetingID
func NewVoiceProfile(organizationID uuid.UUID, displayName string, meetingID uuid.UUID, durationMs int64) *VoiceProfile {
	m := meetingID
	return &VoiceProfile{
		ID:              uuid.New(),
		OrganizationID:  organizationID,
		DisplayName:     displayName,
		SampleCount:     1,
		TotalDurationMs: durationMs,
		Confidence:      NewProfileConfidence,
		FirstMeetingID:  &m,
		LastMeetingID:   &m,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

// IsNew reports whether the profile has exactly one recorded sample
func (p *VoiceProfile) IsNew() bool {
	return p.SampleCount == 1
}

// Absorb folds another profile's statistics into p
func (p *VoiceProfile) Absorb(other *VoiceProfile) {
	p.SampleCount += other.SampleCount
	p.TotalDurationMs += other.TotalDurationMs
	if other.Confidence > p.Confidence {
		p.Confidence = other.Confidence
	}
	if p.Email == nil && other.Email != nil {
		p.Email = other.Email
	}
	if other.LastMeetingID != nil && (p.LastMeetingID == nil || other.UpdatedAt.After(p.UpdatedAt)) {
		p.LastMeetingID = other.LastMeetingID
	}
	if p.FirstMeetingID == nil {
		p.FirstMeetingID = other.FirstMeetingID
	}
}
