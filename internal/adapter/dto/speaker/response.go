package speaker

import "time"

// VoiceProfileResponse is a voice profile as returned by the API
type VoiceProfileResponse struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	DisplayName     string    `json:"display_name"`
	Email           string    `json:"email,omitempty"`
	SampleCount     int       `json:"sample_count"`
	TotalDurationMs int64     `json:"total_duration_ms"`
	Confidence      float64   `json:"confidence"`
	FirstMeetingID  string    `json:"first_meeting_id,omitempty"`
	LastMeetingID   string    `json:"last_meeting_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ReplaceNamePatternsResponse confirms a pattern replacement
type ReplaceNamePatternsResponse struct {
	OrganizationID string `json:"organization_id"`
	Count          int    `json:"count"`
}
