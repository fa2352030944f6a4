package transcript

import "github.com/johnquangdev/transcript-intel/internal/domain/entities"

// Hints are the optional per-meeting speaker hints
type Hints struct {
	SpeakerAliases map[string]string `json:"speaker_aliases,omitempty"`
	CalendarEmails []string          `json:"calendar_emails,omitempty" validate:"omitempty,dive,email"`
}

// ProcessTranscriptRequest carries a diarized vendor response
type ProcessTranscriptRequest struct {
	OrganizationID string                   `json:"organization_id" validate:"required,uuid"`
	Title          string                   `json:"title,omitempty" validate:"omitempty,max=255"`
	Response       *entities.VendorResponse `json:"response" validate:"required"`
	Hints
}

// ProcessAssemblyAIRequest names a finished AssemblyAI transcript to pull
type ProcessAssemblyAIRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	TranscriptID   string `json:"transcript_id" validate:"required,max=128"`
	Title          string `json:"title,omitempty" validate:"omitempty,max=255"`
	Hints
}

// ReprocessSpeakersRequest re-runs recognition. Transcript is optional; the
// stored transcript text is used when omitted.
type ReprocessSpeakersRequest struct {
	OrganizationID string `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	Transcript     string `json:"transcript,omitempty"`
	Hints
}

// AssemblyAIWebhookPayload is the body AssemblyAI posts when a transcript
// changes state
type AssemblyAIWebhookPayload struct {
	TranscriptID string `json:"transcript_id" validate:"required,max=128"`
	Status       string `json:"status" validate:"required"`
}

// AssemblyAIWebhookQuery is carried in the webhook URL registered with the
// transcription request
type AssemblyAIWebhookQuery struct {
	MeetingID      string `query:"meeting_id" json:"meeting_id" validate:"required,uuid"`
	OrganizationID string `query:"organization_id" json:"organization_id" validate:"required,uuid"`
	Title          string `query:"title" json:"title,omitempty" validate:"omitempty,max=255"`
}
