package presenter

import (
	"github.com/johnquangdev/transcript-intel/internal/adapter/dto/speaker"
	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
)

// ToVoiceProfileResponse converts a VoiceProfile entity to its DTO
func ToVoiceProfileResponse(p *entities.VoiceProfile) *speaker.VoiceProfileResponse {
	if p == nil {
		return nil
	}

	response := &speaker.VoiceProfileResponse{
		ID:              p.ID.String(),
		OrganizationID:  p.OrganizationID.String(),
		DisplayName:     p.DisplayName,
		SampleCount:     p.SampleCount,
		TotalDurationMs: p.TotalDurationMs,
		Confidence:      p.Confidence,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Email != nil {
		response.Email = *p.Email
	}
	if p.FirstMeetingID != nil {
		response.FirstMeetingID = p.FirstMeetingID.String()
	}
	if p.LastMeetingID != nil {
		response.LastMeetingID = p.LastMeetingID.String()
	}
	return response
}
