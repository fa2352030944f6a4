package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
)

// TranscriptRepository defines persistence operations for processed transcripts
type TranscriptRepository interface {
	// Save inserts or replaces the meeting's transcript
	Save(ctx context.Context, t *entities.Transcript) error

	// GetByMeetingID returns entities.ErrTranscriptNotFound when missing
	GetByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error)
}
