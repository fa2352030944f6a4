package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
)

// VoiceProfileRepository defines the identity store contract for voice profiles
type VoiceProfileRepository interface {
	// FindByName returns the organization's profile whose display name matches
	// case-insensitively, or nil when none exists
	FindByName(ctx context.Context, organizationID uuid.UUID, displayName string) (*entities.VoiceProfile, error)

	// FindByID returns entities.ErrProfileNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceProfile, error)

	// Create inserts a new profile
	Create(ctx context.Context, profile *entities.VoiceProfile) error

	// RecordSample increments the sample count, moves the last-meeting pointer
	// and adds speaking time. Returns the updated profile.
	RecordSample(ctx context.Context, id uuid.UUID, meetingID uuid.UUID, durationMs int64) (*entities.VoiceProfile, error)

	// FindByEmails loads the organization's profiles for the given emails
	FindByEmails(ctx context.Context, organizationID uuid.UUID, emails []string) ([]*entities.VoiceProfile, error)

	// Merge folds mergeID into keepID, repoints its speaker matches and deletes it
	Merge(ctx context.Context, keepID, mergeID uuid.UUID) (*entities.VoiceProfile, error)
}

// SpeakerMatchRepository persists per-meeting speaker bindings
type SpeakerMatchRepository interface {
	// Upsert inserts or updates the match keyed by (meeting_id, speaker_label)
	Upsert(ctx context.Context, match *entities.SpeakerMatch) error

	// ListByMeeting returns the meeting's matches ordered by speaker label
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.SpeakerMatch, error)
}

// NamePatternRepository stores organization custom name patterns
type NamePatternRepository interface {
	// ListByOrganization returns patterns in position order
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*entities.NamePattern, error)

	// Replace deletes every pattern of the organization and inserts patterns
	Replace(ctx context.Context, organizationID uuid.UUID, patterns []*entities.NamePattern) error
}
