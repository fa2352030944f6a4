package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	repo "github.com/johnquangdev/transcript-intel/internal/domain/repositories"
)

// SpeakerMatchRepository implements speaker match persistence using GORM
type SpeakerMatchRepository struct {
	db *gorm.DB
}

// NewSpeakerMatchRepository creates a new speaker match repository
func NewSpeakerMatchRepository(db *gorm.DB) *SpeakerMatchRepository {
	return &SpeakerMatchRepository{db: db}
}

var _ repo.SpeakerMatchRepository = (*SpeakerMatchRepository)(nil)

// Upsert inserts the match or overwrites the existing row for (meeting_id, speaker_label)
func (r *SpeakerMatchRepository) Upsert(ctx context.Context, match *entities.SpeakerMatch) error {
	if match == nil {
		return errors.New("speaker match cannot be nil")
	}
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}, {Name: "speaker_label"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"voice_profile_id",
				"match_method",
				"confidence",
				"detected_phrase",
				"detected_at_ms",
				"updated_at",
			}),
		}).
		Create(match).Error
	if err != nil {
		return fmt.Errorf("failed to upsert speaker match: %w", err)
	}
	return nil
}

// ListByMeeting returns all matches recorded for a meeting
func (r *SpeakerMatchRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.SpeakerMatch, error) {
	var matches []*entities.SpeakerMatch
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("speaker_label ASC").
		Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("failed to list speaker matches: %w", err)
	}
	return matches, nil
}
