package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	repo "github.com/johnquangdev/transcript-intel/internal/domain/repositories"
)

// TranscriptRepository handles transcript data operations
type TranscriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

var _ repo.TranscriptRepository = (*TranscriptRepository)(nil)

// Save upserts the transcript by meeting ID. The stored row is read back
// into transcript, so a re-run keeps the original ID and CreatedAt.
func (r *TranscriptRepository) Save(ctx context.Context, transcript *entities.Transcript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	transcript.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).
		Clauses(clause.Returning{}, clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"organization_id",
				"text",
				"segments",
				"speaker_map",
				"confidence",
				"quality_warning",
				"speaker_count",
				"duration_ms",
				"model_used",
				"archive_key",
				"raw_data",
				"updated_at",
			}),
		}).
		Create(transcript).Error
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}

// GetByMeetingID retrieves a transcript by meeting ID
func (r *TranscriptRepository) GetByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error) {
	var transcript entities.Transcript
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	return &transcript, nil
}

