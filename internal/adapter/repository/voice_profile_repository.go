package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	repo "github.com/johnquangdev/transcript-intel/internal/domain/repositories"
)

// VoiceProfileRepository implements the voice profile store using GORM
type VoiceProfileRepository struct {
	db *gorm.DB
}

// NewVoiceProfileRepository creates a new voice profile repository
func NewVoiceProfileRepository(db *gorm.DB) *VoiceProfileRepository {
	return &VoiceProfileRepository{db: db}
}

var _ repo.VoiceProfileRepository = (*VoiceProfileRepository)(nil)

// FindByName finds a profile by case-insensitive display name within an organization.
// The oldest profile wins when duplicates exist.
func (r *VoiceProfileRepository) FindByName(ctx context.Context, organizationID uuid.UUID, displayName string) (*entities.VoiceProfile, error) {
	var profile entities.VoiceProfile
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND LOWER(display_name) = ?", organizationID, strings.ToLower(strings.TrimSpace(displayName))).
		Order("created_at ASC").
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find voice profile by name: %w", err)
	}
	return &profile, nil
}

// FindByID finds a profile by ID
func (r *VoiceProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceProfile, error) {
	var profile entities.VoiceProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find voice profile by ID: %w", err)
	}
	return &profile, nil
}

// Create creates a new voice profile
func (r *VoiceProfileRepository) Create(ctx context.Context, profile *entities.VoiceProfile) error {
	if profile == nil {
		return errors.New("voice profile cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create voice profile: %w", err)
	}
	return nil
}

// RecordSample atomically bumps the sample counter and moves the last meeting pointer
func (r *VoiceProfileRepository) RecordSample(ctx context.Context, id uuid.UUID, meetingID uuid.UUID, durationMs int64) (*entities.VoiceProfile, error) {
	var profile entities.VoiceProfile
	result := r.db.WithContext(ctx).
		Model(&profile).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sample_count":      gorm.Expr("sample_count + 1"),
			"total_duration_ms": gorm.Expr("total_duration_ms + ?", durationMs),
			"last_meeting_id":   meetingID,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to record voice profile sample: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entities.ErrProfileNotFound
	}
	return &profile, nil
}

// FindByEmails returns the organization's profiles matching any of the emails
func (r *VoiceProfileRepository) FindByEmails(ctx context.Context, organizationID uuid.UUID, emails []string) ([]*entities.VoiceProfile, error) {
	if len(emails) == 0 {
		return []*entities.VoiceProfile{}, nil
	}
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(e)))
	}

	var profiles []*entities.VoiceProfile
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND LOWER(email) IN ?", organizationID, lowered).
		Order("display_name ASC").
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find voice profiles by email: %w", err)
	}
	return profiles, nil
}

// Merge folds mergeID into keepID inside one transaction
func (r *VoiceProfileRepository) Merge(ctx context.Context, keepID, mergeID uuid.UUID) (*entities.VoiceProfile, error) {
	var kept entities.VoiceProfile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var victim entities.VoiceProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", keepID).First(&kept).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entities.ErrProfileNotFound
			}
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", mergeID).First(&victim).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entities.ErrProfileNotFound
			}
			return err
		}

		kept.Absorb(&victim)
		if err := tx.Save(&kept).Error; err != nil {
			return err
		}

		if err := tx.Model(&entities.SpeakerMatch{}).
			Where("voice_profile_id = ?", mergeID).
			Update("voice_profile_id", keepID).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.VoiceProfile{}, "id = ?", mergeID).Error
	})
	if err != nil {
		if errors.Is(err, entities.ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to merge voice profiles: %w", err)
	}
	return &kept, nil
}
