package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	repo "github.com/johnquangdev/transcript-intel/internal/domain/repositories"
)

// NamePatternRepository implements organization name pattern storage using GORM
type NamePatternRepository struct {
	db *gorm.DB
}

// NewNamePatternRepository creates a new name pattern repository
func NewNamePatternRepository(db *gorm.DB) *NamePatternRepository {
	return &NamePatternRepository{db: db}
}

var _ repo.NamePatternRepository = (*NamePatternRepository)(nil)

// ListByOrganization returns the organization's patterns in position order
func (r *NamePatternRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*entities.NamePattern, error) {
	var patterns []*entities.NamePattern
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("position ASC").
		Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to list name patterns: %w", err)
	}
	return patterns, nil
}

// Replace swaps the whole pattern set of an organization
func (r *NamePatternRepository) Replace(ctx context.Context, organizationID uuid.UUID, patterns []*entities.NamePattern) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", organizationID).Delete(&entities.NamePattern{}).Error; err != nil {
			return err
		}
		if len(patterns) == 0 {
			return nil
		}
		for i, p := range patterns {
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			p.OrganizationID = organizationID
			p.Position = i
		}
		return tx.Create(&patterns).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace name patterns: %w", err)
	}
	return nil
}
