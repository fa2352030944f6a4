package speaker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
	"github.com/johnquangdev/transcript-intel/internal/usecase/namedetect"
)

// PatternInput is one organization pattern as submitted by an operator
type PatternInput struct {
	PatternID    string
	Expression   string
	CaptureGroup int
}

// ReplaceOrgNamePatterns validates every pattern, then swaps the organization's
// whole set. Nothing is stored if any pattern fails to compile.
func (s *speakerService) ReplaceOrgNamePatterns(ctx context.Context, organizationID uuid.UUID, inputs []PatternInput) error {
	if organizationID == uuid.Nil {
		return fmt.Errorf("%w: organization id required", ucerrors.ErrInvalidInput)
	}

	stored := make([]*entities.NamePattern, 0, len(inputs))
	for i, in := range inputs {
		group := in.CaptureGroup
		if group == 0 {
			group = 1
		}
		id := in.PatternID
		if id == "" {
			id = fmt.Sprintf("custom_%d", i+1)
		}
		stored = append(stored, &entities.NamePattern{
			ID:             uuid.New(),
			OrganizationID: organizationID,
			PatternID:      id,
			Expression:     in.Expression,
			CaptureGroup:   group,
			Position:       i,
		})
	}
	if err := namedetect.ValidatePatterns(namedetect.CustomSpecs(stored)); err != nil {
		return err
	}

	if err := s.patterns.Replace(ctx, organizationID, stored); err != nil {
		return fmt.Errorf("replace name patterns: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.InvalidatePatterns(ctx, organizationID); err != nil && s.logger != nil {
			s.logger.Warn("failed to invalidate name pattern cache",
				zap.String("organization_id", organizationID.String()),
				zap.Error(err),
			)
		}
	}
	if s.logger != nil {
		s.logger.Info("organization name patterns replaced",
			zap.String("organization_id", organizationID.String()),
			zap.Int("count", len(stored)),
		)
	}
	return nil
}

// MergeProfiles folds mergeID into keepID. It is never triggered automatically.
func (s *speakerService) MergeProfiles(ctx context.Context, organizationID, keepID, mergeID uuid.UUID) (*entities.VoiceProfile, error) {
	if keepID == mergeID {
		return nil, ucerrors.ErrSameProfile
	}
	for _, id := range []uuid.UUID{keepID, mergeID} {
		p, err := s.profiles.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", id, err)
		}
		if p.OrganizationID != organizationID {
			return nil, ucerrors.ErrOrganizationMismatch
		}
	}

	merged, err := s.profiles.Merge(ctx, keepID, mergeID)
	if err != nil {
		return nil, fmt.Errorf("merge profiles: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("voice profiles merged",
			zap.String("organization_id", organizationID.String()),
			zap.String("kept_profile_id", keepID.String()),
			zap.String("merged_profile_id", mergeID.String()),
			zap.Int("sample_count", merged.SampleCount),
		)
	}
	return merged, nil
}
