package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/errors"
	dto "github.com/johnquangdev/transcript-intel/internal/adapter/dto/speaker"
	"github.com/johnquangdev/transcript-intel/internal/adapter/presenter"
	"github.com/johnquangdev/transcript-intel/internal/usecase/speaker"
)

// Organization handles per-organization speaker identity settings
type Organization struct {
	svc    speaker.Service
	logger *zap.Logger
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(svc speaker.Service, logger *zap.Logger) *Organization {
	return &Organization{svc: svc, logger: logger}
}

// ReplaceNamePatterns handles PUT /organizations/:id/name-patterns
func (h *Organization) ReplaceNamePatterns(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.ReplaceNamePatternsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	inputs := make([]speaker.PatternInput, 0, len(req.Patterns))
	for _, p := range req.Patterns {
		inputs = append(inputs, speaker.PatternInput{
			PatternID:    p.PatternID,
			Expression:   p.Expression,
			CaptureGroup: p.CaptureGroup,
		})
	}

	if err := h.svc.ReplaceOrgNamePatterns(c.Request().Context(), orgID, inputs); err != nil {
		return HandleError(h.logger, c, identityError(c, "replace_name_patterns", err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, &dto.ReplaceNamePatternsResponse{
		OrganizationID: orgID.String(),
		Count:          len(inputs),
	})
}

// MergeVoiceProfiles handles POST /organizations/:id/voice-profiles/merge
func (h *Organization) MergeVoiceProfiles(c echo.Context) error {
	orgID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.MergeVoiceProfilesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	kept, err := h.svc.MergeProfiles(c.Request().Context(), orgID,
		uuid.MustParse(req.KeepProfileID), uuid.MustParse(req.MergeProfileID))
	if err != nil {
		return HandleError(h.logger, c, identityError(c, "merge_profiles", err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToVoiceProfileResponse(kept))
}

// identityError reports unclassified failures as identity store errors
func identityError(c echo.Context, operation string, err error) error {
	if appErr := toAppError(c, err); appErr.Code != errors.ErrorCode_INTERNAL {
		return appErr
	}
	return errors.ErrIdentityStoreFailed(operation, err)
}
