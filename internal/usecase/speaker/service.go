package speaker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	domainrepo "github.com/johnquangdev/transcript-intel/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
	"github.com/johnquangdev/transcript-intel/internal/usecase/namedetect"
	"github.com/johnquangdev/transcript-intel/pkg/jobcontext"
)

// PatternCache caches organization custom patterns between meetings
type PatternCache interface {
	GetPatterns(ctx context.Context, organizationID uuid.UUID) ([]*entities.NamePattern, bool, error)
	SetPatterns(ctx context.Context, organizationID uuid.UUID, patterns []*entities.NamePattern) error
	InvalidatePatterns(ctx context.Context, organizationID uuid.UUID) error
}

// Options configures recognition
type Options struct {
	Detection               namedetect.Options
	QualityWarningThreshold float64
	ReadRetries             uint64
}

// DefaultOptions returns the standard recognition settings
func DefaultOptions() Options {
	return Options{
		Detection:               namedetect.DefaultOptions(),
		QualityWarningThreshold: 0.7,
		ReadRetries:             3,
	}
}

// RecognizeRequest carries one meeting's segments and hints
type RecognizeRequest struct {
	OrganizationID uuid.UUID
	MeetingID      uuid.UUID
	Segments       []entities.TranscriptSegment
	SpeakerAliases map[string]string
	CalendarEmails []string
}

// Service reconciles aliases, calendar hints, introduction detections and the
// identity store into a per-meeting speaker map
type Service interface {
	Recognize(ctx context.Context, req RecognizeRequest) (*entities.RecognitionResult, error)
	ReprocessMeeting(ctx context.Context, req ReprocessRequest) (*ReprocessResult, error)
	ReplaceOrgNamePatterns(ctx context.Context, organizationID uuid.UUID, patterns []PatternInput) error
	MergeProfiles(ctx context.Context, organizationID, keepID, mergeID uuid.UUID) (*entities.VoiceProfile, error)
}

type speakerService struct {
	profiles domainrepo.VoiceProfileRepository
	matches  domainrepo.SpeakerMatchRepository
	patterns domainrepo.NamePatternRepository
	cache    PatternCache
	opts     Options
	logger   *zap.Logger
}

// NewService constructs the recognition service. cache may be nil.
func NewService(
	profiles domainrepo.VoiceProfileRepository,
	matches domainrepo.SpeakerMatchRepository,
	patterns domainrepo.NamePatternRepository,
	cache PatternCache,
	opts Options,
	logger *zap.Logger,
) Service {
	if opts.QualityWarningThreshold <= 0 {
		opts.QualityWarningThreshold = DefaultOptions().QualityWarningThreshold
	}
	return &speakerService{
		profiles: profiles,
		matches:  matches,
		patterns: patterns,
		cache:    cache,
		opts:     opts,
		logger:   logger,
	}
}

// Recognize builds the speaker map for one meeting. Identity store failures
// for a single speaker are logged and leave that speaker unresolved.
func (s *speakerService) Recognize(ctx context.Context, req RecognizeRequest) (*entities.RecognitionResult, error) {
	if req.OrganizationID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id required", ucerrors.ErrInvalidInput)
	}
	if req.MeetingID == uuid.Nil {
		return nil, fmt.Errorf("%w: meeting id required", ucerrors.ErrInvalidInput)
	}

	result := entities.NewRecognitionResult()
	result.QualityWarning = len(req.Segments) > 0 &&
		entities.AverageSegmentConfidence(req.Segments) < s.opts.QualityWarningThreshold

	// Phase 1: manual aliases are final
	for label, name := range req.SpeakerAliases {
		if name != "" {
			result.SpeakerMap[label] = name
		}
	}

	// Phase 2: calendar participants only load candidates for now
	s.loadCalendarCandidates(ctx, req)

	// Phase 3: introductions
	detector := s.detectorFor(ctx, req.OrganizationID)
	result.Detections = detector.DetectWithIntroductionFocus(req.Segments)
	speakingTime := entities.SpeakingTimeByLabel(req.Segments)

	seenNew := make(map[uuid.UUID]bool)
	seenMatched := make(map[uuid.UUID]bool)
	for _, det := range result.Detections {
		if _, aliased := result.SpeakerMap[det.SpeakerLabel]; aliased {
			continue
		}

		profile, err := s.findOrCreateProfile(ctx, req, det.Name, speakingTime[det.SpeakerLabel])
		if err != nil {
			s.logWarn("failed to resolve voice profile", err, req, det.SpeakerLabel)
			continue
		}
		if err := s.matches.Upsert(ctx, entities.NewIntroductionMatch(req.MeetingID, profile.ID, det)); err != nil {
			s.logWarn("failed to upsert speaker match", err, req, det.SpeakerLabel)
			continue
		}

		result.SpeakerMap[det.SpeakerLabel] = profile.DisplayName
		switch {
		case profile.IsNew() && !seenNew[profile.ID]:
			seenNew[profile.ID] = true
			result.NewProfileIDs = append(result.NewProfileIDs, profile.ID)
		case !profile.IsNew() && !seenNew[profile.ID] && !seenMatched[profile.ID]:
			seenMatched[profile.ID] = true
			result.MatchedProfileIDs = append(result.MatchedProfileIDs, profile.ID)
		}
	}

	// Phase 4: whatever is left keeps its raw label
	for _, label := range entities.SpeakerLabels(req.Segments) {
		if _, ok := result.SpeakerMap[label]; !ok {
			result.UnresolvedSpeakers = append(result.UnresolvedSpeakers, label)
		}
	}
	if len(result.UnresolvedSpeakers) > 0 && s.logger != nil {
		s.logger.Info("speakers left unidentified",
			zap.String("meeting_id", req.MeetingID.String()),
			zap.Strings("speakers", result.UnresolvedSpeakers),
		)
	}

	if s.logger != nil {
		s.logger.Info("speaker recognition completed",
			zap.String("meeting_id", req.MeetingID.String()),
			zap.Int("detections", len(result.Detections)),
			zap.Int("new_profiles", len(result.NewProfileIDs)),
			zap.Int("matched_profiles", len(result.MatchedProfileIDs)),
			zap.Bool("quality_warning", result.QualityWarning),
		)
	}
	return result, nil
}

// findOrCreateProfile looks up the name case-insensitively and either records
// a new sample or creates the profile. The read-then-write is not atomic.
func (s *speakerService) findOrCreateProfile(ctx context.Context, req RecognizeRequest, name string, durationMs int64) (*entities.VoiceProfile, error) {
	var existing *entities.VoiceProfile
	err := jobcontext.Retry(ctx, s.opts.ReadRetries, func() error {
		p, err := s.profiles.FindByName(ctx, req.OrganizationID, name)
		existing = p
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find profile %q: %w", name, err)
	}

	if existing != nil {
		updated, err := s.profiles.RecordSample(ctx, existing.ID, req.MeetingID, durationMs)
		if err != nil {
			return nil, fmt.Errorf("record sample for profile %s: %w", existing.ID, err)
		}
		return updated, nil
	}

	profile := entities.NewVoiceProfile(req.OrganizationID, name, req.MeetingID, durationMs)
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile %q: %w", name, err)
	}
	if s.logger != nil {
		s.logger.Info("voice profile created",
			zap.String("organization_id", req.OrganizationID.String()),
			zap.String("profile_id", profile.ID.String()),
			zap.String("display_name", profile.DisplayName),
		)
	}
	return profile, nil
}

func (s *speakerService) loadCalendarCandidates(ctx context.Context, req RecognizeRequest) {
	if len(req.CalendarEmails) == 0 {
		return
	}
	var candidates []*entities.VoiceProfile
	err := jobcontext.Retry(ctx, s.opts.ReadRetries, func() error {
		p, err := s.profiles.FindByEmails(ctx, req.OrganizationID, req.CalendarEmails)
		candidates = p
		return err
	})
	if s.logger == nil {
		return
	}
	if err != nil {
		s.logger.Warn("failed to load calendar participant profiles",
			zap.String("meeting_id", req.MeetingID.String()),
			zap.Error(err),
		)
		return
	}
	names := make([]string, 0, len(candidates))
	for _, p := range candidates {
		names = append(names, p.DisplayName)
	}
	s.logger.Info("calendar participants with known profiles",
		zap.String("meeting_id", req.MeetingID.String()),
		zap.Int("emails", len(req.CalendarEmails)),
		zap.Strings("profiles", names),
	)
}

// detectorFor builds a detector with the organization's custom patterns,
// falling back to the built-ins when they cannot be loaded or compiled
func (s *speakerService) detectorFor(ctx context.Context, organizationID uuid.UUID) *namedetect.Detector {
	stored, err := s.loadPatterns(ctx, organizationID)
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to load custom name patterns",
			zap.String("organization_id", organizationID.String()),
			zap.Error(err),
		)
	}
	if len(stored) > 0 {
		detector, err := namedetect.NewDetector(namedetect.CustomSpecs(stored), s.opts.Detection)
		if err == nil {
			return detector
		}
		if s.logger != nil {
			s.logger.Error("stored name patterns are invalid, using built-ins",
				zap.String("organization_id", organizationID.String()),
				zap.Error(err),
			)
		}
	}
	detector, err := namedetect.NewDetector(nil, s.opts.Detection)
	if err != nil {
		panic(fmt.Sprintf("built-in name patterns failed to compile: %v", err))
	}
	return detector
}

func (s *speakerService) loadPatterns(ctx context.Context, organizationID uuid.UUID) ([]*entities.NamePattern, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetPatterns(ctx, organizationID)
		if err == nil && ok {
			return cached, nil
		}
		if err != nil && s.logger != nil {
			s.logger.Warn("name pattern cache read failed", zap.Error(err))
		}
	}
	if s.patterns == nil {
		return nil, nil
	}

	var stored []*entities.NamePattern
	err := jobcontext.Retry(ctx, s.opts.ReadRetries, func() error {
		p, err := s.patterns.ListByOrganization(ctx, organizationID)
		stored = p
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetPatterns(ctx, organizationID, stored); err != nil && s.logger != nil {
			s.logger.Warn("name pattern cache write failed", zap.Error(err))
		}
	}
	return stored, nil
}

func (s *speakerService) logWarn(msg string, err error, req RecognizeRequest, label string) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg,
		zap.String("organization_id", req.OrganizationID.String()),
		zap.String("meeting_id", req.MeetingID.String()),
		zap.String("speaker_label", label),
		zap.Error(err),
	)
}
