package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	domainrepo "github.com/johnquangdev/transcript-intel/internal/domain/repositories"
	"github.com/johnquangdev/transcript-intel/internal/infrastructure/metrics"
	"github.com/johnquangdev/transcript-intel/internal/usecase/diarization"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
	"github.com/johnquangdev/transcript-intel/internal/usecase/postprocess"
	"github.com/johnquangdev/transcript-intel/internal/usecase/speaker"
	"github.com/johnquangdev/transcript-intel/pkg/jobcontext"
)

// Sources recorded in Transcript.ModelUsed and metrics
const (
	SourceVendor     = "vendor"
	SourceAssemblyAI = "assemblyai"
	SourceReprocess  = "reprocess"
)

const archiveURLExpiry = 15 * time.Minute

// Archiver stores rendered transcripts in object storage
type Archiver interface {
	ArchiveTranscript(ctx context.Context, key, markdown string) error
	ArchiveURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// EventPublisher announces recognized speakers to downstream consumers
type EventPublisher interface {
	PublishSpeakersRecognized(ctx context.Context, event entities.SpeakersRecognizedEvent) error
}

// VendorFetcher retrieves a finished vendor transcript by its ID
type VendorFetcher interface {
	FetchVendorResponse(ctx context.Context, transcriptID string) (*entities.VendorResponse, error)
}

// ProcessRequest runs one vendor response through the whole pipeline
type ProcessRequest struct {
	OrganizationID uuid.UUID
	MeetingID      uuid.UUID
	Title          string
	Response       *entities.VendorResponse
	SpeakerAliases map[string]string
	CalendarEmails []string
}

// FetchRequest pulls a finished AssemblyAI transcript and processes it
type FetchRequest struct {
	OrganizationID uuid.UUID
	MeetingID      uuid.UUID
	Title          string
	TranscriptID   string
	SpeakerAliases map[string]string
	CalendarEmails []string
}

// ProcessResult is the outcome of a pipeline run
type ProcessResult struct {
	Transcript  *entities.Transcript
	Recognition *entities.RecognitionResult
	Strategy    diarization.Strategy
}

// Service is the transcript processing entry point
type Service interface {
	ProcessVendorResponse(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
	ProcessAssemblyAITranscript(ctx context.Context, req FetchRequest) (*ProcessResult, error)
	Reprocess(ctx context.Context, req speaker.ReprocessRequest) (*ProcessResult, error)
	GetTranscript(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, string, error)
}

// Dependencies groups the collaborators of the pipeline. Archiver, Publisher,
// Fetcher and Metrics are optional.
type Dependencies struct {
	Transcripts domainrepo.TranscriptRepository
	Speakers    speaker.Service
	Archiver    Archiver
	Publisher   EventPublisher
	Fetcher     VendorFetcher
	Metrics     *metrics.Metrics
}

type pipeline struct {
	deps       Dependencies
	normalizer *diarization.Normalizer
	postOpts   postprocess.Options
	timeout    time.Duration
	logger     *zap.Logger
}

// NewService creates the pipeline
func NewService(deps Dependencies, normOpts diarization.Options, postOpts postprocess.Options, logger *zap.Logger) Service {
	return &pipeline{
		deps:       deps,
		normalizer: diarization.NewNormalizer(normOpts, logger),
		postOpts:   postOpts,
		timeout:    jobcontext.DefaultJobTimeout,
		logger:     logger,
	}
}

// ProcessVendorResponse normalizes, cleans, recognizes and stores one transcript
func (p *pipeline) ProcessVendorResponse(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	return p.run(ctx, jobcontext.JobTypeProcessTranscript, SourceVendor, req)
}

// ProcessAssemblyAITranscript fetches the transcript first, then runs the same path
func (p *pipeline) ProcessAssemblyAITranscript(ctx context.Context, req FetchRequest) (*ProcessResult, error) {
	if p.deps.Fetcher == nil {
		return nil, fmt.Errorf("%w: assemblyai is not configured", ucerrors.ErrInvalidInput)
	}
	if req.TranscriptID == "" {
		return nil, fmt.Errorf("%w: transcript id required", ucerrors.ErrInvalidInput)
	}

	jobCtx, cancel := jobcontext.JobBegin(ctx, jobcontext.JobTypeFetchAssemblyAI, req.MeetingID, p.timeout)
	defer cancel()

	resp, err := p.deps.Fetcher.FetchVendorResponse(jobCtx, req.TranscriptID)
	if err != nil {
		p.deps.Metrics.RecordProcessed(SourceAssemblyAI, err, 0)
		return nil, fmt.Errorf("%w: %s: %w", ucerrors.ErrVendorFetch, req.TranscriptID, err)
	}

	return p.run(ctx, jobcontext.JobTypeProcessTranscript, SourceAssemblyAI, ProcessRequest{
		OrganizationID: req.OrganizationID,
		MeetingID:      req.MeetingID,
		Title:          req.Title,
		Response:       resp,
		SpeakerAliases: req.SpeakerAliases,
		CalendarEmails: req.CalendarEmails,
	})
}

func (p *pipeline) run(ctx context.Context, jobType, source string, req ProcessRequest) (*ProcessResult, error) {
	if req.OrganizationID == uuid.Nil || req.MeetingID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization and meeting ids are required", ucerrors.ErrInvalidInput)
	}

	jobCtx, cancel := jobcontext.JobBegin(ctx, jobType, req.MeetingID, p.timeout)
	defer cancel()
	meta := jobcontext.GetJobMetadata(jobCtx)

	var result *ProcessResult
	err := jobcontext.Run(jobCtx, func(ctx context.Context) error {
		var err error
		result, err = p.process(ctx, source, req)
		return err
	})
	p.deps.Metrics.RecordProcessed(source, err, meta.Elapsed().Seconds())
	if err != nil {
		if p.logger != nil {
			p.logger.Error("transcript pipeline failed",
				zap.String("job_id", meta.JobID.String()),
				zap.String("meeting_id", req.MeetingID.String()),
				zap.String("source", source),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if p.logger != nil {
		p.logger.Info("transcript processed",
			zap.String("job_id", meta.JobID.String()),
			zap.String("meeting_id", req.MeetingID.String()),
			zap.String("strategy", string(result.Strategy)),
			zap.Int("segments", len(result.Transcript.Segments)),
			zap.Int("speakers", result.Transcript.SpeakerCount),
			zap.Duration("elapsed", meta.Elapsed()),
		)
	}
	return result, nil
}

func (p *pipeline) process(ctx context.Context, source string, req ProcessRequest) (*ProcessResult, error) {
	norm, err := p.normalizer.Normalize(req.Response)
	if err != nil {
		return nil, err
	}
	p.deps.Metrics.RecordNormalization(string(norm.Strategy), len(norm.Segments), norm.QualityWarning)
	if len(norm.Segments) == 0 {
		return nil, fmt.Errorf("%w: meeting %s", ucerrors.ErrNoSegments, req.MeetingID)
	}

	processed := postprocess.NewProcessor(p.postOpts.WithAliases(req.SpeakerAliases)).ProcessTranscript(norm.Segments)

	recognition, err := p.deps.Speakers.Recognize(ctx, speaker.RecognizeRequest{
		OrganizationID: req.OrganizationID,
		MeetingID:      req.MeetingID,
		Segments:       norm.Segments,
		SpeakerAliases: req.SpeakerAliases,
		CalendarEmails: req.CalendarEmails,
	})
	if err != nil {
		return nil, fmt.Errorf("recognize speakers: %w", err)
	}
	p.recordRecognition(recognition)
	applySpeakerMap(processed, recognition.SpeakerMap)

	t := entities.NewTranscript(req.MeetingID, req.OrganizationID)
	t.Text = speaker.FormatFlatTranscript(norm.Segments)
	t.Segments = datatypes.JSONSlice[entities.ProcessedSegment](processed)
	t.SpeakerMap = datatypes.NewJSONType(recognition.SpeakerMap)
	t.Confidence = norm.AverageConfidence
	t.QualityWarning = norm.QualityWarning || recognition.QualityWarning
	t.SpeakerCount = len(entities.SpeakerLabels(norm.Segments))
	t.DurationMs = norm.DurationMs
	t.ModelUsed = source
	t.RawData = datatypes.NewJSONType(map[string]interface{}{
		"strategy":            string(norm.Strategy),
		"request_id":          req.Response.Metadata.RequestID,
		"detections":          len(recognition.Detections),
		"unresolved_speakers": recognition.UnresolvedSpeakers,
	})

	p.archive(ctx, t, req.Title, processed)

	if err := p.deps.Transcripts.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}

	p.publish(ctx, req.OrganizationID, req.MeetingID, recognition)

	return &ProcessResult{Transcript: t, Recognition: recognition, Strategy: norm.Strategy}, nil
}

// Reprocess re-runs recognition on flat text. Without text, the stored
// transcript's text is used and its speaker map is updated in place.
func (p *pipeline) Reprocess(ctx context.Context, req speaker.ReprocessRequest) (*ProcessResult, error) {
	jobCtx, cancel := jobcontext.JobBegin(ctx, jobcontext.JobTypeReprocessSpeakers, req.MeetingID, p.timeout)
	defer cancel()
	meta := jobcontext.GetJobMetadata(jobCtx)

	stored, err := p.deps.Transcripts.GetByMeetingID(jobCtx, req.MeetingID)
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrTranscriptNotFound) && req.Transcript != "":
		stored = nil
	default:
		p.deps.Metrics.RecordProcessed(SourceReprocess, err, meta.Elapsed().Seconds())
		return nil, err
	}
	if req.Transcript == "" {
		req.Transcript = stored.Text
	}
	if req.OrganizationID == uuid.Nil && stored != nil {
		req.OrganizationID = stored.OrganizationID
	}

	out, err := p.deps.Speakers.ReprocessMeeting(jobCtx, req)
	p.deps.Metrics.RecordProcessed(SourceReprocess, err, meta.Elapsed().Seconds())
	if err != nil {
		return nil, err
	}
	p.recordRecognition(out.Recognition)

	result := &ProcessResult{Recognition: out.Recognition}
	if stored != nil {
		segments := []entities.ProcessedSegment(stored.Segments)
		applySpeakerMap(segments, out.Recognition.SpeakerMap)
		stored.Segments = datatypes.JSONSlice[entities.ProcessedSegment](segments)
		stored.SpeakerMap = datatypes.NewJSONType(out.Recognition.SpeakerMap)
		if err := p.deps.Transcripts.Save(jobCtx, stored); err != nil {
			return nil, fmt.Errorf("save transcript: %w", err)
		}
		result.Transcript = stored
	}

	p.publish(jobCtx, req.OrganizationID, req.MeetingID, out.Recognition)

	if p.logger != nil {
		p.logger.Info("speakers reprocessed",
			zap.String("job_id", meta.JobID.String()),
			zap.String("meeting_id", req.MeetingID.String()),
			zap.Int("segments", len(out.Segments)),
			zap.Int("named", len(out.Recognition.SpeakerMap)),
		)
	}
	return result, nil
}

// GetTranscript returns the stored transcript and, when archived, a
// presigned download URL for its markdown rendering
func (p *pipeline) GetTranscript(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, string, error) {
	t, err := p.deps.Transcripts.GetByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, "", err
	}
	if t.ArchiveKey == "" || p.deps.Archiver == nil {
		return t, "", nil
	}
	url, err := p.deps.Archiver.ArchiveURL(ctx, t.ArchiveKey, archiveURLExpiry)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("failed to presign archive url", zap.String("key", t.ArchiveKey), zap.Error(err))
		}
		return t, "", nil
	}
	return t, url, nil
}

// ArchiveKey is the object key of a meeting's markdown transcript
func ArchiveKey(organizationID, meetingID uuid.UUID) string {
	return fmt.Sprintf("transcripts/%s/%s.md", organizationID, meetingID)
}

// archive failures are logged; the transcript is still stored without a key
func (p *pipeline) archive(ctx context.Context, t *entities.Transcript, title string, segments []entities.ProcessedSegment) {
	if p.deps.Archiver == nil {
		return
	}
	key := ArchiveKey(t.OrganizationID, t.MeetingID)
	markdown := postprocess.RenderMarkdown(title, time.Now(), segments)
	if err := p.deps.Archiver.ArchiveTranscript(ctx, key, markdown); err != nil {
		if p.logger != nil {
			p.logger.Warn("failed to archive transcript",
				zap.String("meeting_id", t.MeetingID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return
	}
	t.ArchiveKey = key
}

func (p *pipeline) publish(ctx context.Context, organizationID, meetingID uuid.UUID, r *entities.RecognitionResult) {
	if p.deps.Publisher == nil {
		return
	}
	event := entities.NewSpeakersRecognizedEvent(organizationID, meetingID, r)
	if err := p.deps.Publisher.PublishSpeakersRecognized(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("failed to publish speakers event",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
}

func (p *pipeline) recordRecognition(r *entities.RecognitionResult) {
	patternIDs := make([]string, 0, len(r.Detections))
	for _, d := range r.Detections {
		patternIDs = append(patternIDs, d.PatternID)
	}
	p.deps.Metrics.RecordRecognition(patternIDs, len(r.NewProfileIDs), len(r.MatchedProfileIDs), len(r.UnresolvedSpeakers))
}

// applySpeakerMap sets each segment's display name from the final speaker map
func applySpeakerMap(segments []entities.ProcessedSegment, speakerMap map[string]string) {
	for i := range segments {
		segments[i].DisplaySpeaker = postprocess.ResolveSpeaker(segments[i].SpeakerLabel, speakerMap)
	}
}
