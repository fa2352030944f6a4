package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	dto "github.com/johnquangdev/transcript-intel/internal/adapter/dto/transcript"
	"github.com/johnquangdev/transcript-intel/internal/adapter/presenter"
	"github.com/johnquangdev/transcript-intel/internal/usecase/speaker"
	"github.com/johnquangdev/transcript-intel/internal/usecase/transcript"
)

// Transcript handles transcript ingestion and speaker reprocessing
type Transcript struct {
	svc    transcript.Service
	logger *zap.Logger
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(svc transcript.Service, logger *zap.Logger) *Transcript {
	return &Transcript{svc: svc, logger: logger}
}

// ProcessTranscript handles POST /meetings/:id/transcript
func (h *Transcript) ProcessTranscript(c echo.Context) error {
	meetingID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.ProcessTranscriptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.svc.ProcessVendorResponse(c.Request().Context(), transcript.ProcessRequest{
		OrganizationID: uuid.MustParse(req.OrganizationID),
		MeetingID:      meetingID,
		Title:          req.Title,
		Response:       req.Response,
		SpeakerAliases: req.SpeakerAliases,
		CalendarEmails: req.CalendarEmails,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusCreated, toProcessResponse(result))
}

// ProcessAssemblyAI handles POST /meetings/:id/transcript/assemblyai
func (h *Transcript) ProcessAssemblyAI(c echo.Context) error {
	meetingID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.ProcessAssemblyAIRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.svc.ProcessAssemblyAITranscript(c.Request().Context(), transcript.FetchRequest{
		OrganizationID: uuid.MustParse(req.OrganizationID),
		MeetingID:      meetingID,
		Title:          req.Title,
		TranscriptID:   req.TranscriptID,
		SpeakerAliases: req.SpeakerAliases,
		CalendarEmails: req.CalendarEmails,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusCreated, toProcessResponse(result))
}

// GetTranscript handles GET /meetings/:id/transcript
func (h *Transcript) GetTranscript(c echo.Context) error {
	meetingID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	t, archiveURL, err := h.svc.GetTranscript(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToTranscriptResponse(t, archiveURL))
}

// ReprocessSpeakers handles POST /meetings/:id/speakers/reprocess
func (h *Transcript) ReprocessSpeakers(c echo.Context) error {
	meetingID, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.ReprocessSpeakersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	in := speaker.ReprocessRequest{
		MeetingID:      meetingID,
		Transcript:     req.Transcript,
		SpeakerAliases: req.SpeakerAliases,
		CalendarEmails: req.CalendarEmails,
	}
	if req.OrganizationID != "" {
		in.OrganizationID = uuid.MustParse(req.OrganizationID)
	}

	result, err := h.svc.Reprocess(c.Request().Context(), in)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, toProcessResponse(result))
}

func toProcessResponse(result *transcript.ProcessResult) *dto.ProcessTranscriptResponse {
	if result == nil {
		return nil
	}
	resp := &dto.ProcessTranscriptResponse{
		Recognition: presenter.ToRecognitionResponse(result.Recognition),
		Strategy:    string(result.Strategy),
	}
	if result.Transcript != nil {
		resp.Transcript = presenter.ToTranscriptResponse(result.Transcript, "")
	}
	return resp
}

