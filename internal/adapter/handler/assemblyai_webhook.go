package handler

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/errors"
	dto "github.com/johnquangdev/transcript-intel/internal/adapter/dto/transcript"
	"github.com/johnquangdev/transcript-intel/internal/usecase/transcript"
)

// AssemblyAI transcript states reported through the webhook
const (
	webhookStatusCompleted = "completed"
	webhookStatusError     = "error"
)

// AssemblyAIWebhook receives transcript completion callbacks from AssemblyAI
// and runs the finished transcript through the pipeline.
type AssemblyAIWebhook struct {
	svc        transcript.Service
	headerName string
	secret     string
	logger     *zap.Logger

	// dispatch runs the pipeline after the webhook is acknowledged
	dispatch func(func())
}

// NewAssemblyAIWebhook creates a new webhook handler. Requests must carry
// secret in headerName.
func NewAssemblyAIWebhook(svc transcript.Service, headerName, secret string, logger *zap.Logger) *AssemblyAIWebhook {
	return &AssemblyAIWebhook{
		svc:        svc,
		headerName: headerName,
		secret:     secret,
		logger:     logger,
		dispatch:   func(fn func()) { go fn() },
	}
}

// Handle handles POST /webhooks/assemblyai?meeting_id=..&organization_id=..
func (h *AssemblyAIWebhook) Handle(c echo.Context) error {
	got := c.Request().Header.Get(h.headerName)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		return HandleError(h.logger, c, errors.ErrUnauthorized("invalid webhook secret"))
	}

	var query dto.AssemblyAIWebhookQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&query); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	var payload dto.AssemblyAIWebhookPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return HandleError(h.logger, c, err)
	}

	fields := []zap.Field{
		zap.String("transcript_id", payload.TranscriptID),
		zap.String("meeting_id", query.MeetingID),
		zap.String("status", payload.Status),
	}

	if payload.Status != webhookStatusCompleted {
		if payload.Status == webhookStatusError && h.logger != nil {
			h.logger.Warn("assemblyai reported a failed transcript", fields...)
		}
		return HandleSuccess(h.logger, c, http.StatusOK, map[string]string{"status": "ignored"})
	}

	req := transcript.FetchRequest{
		OrganizationID: uuid.MustParse(query.OrganizationID),
		MeetingID:      uuid.MustParse(query.MeetingID),
		Title:          query.Title,
		TranscriptID:   payload.TranscriptID,
	}
	// The pipeline outlives the webhook request
	ctx := context.WithoutCancel(c.Request().Context())
	h.dispatch(func() {
		if _, err := h.svc.ProcessAssemblyAITranscript(ctx, req); err != nil && h.logger != nil {
			h.logger.Error("failed to process assemblyai transcript", append(fields, zap.Error(err))...)
		}
	})

	return HandleSuccess(h.logger, c, http.StatusAccepted, map[string]string{"status": "processing"})
}
