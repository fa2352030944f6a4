package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	"github.com/johnquangdev/transcript-intel/pkg/config"
)

var (
	// ErrTranscriptNotReady means AssemblyAI is still queued or processing
	ErrTranscriptNotReady = errors.New("assemblyai transcript not ready")
	// ErrTranscriptionFailed means AssemblyAI finished with status error
	ErrTranscriptionFailed = errors.New("assemblyai transcription failed")
)

type transcriptGetter interface {
	Get(ctx context.Context, transcriptID string) (aai.Transcript, error)
}

// AssemblyAIClient fetches finished transcripts through the official SDK
type AssemblyAIClient struct {
	transcripts transcriptGetter
	maxRetries  uint64
	backoff     func() backoff.BackOff
	logger      *zap.Logger
}

// NewAssemblyAIClient creates a client from config
func NewAssemblyAIClient(cfg *config.AssemblyConfig, logger *zap.Logger) *AssemblyAIClient {
	sdk := aai.NewClient(cfg.APIKey)
	return newClient(sdk.Transcripts, uint64(cfg.MaxRetries), logger)
}

func newClient(getter transcriptGetter, maxRetries uint64, logger *zap.Logger) *AssemblyAIClient {
	return &AssemblyAIClient{
		transcripts: getter,
		maxRetries:  maxRetries,
		backoff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 2 * time.Second
			bo.MaxInterval = 10 * time.Second
			bo.MaxElapsedTime = 30 * time.Second
			return bo
		},
		logger: logger,
	}
}

// FetchTranscript gets a completed transcript, retrying transient API failures
func (c *AssemblyAIClient) FetchTranscript(ctx context.Context, transcriptID string) (aai.Transcript, error) {
	var transcript aai.Transcript

	fetch := func() error {
		t, err := c.transcripts.Get(ctx, transcriptID)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if c.logger != nil {
				c.logger.Warn("assemblyai fetch failed",
					zap.String("transcript_id", transcriptID),
					zap.Error(err),
				)
			}
			return err
		}

		switch t.Status {
		case aai.TranscriptStatusCompleted:
			transcript = t
			return nil
		case aai.TranscriptStatusError:
			msg := "unknown error"
			if t.Error != nil {
				msg = *t.Error
			}
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrTranscriptionFailed, msg))
		default:
			return backoff.Permanent(fmt.Errorf("%w: status %s", ErrTranscriptNotReady, t.Status))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.backoff(), c.maxRetries), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return aai.Transcript{}, err
	}

	if c.logger != nil {
		c.logger.Info("assemblyai transcript fetched",
			zap.String("transcript_id", transcriptID),
			zap.Int("utterances", len(transcript.Utterances)),
			zap.Int("words", len(transcript.Words)),
		)
	}
	return transcript, nil
}

// FetchVendorResponse fetches a completed transcript and converts it for the normalizer
func (c *AssemblyAIClient) FetchVendorResponse(ctx context.Context, transcriptID string) (*entities.VendorResponse, error) {
	t, err := c.FetchTranscript(ctx, transcriptID)
	if err != nil {
		return nil, err
	}
	return ToVendorResponse(t), nil
}
