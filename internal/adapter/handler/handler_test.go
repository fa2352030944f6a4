package handler

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/errors"
	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
	"github.com/johnquangdev/transcript-intel/internal/usecase/speaker"
	"github.com/johnquangdev/transcript-intel/internal/usecase/transcript"
	"github.com/johnquangdev/transcript-intel/pkg/ai"
	"github.com/johnquangdev/transcript-intel/pkg/config"
	"github.com/johnquangdev/transcript-intel/pkg/validator"
)

const (
	orgID     = "5b8f5a3e-1f7a-4c1e-9d53-3c1c2f3c8c11"
	meetingID = "0d6c2b1e-7a43-4f0e-8f3b-2a9f6c1d4e55"
)

type fakeTranscriptService struct {
	result *transcript.ProcessResult
	err    error

	processReq   transcript.ProcessRequest
	fetchReq     transcript.FetchRequest
	reprocessReq speaker.ReprocessRequest
	stored       *entities.Transcript
	archiveURL   string
}

func (f *fakeTranscriptService) ProcessVendorResponse(_ context.Context, req transcript.ProcessRequest) (*transcript.ProcessResult, error) {
	f.processReq = req
	return f.result, f.err
}

func (f *fakeTranscriptService) ProcessAssemblyAITranscript(_ context.Context, req transcript.FetchRequest) (*transcript.ProcessResult, error) {
	f.fetchReq = req
	return f.result, f.err
}

func (f *fakeTranscriptService) Reprocess(_ context.Context, req speaker.ReprocessRequest) (*transcript.ProcessResult, error) {
	f.reprocessReq = req
	return f.result, f.err
}

func (f *fakeTranscriptService) GetTranscript(_ context.Context, _ uuid.UUID) (*entities.Transcript, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.stored, f.archiveURL, nil
}

type fakeSpeakerService struct {
	err      error
	patterns []speaker.PatternInput
	kept     *entities.VoiceProfile
}

func (f *fakeSpeakerService) Recognize(context.Context, speaker.RecognizeRequest) (*entities.RecognitionResult, error) {
	return entities.NewRecognitionResult(), nil
}

func (f *fakeSpeakerService) ReprocessMeeting(context.Context, speaker.ReprocessRequest) (*speaker.ReprocessResult, error) {
	return &speaker.ReprocessResult{Recognition: entities.NewRecognitionResult()}, nil
}

func (f *fakeSpeakerService) ReplaceOrgNamePatterns(_ context.Context, _ uuid.UUID, patterns []speaker.PatternInput) error {
	f.patterns = patterns
	return f.err
}

func (f *fakeSpeakerService) MergeProfiles(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*entities.VoiceProfile, error) {
	return f.kept, f.err
}

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Info    string            `json:"info"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

func newTestServer(ts transcript.Service, ss speaker.Service, ready ReadinessCheck) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	NewRouter(
		&config.Config{Server: config.ServerConfig{Environment: "test"}},
		NewTranscriptHandler(ts, logger),
		NewOrganizationHandler(ss, logger),
		nil,
		reg,
		ready,
		logger,
	).Setup(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func vendorBody() string {
	return fmt.Sprintf(`{
		"organization_id": %q,
		"title": "Weekly sync",
		"speaker_aliases": {"0": "Ana"},
		"response": {"metadata": {"duration": 4}, "results": {"channels": [{"alternatives": [{"transcript": "hi", "confidence": 0.9, "words": []}]}]}}
	}`, orgID)
}

func TestProcessTranscript(t *testing.T) {
	rec := entities.NewRecognitionResult()
	rec.SpeakerMap["0"] = "Ana"
	stored := entities.NewTranscript(uuid.MustParse(meetingID), uuid.MustParse(orgID))
	svc := &fakeTranscriptService{result: &transcript.ProcessResult{
		Transcript:  stored,
		Recognition: rec,
		Strategy:    "utterances",
	}}
	e := newTestServer(svc, &fakeSpeakerService{}, nil)

	code, env := do(t, e, http.MethodPost, "/v1/meetings/"+meetingID+"/transcript", vendorBody())
	if code != http.StatusCreated {
		t.Fatalf("status = %d, body %+v", code, env)
	}
	if svc.processReq.MeetingID.String() != meetingID || svc.processReq.OrganizationID.String() != orgID {
		t.Errorf("unexpected request ids %+v", svc.processReq)
	}
	if svc.processReq.SpeakerAliases["0"] != "Ana" || svc.processReq.Title != "Weekly sync" {
		t.Errorf("hints not forwarded: %+v", svc.processReq)
	}
	if svc.processReq.Response == nil || svc.processReq.Response.Metadata.Duration != 4 {
		t.Errorf("vendor response not forwarded: %+v", svc.processReq.Response)
	}

	var data struct {
		Strategy    string `json:"strategy"`
		Recognition struct {
			SpeakerMap map[string]string `json:"speaker_map"`
		} `json:"recognition"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Strategy != "utterances" || data.Recognition.SpeakerMap["0"] != "Ana" {
		t.Errorf("unexpected data %s", env.Data)
	}
}

func TestProcessTranscriptErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{
			name:       "bad meeting id",
			path:       "/v1/meetings/nope/transcript",
			body:       vendorBody(),
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrorCode_INVALID_ARGUMENT,
		},
		{
			name:       "malformed json",
			path:       "/v1/meetings/" + meetingID + "/transcript",
			body:       `{"organization_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrorCode_INVALID_PAYLOAD,
		},
		{
			name:       "missing organization",
			path:       "/v1/meetings/" + meetingID + "/transcript",
			body:       `{"response": {"metadata": {"duration": 1}, "results": {"channels": []}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrorCode_INVALID_ARGUMENT,
		},
		{
			name:       "malformed vendor response",
			path:       "/v1/meetings/" + meetingID + "/transcript",
			body:       vendorBody(),
			svcErr:     fmt.Errorf("normalize: %w", ucerrors.ErrMalformedResponse),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errors.ErrorCode_TRANSCRIPT_MALFORMED,
		},
		{
			name:       "no segments",
			path:       "/v1/meetings/" + meetingID + "/transcript",
			body:       vendorBody(),
			svcErr:     fmt.Errorf("meeting %s: %w", meetingID, ucerrors.ErrNoSegments),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errors.ErrorCode_TRANSCRIPT_EMPTY,
		},
		{
			name:       "unclassified failure",
			path:       "/v1/meetings/" + meetingID + "/transcript",
			body:       vendorBody(),
			svcErr:     stdErrors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.ErrorCode_INTERNAL,
		},
		{
			name:       "deadline",
			path:       "/v1/meetings/" + meetingID + "/transcript",
			body:       vendorBody(),
			svcErr:     fmt.Errorf("job: %w", context.DeadlineExceeded),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.ErrorCode_PROCESSING_FAILED,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(&fakeTranscriptService{err: tt.svcErr}, &fakeSpeakerService{}, nil)
			code, env := do(t, e, http.MethodPost, tt.path, tt.body)
			if code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%+v)", code, tt.wantStatus, env)
			}
			if errors.ErrorCode(env.Code) != tt.wantCode {
				t.Errorf("code = %s, want %s", errors.ErrorCode(env.Code), tt.wantCode)
			}
		})
	}
}

func TestEmptyTranscriptCarriesMeetingID(t *testing.T) {
	e := newTestServer(&fakeTranscriptService{err: ucerrors.ErrNoSegments}, &fakeSpeakerService{}, nil)
	_, env := do(t, e, http.MethodPost, "/v1/meetings/"+meetingID+"/transcript", vendorBody())
	if env.Details["meeting_id"] != meetingID {
		t.Errorf("details = %v", env.Details)
	}
}

func TestProcessAssemblyAI(t *testing.T) {
	body := fmt.Sprintf(`{"organization_id": %q, "transcript_id": "tx-1", "calendar_emails": ["ana@example.com"]}`, orgID)

	t.Run("forwards request", func(t *testing.T) {
		svc := &fakeTranscriptService{result: &transcript.ProcessResult{Recognition: entities.NewRecognitionResult()}}
		e := newTestServer(svc, &fakeSpeakerService{}, nil)
		code, env := do(t, e, http.MethodPost, "/v1/meetings/"+meetingID+"/transcript/assemblyai", body)
		if code != http.StatusCreated {
			t.Fatalf("status = %d (%+v)", code, env)
		}
		if svc.fetchReq.TranscriptID != "tx-1" || len(svc.fetchReq.CalendarEmails) != 1 {
			t.Errorf("unexpected fetch request %+v", svc.fetchReq)
		}
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{"not ready", fmt.Errorf("%w: tx-1: %w", ucerrors.ErrVendorFetch, ai.ErrTranscriptNotReady), http.StatusConflict, errors.ErrorCode_CONFLICT},
		{"vendor failed", fmt.Errorf("%w: tx-1: %w", ucerrors.ErrVendorFetch, ai.ErrTranscriptionFailed), http.StatusBadGateway, errors.ErrorCode_AI_TRANSCRIPTION_FAILED},
		{"unreachable", fmt.Errorf("%w: tx-1: %w", ucerrors.ErrVendorFetch, stdErrors.New("dial tcp: timeout")), http.StatusBadGateway, errors.ErrorCode_INTEGRATION_EXTERNAL_API_FAILED},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(&fakeTranscriptService{err: tt.err}, &fakeSpeakerService{}, nil)
			code, env := do(t, e, http.MethodPost, "/v1/meetings/"+meetingID+"/transcript/assemblyai", body)
			if code != tt.wantStatus || errors.ErrorCode(env.Code) != tt.wantCode {
				t.Fatalf("got %d/%s, want %d/%s", code, errors.ErrorCode(env.Code), tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestGetTranscript(t *testing.T) {
	stored := entities.NewTranscript(uuid.MustParse(meetingID), uuid.MustParse(orgID))
	stored.ArchiveKey = "transcripts/x.md"
	svc := &fakeTranscriptService{stored: stored, archiveURL: "https://archive.local/x.md"}
	e := newTestServer(svc, &fakeSpeakerService{}, nil)

	code, env := do(t, e, http.MethodGet, "/v1/meetings/"+meetingID+"/transcript", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var data struct {
		MeetingID  string `json:"meeting_id"`
		ArchiveURL string `json:"archive_url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.MeetingID != meetingID || data.ArchiveURL != "https://archive.local/x.md" {
		t.Errorf("unexpected data %s", env.Data)
	}

	missing := newTestServer(&fakeTranscriptService{err: entities.ErrTranscriptNotFound}, &fakeSpeakerService{}, nil)
	code, env = do(t, missing, http.MethodGet, "/v1/meetings/"+meetingID+"/transcript", "")
	if code != http.StatusNotFound || errors.ErrorCode(env.Code) != errors.ErrorCode_TRANSCRIPT_NOT_FOUND {
		t.Fatalf("got %d/%s", code, errors.ErrorCode(env.Code))
	}
	if env.Details["meeting_id"] != meetingID {
		t.Errorf("details = %v", env.Details)
	}
}

func TestReprocessSpeakers(t *testing.T) {
	svc := &fakeTranscriptService{result: &transcript.ProcessResult{Recognition: entities.NewRecognitionResult()}}
	e := newTestServer(svc, &fakeSpeakerService{}, nil)

	code, _ := do(t, e, http.MethodPost, "/v1/meetings/"+meetingID+"/speakers/reprocess", `{}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if svc.reprocessReq.OrganizationID != uuid.Nil || svc.reprocessReq.Transcript != "" {
		t.Errorf("expected empty request to defer to stored transcript, got %+v", svc.reprocessReq)
	}

	body := fmt.Sprintf(`{"organization_id": %q, "transcript": "Speaker 0: I'm Ana."}`, orgID)
	if code, _ = do(t, e, http.MethodPost, "/v1/meetings/"+meetingID+"/speakers/reprocess", body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if svc.reprocessReq.OrganizationID.String() != orgID || svc.reprocessReq.Transcript == "" {
		t.Errorf("inline request not forwarded: %+v", svc.reprocessReq)
	}
}

func TestReplaceNamePatterns(t *testing.T) {
	path := "/v1/organizations/" + orgID + "/name-patterns"
	body := `{"patterns": [{"pattern_id": "hola", "expression": "hola, soy ([A-Z][a-z]+)", "capture_group": 1}]}`

	ss := &fakeSpeakerService{}
	e := newTestServer(&fakeTranscriptService{}, ss, nil)
	code, env := do(t, e, http.MethodPut, path, body)
	if code != http.StatusOK {
		t.Fatalf("status = %d (%+v)", code, env)
	}
	if len(ss.patterns) != 1 || ss.patterns[0].PatternID != "hola" || ss.patterns[0].CaptureGroup != 1 {
		t.Errorf("patterns not forwarded: %+v", ss.patterns)
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{"invalid pattern", fmt.Errorf("pattern 0: %w", ucerrors.ErrInvalidPattern), http.StatusBadRequest, errors.ErrorCode_PATTERN_INVALID},
		{"store failure", stdErrors.New("tx aborted"), http.StatusInternalServerError, errors.ErrorCode_IDENTITY_STORE_FAILED},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(&fakeTranscriptService{}, &fakeSpeakerService{err: tt.err}, nil)
			code, env := do(t, e, http.MethodPut, path, body)
			if code != tt.wantStatus || errors.ErrorCode(env.Code) != tt.wantCode {
				t.Fatalf("got %d/%s, want %d/%s", code, errors.ErrorCode(env.Code), tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestMergeVoiceProfiles(t *testing.T) {
	path := "/v1/organizations/" + orgID + "/voice-profiles/merge"
	keep, merge := uuid.New(), uuid.New()
	body := fmt.Sprintf(`{"keep_profile_id": %q, "merge_profile_id": %q}`, keep, merge)

	kept := &entities.VoiceProfile{ID: keep, OrganizationID: uuid.MustParse(orgID), DisplayName: "Ana", SampleCount: 3}
	e := newTestServer(&fakeTranscriptService{}, &fakeSpeakerService{kept: kept}, nil)
	code, env := do(t, e, http.MethodPost, path, body)
	if code != http.StatusOK {
		t.Fatalf("status = %d (%+v)", code, env)
	}
	var data struct {
		ID          string `json:"id"`
		SampleCount int    `json:"sample_count"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.ID != keep.String() || data.SampleCount != 3 {
		t.Errorf("unexpected data %s", env.Data)
	}

	same := fmt.Sprintf(`{"keep_profile_id": %q, "merge_profile_id": %q}`, keep, keep)
	if code, env = do(t, e, http.MethodPost, path, same); code != http.StatusBadRequest {
		t.Errorf("same ids: status = %d (%+v)", code, env)
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{"missing profile", fmt.Errorf("merge %s: %w", merge, entities.ErrProfileNotFound), http.StatusNotFound, errors.ErrorCode_PROFILE_NOT_FOUND},
		{"other organization", ucerrors.ErrOrganizationMismatch, http.StatusConflict, errors.ErrorCode_PROFILE_MERGE_CONFLICT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(&fakeTranscriptService{}, &fakeSpeakerService{err: tt.err}, nil)
			code, env := do(t, e, http.MethodPost, path, body)
			if code != tt.wantStatus || errors.ErrorCode(env.Code) != tt.wantCode {
				t.Fatalf("got %d/%s, want %d/%s", code, errors.ErrorCode(env.Code), tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestHealthReadyAndMetrics(t *testing.T) {
	e := newTestServer(&fakeTranscriptService{}, &fakeSpeakerService{}, func(context.Context) error {
		return stdErrors.New("connection refused")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health = %d", rec.Code)
	}

	code, env := do(t, e, http.MethodGet, "/ready", "")
	if code != http.StatusServiceUnavailable || errors.ErrorCode(env.Code) != errors.ErrorCode_DB_CONNECTION_FAILED {
		t.Errorf("/ready = %d/%s", code, errors.ErrorCode(env.Code))
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics = %d", rec.Code)
	}
}
