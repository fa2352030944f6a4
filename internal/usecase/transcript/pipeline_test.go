package transcript

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	"github.com/johnquangdev/transcript-intel/internal/infrastructure/metrics"
	"github.com/johnquangdev/transcript-intel/internal/usecase/diarization"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
	"github.com/johnquangdev/transcript-intel/internal/usecase/postprocess"
	"github.com/johnquangdev/transcript-intel/internal/usecase/speaker"
)

type fakeTranscripts struct {
	byMeeting map[uuid.UUID]*entities.Transcript
	saveErr   error
	saves     int
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{byMeeting: make(map[uuid.UUID]*entities.Transcript)}
}

func (f *fakeTranscripts) Save(_ context.Context, t *entities.Transcript) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.byMeeting[t.MeetingID] = t
	return nil
}

func (f *fakeTranscripts) GetByMeetingID(_ context.Context, meetingID uuid.UUID) (*entities.Transcript, error) {
	t, ok := f.byMeeting[meetingID]
	if !ok {
		return nil, entities.ErrTranscriptNotFound
	}
	return t, nil
}

// fakeSpeakers names every speaker whose text contains "I'm <Name>"
type fakeSpeakers struct {
	recognized []speaker.RecognizeRequest
	err        error
}

func (f *fakeSpeakers) Recognize(_ context.Context, req speaker.RecognizeRequest) (*entities.RecognitionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recognized = append(f.recognized, req)
	r := entities.NewRecognitionResult()
	for label, name := range req.SpeakerAliases {
		r.SpeakerMap[label] = name
	}
	for _, s := range req.Segments {
		if _, done := r.SpeakerMap[s.SpeakerLabel]; done {
			continue
		}
		if i := strings.Index(s.Text, "I'm "); i >= 0 {
			name := strings.Trim(strings.Fields(s.Text[i+4:])[0], ".,")
			r.SpeakerMap[s.SpeakerLabel] = name
			r.Detections = append(r.Detections, entities.DetectedName{Name: name, SpeakerLabel: s.SpeakerLabel, PatternID: "i_am"})
			r.NewProfileIDs = append(r.NewProfileIDs, uuid.New())
		}
	}
	for _, label := range entities.SpeakerLabels(req.Segments) {
		if _, ok := r.SpeakerMap[label]; !ok {
			r.UnresolvedSpeakers = append(r.UnresolvedSpeakers, label)
		}
	}
	return r, nil
}

func (f *fakeSpeakers) ReprocessMeeting(ctx context.Context, req speaker.ReprocessRequest) (*speaker.ReprocessResult, error) {
	segments := speaker.ParseFlatTranscript(req.Transcript)
	if len(segments) == 0 {
		return nil, ucerrors.ErrNoSegments
	}
	r, err := f.Recognize(ctx, speaker.RecognizeRequest{
		OrganizationID: req.OrganizationID,
		MeetingID:      req.MeetingID,
		Segments:       segments,
		SpeakerAliases: req.SpeakerAliases,
	})
	if err != nil {
		return nil, err
	}
	return &speaker.ReprocessResult{Segments: segments, Recognition: r}, nil
}

func (f *fakeSpeakers) ReplaceOrgNamePatterns(context.Context, uuid.UUID, []speaker.PatternInput) error {
	return nil
}

func (f *fakeSpeakers) MergeProfiles(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*entities.VoiceProfile, error) {
	return nil, nil
}

type fakeArchiver struct {
	objects map[string]string
	err     error
}

func (f *fakeArchiver) ArchiveTranscript(_ context.Context, key, markdown string) error {
	if f.err != nil {
		return f.err
	}
	f.objects[key] = markdown
	return nil
}

func (f *fakeArchiver) ArchiveURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://archive.local/" + key + "?sig=x", nil
}

type fakePublisher struct {
	events []entities.SpeakersRecognizedEvent
	err    error
}

func (f *fakePublisher) PublishSpeakersRecognized(_ context.Context, e entities.SpeakersRecognizedEvent) error {
	f.events = append(f.events, e)
	return f.err
}

type fakeFetcher struct {
	resp *entities.VendorResponse
	err  error
}

func (f *fakeFetcher) FetchVendorResponse(context.Context, string) (*entities.VendorResponse, error) {
	return f.resp, f.err
}

type fixture struct {
	svc         Service
	transcripts *fakeTranscripts
	speakers    *fakeSpeakers
	archiver    *fakeArchiver
	publisher   *fakePublisher
	fetcher     *fakeFetcher
}

func newFixture() *fixture {
	f := &fixture{
		transcripts: newFakeTranscripts(),
		speakers:    &fakeSpeakers{},
		archiver:    &fakeArchiver{objects: make(map[string]string)},
		publisher:   &fakePublisher{},
		fetcher:     &fakeFetcher{},
	}
	f.svc = NewService(Dependencies{
		Transcripts: f.transcripts,
		Speakers:    f.speakers,
		Archiver:    f.archiver,
		Publisher:   f.publisher,
		Fetcher:     f.fetcher,
		Metrics:     metrics.New(prometheus.NewRegistry()),
	}, diarization.DefaultOptions(), postprocess.DefaultOptions(), zap.NewNop())
	return f
}

func utteranceResponse() *entities.VendorResponse {
	return &entities.VendorResponse{
		Metadata: entities.VendorMetadata{RequestID: "req-1", Duration: 12},
		Results: entities.VendorResults{
			Channels: []entities.VendorChannel{{Alternatives: []entities.VendorAlternative{{Transcript: "unused"}}}},
			Utterances: []entities.VendorUtterance{
				{Speaker: 0, Start: 0, End: 3, Confidence: 0.95, Transcript: "Um, hi everyone, I'm Sarah."},
				{Speaker: 1, Start: 4, End: 7, Confidence: 0.9, Transcript: "Thanks Sarah, uh, let's start."},
				{Speaker: 0, Start: 8, End: 12, Confidence: 0.92, Transcript: "First item is the roadmap."},
			},
		},
	}
}

func TestProcessVendorResponse(t *testing.T) {
	f := newFixture()
	org, meeting := uuid.New(), uuid.New()

	res, err := f.svc.ProcessVendorResponse(context.Background(), ProcessRequest{
		OrganizationID: org,
		MeetingID:      meeting,
		Title:          "Weekly sync",
		Response:       utteranceResponse(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr := res.Transcript
	if res.Strategy != diarization.StrategyUtterances {
		t.Errorf("strategy = %s", res.Strategy)
	}
	if len(tr.Segments) != 3 || tr.SpeakerCount != 2 {
		t.Fatalf("expected 3 segments from 2 speakers, got %d/%d", len(tr.Segments), tr.SpeakerCount)
	}
	if tr.Segments[0].DisplaySpeaker != "Sarah" || tr.Segments[1].DisplaySpeaker != "Speaker 2" {
		t.Errorf("display speakers = %q, %q", tr.Segments[0].DisplaySpeaker, tr.Segments[1].DisplaySpeaker)
	}
	if strings.Contains(strings.ToLower(tr.Segments[0].CleanedText), "um") {
		t.Errorf("fillers not removed: %q", tr.Segments[0].CleanedText)
	}
	if !strings.HasPrefix(tr.Text, "Speaker 1: Um, hi everyone") {
		t.Errorf("stored text should keep raw labels, got %q", tr.Text)
	}
	if tr.DurationMs != 12000 || tr.ModelUsed != SourceVendor {
		t.Errorf("unexpected duration/model %d %s", tr.DurationMs, tr.ModelUsed)
	}
	if tr.SpeakerMap.Data()["Speaker 1"] != "Sarah" {
		t.Errorf("speaker map = %v", tr.SpeakerMap.Data())
	}

	key := ArchiveKey(org, meeting)
	if tr.ArchiveKey != key {
		t.Errorf("archive key = %q, want %q", tr.ArchiveKey, key)
	}
	if md := f.archiver.objects[key]; !strings.Contains(md, "# Weekly sync") || !strings.Contains(md, "**[00:00] Sarah:**") {
		t.Errorf("unexpected markdown:\n%s", md)
	}

	if f.transcripts.saves != 1 {
		t.Errorf("expected 1 save, got %d", f.transcripts.saves)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].MeetingID != meeting {
		t.Fatalf("expected one event for the meeting, got %+v", f.publisher.events)
	}
	if got := f.publisher.events[0].UnresolvedSpeakers; len(got) != 1 || got[0] != "Speaker 2" {
		t.Errorf("unresolved = %v", got)
	}
}

func TestProcessVendorResponse_AliasesWin(t *testing.T) {
	f := newFixture()
	res, err := f.svc.ProcessVendorResponse(context.Background(), ProcessRequest{
		OrganizationID: uuid.New(),
		MeetingID:      uuid.New(),
		Response:       utteranceResponse(),
		SpeakerAliases: map[string]string{"Speaker 1": "Dr. Sarah Chen", "Speaker 2": "Host"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transcript.Segments[0].DisplaySpeaker != "Dr. Sarah Chen" || res.Transcript.Segments[1].DisplaySpeaker != "Host" {
		t.Errorf("aliases not applied: %+v", res.Transcript.Segments)
	}
}

func TestProcessVendorResponse_Errors(t *testing.T) {
	org, meeting := uuid.New(), uuid.New()
	emptyResp := &entities.VendorResponse{Results: entities.VendorResults{
		Channels: []entities.VendorChannel{{Alternatives: []entities.VendorAlternative{{Transcript: "   "}}}},
	}}

	tests := []struct {
		name    string
		req     ProcessRequest
		setup   func(*fixture)
		wantErr error
	}{
		{"missing ids", ProcessRequest{Response: utteranceResponse()}, nil, ucerrors.ErrInvalidInput},
		{"malformed", ProcessRequest{OrganizationID: org, MeetingID: meeting, Response: &entities.VendorResponse{}}, nil, ucerrors.ErrMalformedResponse},
		{"empty transcript", ProcessRequest{OrganizationID: org, MeetingID: meeting, Response: emptyResp}, nil, ucerrors.ErrNoSegments},
		{"save failure", ProcessRequest{OrganizationID: org, MeetingID: meeting, Response: utteranceResponse()},
			func(f *fixture) { f.transcripts.saveErr = errors.New("db down") }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.svc.ProcessVendorResponse(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(f.publisher.events) != 0 {
				t.Error("no event should be published on failure")
			}
		})
	}
}

func TestProcessVendorResponse_OptionalFailuresAreNotFatal(t *testing.T) {
	f := newFixture()
	f.archiver.err = errors.New("bucket missing")
	f.publisher.err = errors.New("broker down")

	res, err := f.svc.ProcessVendorResponse(context.Background(), ProcessRequest{
		OrganizationID: uuid.New(),
		MeetingID:      uuid.New(),
		Response:       utteranceResponse(),
	})
	if err != nil {
		t.Fatalf("archive and publish failures should not fail the run: %v", err)
	}
	if res.Transcript.ArchiveKey != "" {
		t.Error("archive key should stay empty when archiving fails")
	}
	if f.transcripts.saves != 1 {
		t.Error("transcript should still be saved")
	}
}

func TestProcessAssemblyAITranscript(t *testing.T) {
	f := newFixture()
	f.fetcher.resp = utteranceResponse()

	res, err := f.svc.ProcessAssemblyAITranscript(context.Background(), FetchRequest{
		OrganizationID: uuid.New(),
		MeetingID:      uuid.New(),
		TranscriptID:   "t-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transcript.ModelUsed != SourceAssemblyAI {
		t.Errorf("ModelUsed = %s", res.Transcript.ModelUsed)
	}

	f.fetcher.err = errors.New("not ready")
	if _, err := f.svc.ProcessAssemblyAITranscript(context.Background(), FetchRequest{
		OrganizationID: uuid.New(),
		MeetingID:      uuid.New(),
		TranscriptID:   "t-2",
	}); err == nil {
		t.Fatal("expected fetch error")
	}

	if _, err := f.svc.ProcessAssemblyAITranscript(context.Background(), FetchRequest{}); !errors.Is(err, ucerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestReprocess_UsesStoredTranscript(t *testing.T) {
	f := newFixture()
	org, meeting := uuid.New(), uuid.New()
	if _, err := f.svc.ProcessVendorResponse(context.Background(), ProcessRequest{
		OrganizationID: org,
		MeetingID:      meeting,
		Response:       utteranceResponse(),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.svc.Reprocess(context.Background(), speaker.ReprocessRequest{
		MeetingID:      meeting,
		SpeakerAliases: map[string]string{"Speaker 2": "Mike"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := f.speakers.recognized[len(f.speakers.recognized)-1]
	if last.OrganizationID != org {
		t.Error("organization should be taken from the stored transcript")
	}
	if res.Transcript == nil {
		t.Fatal("expected stored transcript to be updated")
	}
	if res.Transcript.Segments[1].DisplaySpeaker != "Mike" || res.Transcript.Segments[0].DisplaySpeaker != "Sarah" {
		t.Errorf("display speakers not refreshed: %q %q", res.Transcript.Segments[0].DisplaySpeaker, res.Transcript.Segments[1].DisplaySpeaker)
	}
	if res.Transcript.Segments[0].StartMs != 0 || res.Transcript.Segments[1].StartMs != 4000 {
		t.Error("stored timings should be preserved")
	}
	if len(f.publisher.events) != 2 {
		t.Errorf("expected a second event, got %d", len(f.publisher.events))
	}
}

func TestReprocess_InlineTextWithoutStoredTranscript(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Reprocess(context.Background(), speaker.ReprocessRequest{
		OrganizationID: uuid.New(),
		MeetingID:      uuid.New(),
		Transcript:     "Speaker 1: Hello, I'm Priya.\n\nSpeaker 2: Welcome.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transcript != nil {
		t.Error("nothing stored, nothing to update")
	}
	if res.Recognition.SpeakerMap["Speaker 1"] != "Priya" {
		t.Errorf("speaker map = %v", res.Recognition.SpeakerMap)
	}
}

func TestReprocess_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Reprocess(context.Background(), speaker.ReprocessRequest{MeetingID: uuid.New()})
	if !errors.Is(err, entities.ErrTranscriptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetTranscript(t *testing.T) {
	f := newFixture()
	org, meeting := uuid.New(), uuid.New()
	if _, err := f.svc.ProcessVendorResponse(context.Background(), ProcessRequest{
		OrganizationID: org,
		MeetingID:      meeting,
		Response:       utteranceResponse(),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tr, url, err := f.svc.GetTranscript(context.Background(), meeting)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.MeetingID != meeting || !strings.Contains(url, ArchiveKey(org, meeting)) {
		t.Errorf("unexpected transcript/url: %s %s", tr.MeetingID, url)
	}

	if _, _, err := f.svc.GetTranscript(context.Background(), uuid.New()); !errors.Is(err, entities.ErrTranscriptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
