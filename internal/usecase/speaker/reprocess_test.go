package speaker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
)

func TestParseFlatTranscript(t *testing.T) {
	text := "Speaker 1: hello there\n\nsome stray note\n\n  Speaker  2 :  hi\n   again  \n\n"
	segs := ParseFlatTranscript(text)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segs)
	}
	first, second := segs[0], segs[1]
	if first.SpeakerLabel != "Speaker 1" || first.Text != "hello there" || first.StartMs != 0 || first.EndMs != 600 {
		t.Errorf("unexpected first segment %+v", first)
	}
	if second.SpeakerLabel != "Speaker 2" || second.Text != "hi again" {
		t.Errorf("unexpected second segment %+v", second)
	}
	if second.StartMs != 1600 || second.EndMs != 2200 {
		t.Errorf("second segment timing = %d-%d, want 1600-2200", second.StartMs, second.EndMs)
	}
	if len(second.Words) != 2 || second.Words[1].StartMs != 1900 || second.Words[1].Confidence != 1.0 {
		t.Errorf("unexpected synthetic words %+v", second.Words)
	}
}

func TestFlatTranscriptRoundTrip(t *testing.T) {
	segs := []entities.TranscriptSegment{
		{SpeakerLabel: "Speaker 1", Text: "Hi, I'm Sarah."},
		{SpeakerLabel: "Speaker 2", Text: "Welcome."},
	}
	parsed := ParseFlatTranscript(FormatFlatTranscript(segs))
	if len(parsed) != 2 || parsed[0].Text != segs[0].Text || parsed[1].SpeakerLabel != "Speaker 2" {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
}

func TestReprocessMeeting(t *testing.T) {
	f := newFixture()
	res, err := f.svc.ReprocessMeeting(context.Background(), ReprocessRequest{
		OrganizationID: uuid.New(),
		MeetingID:      uuid.New(),
		Transcript:     "Speaker 1: Hello, I'm Priya\n\nSpeaker 2: great to meet you",
	})
	if err != nil {
		t.Fatalf("ReprocessMeeting: %v", err)
	}
	if len(res.Segments) != 2 {
		t.Errorf("segments = %d", len(res.Segments))
	}
	if res.Recognition.SpeakerMap["Speaker 1"] != "Priya" {
		t.Errorf("SpeakerMap = %v", res.Recognition.SpeakerMap)
	}

	_, err = f.svc.ReprocessMeeting(context.Background(), ReprocessRequest{
		OrganizationID: uuid.New(),
		MeetingID:      uuid.New(),
		Transcript:     "no speaker blocks here",
	})
	if !errors.Is(err, ucerrors.ErrNoSegments) {
		t.Errorf("expected ErrNoSegments, got %v", err)
	}
}
