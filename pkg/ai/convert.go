package ai

import (
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
)

// speakerIndexer maps AssemblyAI speaker letters ("A", "B", ...) to
// zero-based indices. Other labels get indices in order of appearance
// after the highest letter seen so far.
type speakerIndexer struct {
	indices map[string]int
	next    int
}

func newSpeakerIndexer() *speakerIndexer {
	return &speakerIndexer{indices: make(map[string]int)}
}

func (s *speakerIndexer) index(label *string) *int {
	if label == nil || *label == "" {
		return nil
	}
	key := strings.ToUpper(strings.TrimSpace(*label))
	if idx, ok := s.indices[key]; ok {
		return &idx
	}

	idx := s.next
	if len(key) == 1 && key[0] >= 'A' && key[0] <= 'Z' {
		idx = int(key[0] - 'A')
	}
	s.indices[key] = idx
	if idx >= s.next {
		s.next = idx + 1
	}
	return &idx
}

func msToSeconds(ms *int64) float64 {
	if ms == nil {
		return 0
	}
	return float64(*ms) / 1000.0
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func convertWords(words []aai.TranscriptWord, speakers *speakerIndexer) []entities.VendorWord {
	out := make([]entities.VendorWord, 0, len(words))
	for _, w := range words {
		text := deref(w.Text)
		out = append(out, entities.VendorWord{
			Word:           strings.ToLower(strings.Trim(text, ".,!?;:")),
			Start:          msToSeconds(w.Start),
			End:            msToSeconds(w.End),
			Confidence:     deref(w.Confidence),
			Speaker:        speakers.index(w.Speaker),
			PunctuatedWord: text,
		})
	}
	return out
}

// ToVendorResponse converts an AssemblyAI transcript into the diarized
// vendor response shape the normalizer consumes (times in seconds).
func ToVendorResponse(t aai.Transcript) *entities.VendorResponse {
	speakers := newSpeakerIndexer()

	alt := entities.VendorAlternative{
		Transcript: deref(t.Text),
		Confidence: deref(t.Confidence),
		Words:      convertWords(t.Words, speakers),
	}

	utterances := make([]entities.VendorUtterance, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		speaker := 0
		if idx := speakers.index(u.Speaker); idx != nil {
			speaker = *idx
		}
		utterances = append(utterances, entities.VendorUtterance{
			Start:      msToSeconds(u.Start),
			End:        msToSeconds(u.End),
			Confidence: deref(u.Confidence),
			Transcript: deref(u.Text),
			Speaker:    speaker,
			Words:      convertWords(u.Words, speakers),
		})
	}

	duration := 0.0
	if t.AudioDuration != nil {
		duration = float64(*t.AudioDuration)
	} else if n := len(alt.Words); n > 0 {
		duration = alt.Words[n-1].End
	}

	return &entities.VendorResponse{
		Metadata: entities.VendorMetadata{
			RequestID: deref(t.ID),
			Duration:  duration,
			Channels:  1,
		},
		Results: entities.VendorResults{
			Channels:   []entities.VendorChannel{{Alternatives: []entities.VendorAlternative{alt}}},
			Utterances: utterances,
		},
	}
}
