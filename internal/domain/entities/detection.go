package entities

import "github.com/google/uuid"

// DetectedName is a self-introduced name found in one speaker's segment
type DetectedName struct {
	Name          string  `json:"name"`
	SpeakerLabel  string  `json:"speaker_label"`
	MatchedPhrase string  `json:"matched_phrase"`
	TimestampMs   int64   `json:"timestamp_ms"`
	Confidence    float64 `json:"confidence"`
	PatternID     string  `json:"pattern_id"`
}

// RecognitionResult is the per-meeting output of speaker recognition
type RecognitionResult struct {
	SpeakerMap         map[string]string `json:"speaker_map"`
	Detections         []DetectedName    `json:"detections"`
	NewProfileIDs      []uuid.UUID       `json:"new_profile_ids"`
	MatchedProfileIDs  []uuid.UUID       `json:"matched_profile_ids"`
	UnresolvedSpeakers []string          `json:"unresolved_speakers"`
	QualityWarning     bool              `json:"quality_warning"`
}

// NewRecognitionResult returns an empty result with initialized collections
func NewRecognitionResult() *RecognitionResult {
	return &RecognitionResult{
		SpeakerMap:         make(map[string]string),
		Detections:         []DetectedName{},
		NewProfileIDs:      []uuid.UUID{},
		MatchedProfileIDs:  []uuid.UUID{},
		UnresolvedSpeakers: []string{},
	}
}
