package transcript

import "time"

// SegmentResponse is one processed segment
type SegmentResponse struct {
	SpeakerLabel        string      `json:"speaker_label"`
	Speaker             string      `json:"speaker"`
	Text                string      `json:"text"`
	CleanedText         string      `json:"cleaned_text"`
	StartMs             int64       `json:"start_ms"`
	EndMs               int64       `json:"end_ms"`
	Timestamp           string      `json:"timestamp"`
	Confidence          float64     `json:"confidence"`
	LowConfidenceRanges []CharRange `json:"low_confidence_ranges,omitempty"`
}

// CharRange is a character span of low-confidence text
type CharRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DetectionResponse is one self-introduction found in the transcript
type DetectionResponse struct {
	Name          string  `json:"name"`
	SpeakerLabel  string  `json:"speaker_label"`
	MatchedPhrase string  `json:"matched_phrase"`
	TimestampMs   int64   `json:"timestamp_ms"`
	Confidence    float64 `json:"confidence"`
	PatternID     string  `json:"pattern_id"`
}

// RecognitionResponse summarizes speaker recognition
type RecognitionResponse struct {
	SpeakerMap         map[string]string   `json:"speaker_map"`
	Detections         []DetectionResponse `json:"detections"`
	NewProfileIDs      []string            `json:"new_profile_ids"`
	MatchedProfileIDs  []string            `json:"matched_profile_ids"`
	UnresolvedSpeakers []string            `json:"unresolved_speakers"`
	QualityWarning     bool                `json:"quality_warning"`
}

// TranscriptResponse is a stored transcript
type TranscriptResponse struct {
	ID             string            `json:"id"`
	MeetingID      string            `json:"meeting_id"`
	OrganizationID string            `json:"organization_id"`
	SpeakerMap     map[string]string `json:"speaker_map"`
	Segments       []SegmentResponse `json:"segments"`
	FullText       string            `json:"full_text"`
	Confidence     float64           `json:"confidence"`
	QualityWarning bool              `json:"quality_warning"`
	SpeakerCount   int               `json:"speaker_count"`
	DurationMs     int64             `json:"duration_ms"`
	Source         string            `json:"source,omitempty"`
	ArchiveKey     string            `json:"archive_key,omitempty"`
	ArchiveURL     string            `json:"archive_url,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ProcessTranscriptResponse is returned by every pipeline endpoint
type ProcessTranscriptResponse struct {
	Transcript  *TranscriptResponse  `json:"transcript,omitempty"`
	Recognition *RecognitionResponse `json:"recognition"`
	Strategy    string               `json:"strategy,omitempty"`
}
