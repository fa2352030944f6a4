package entities

import "strings"

// Word is a single vendor-recognized word with timing and speaker info
type Word struct {
	Text           string  `json:"text"`
	StartMs        int64   `json:"start_ms"`
	EndMs          int64   `json:"end_ms"`
	Confidence     float64 `json:"confidence"`
	SpeakerIndex   *int    `json:"speaker_index,omitempty"`
	PunctuatedText string  `json:"punctuated_text,omitempty"`
}

// Display returns the punctuated form when the vendor provided one
func (w Word) Display() string {
	if w.PunctuatedText != "" {
		return w.PunctuatedText
	}
	return w.Text
}

// TranscriptSegment is a contiguous run of speech attributed to one speaker
type TranscriptSegment struct {
	SpeakerLabel string  `json:"speaker_label"`
	Text         string  `json:"text"`
	StartMs      int64   `json:"start_ms"`
	EndMs        int64   `json:"end_ms"`
	Confidence   float64 `json:"confidence"`
	Words        []Word  `json:"words,omitempty"`
}

// DurationMs returns the segment length in milliseconds
func (s TranscriptSegment) DurationMs() int64 {
	if s.EndMs < s.StartMs {
		return 0
	}
	return s.EndMs - s.StartMs
}

// AverageWordConfidence returns the arithmetic mean of word confidences,
// falling back to fallback when the word list is empty.
func AverageWordConfidence(words []Word, fallback float64) float64 {
	if len(words) == 0 {
		return fallback
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}

// JoinWords renders words into segment text using their display form
func JoinWords(words []Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Display()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// CharRange is a [Start, End) character span inside segment text
type CharRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ProcessedSegment is a segment after linguistic post-processing
type ProcessedSegment struct {
	TranscriptSegment
	CleanedText         string      `json:"cleaned_text"`
	DisplaySpeaker      string      `json:"display_speaker"`
	LowConfidenceRanges []CharRange `json:"low_confidence_ranges,omitempty"`
}

// SpeakerLabels returns the distinct speaker labels in order of first appearance
func SpeakerLabels(segments []TranscriptSegment) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, s := range segments {
		if !seen[s.SpeakerLabel] {
			seen[s.SpeakerLabel] = true
			labels = append(labels, s.SpeakerLabel)
		}
	}
	return labels
}

// SpeakingTimeByLabel sums segment durations per speaker label
func SpeakingTimeByLabel(segments []TranscriptSegment) map[string]int64 {
	out := make(map[string]int64)
	for _, s := range segments {
		out[s.SpeakerLabel] += s.DurationMs()
	}
	return out
}

// AverageSegmentConfidence is the mean over every word of every segment.
// Segments without words contribute their own confidence once.
func AverageSegmentConfidence(segments []TranscriptSegment) float64 {
	var (
		sum   float64
		count int
	)
	for _, s := range segments {
		if len(s.Words) == 0 {
			sum += s.Confidence
			count++
			continue
		}
		for _, w := range s.Words {
			sum += w.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
