package timeutil

import (
	"fmt"
	"math"
	"sort"
)

// SecondsToMs converts vendor seconds (float) to integer milliseconds
func SecondsToMs(sec float64) int64 {
	return int64(math.Round(sec * 1000))
}

// MsToSeconds converts milliseconds back to seconds
func MsToSeconds(ms int64) float64 {
	return float64(ms) / 1000.0
}

// FormatTimestamp renders ms as MM:SS, or HH:MM:SS once past the hour
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSec := ms / 1000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatSRT renders ms as HH:MM:SS,mmm (SubRip format)
func FormatSRT(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}

// Range is a half-open time span in milliseconds
type Range struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// Duration returns the span length, never negative
func (r Range) Duration() int64 {
	if r.EndMs < r.StartMs {
		return 0
	}
	return r.EndMs - r.StartMs
}

// Overlaps reports whether two ranges share any time
func (r Range) Overlaps(o Range) bool {
	return r.StartMs < o.EndMs && o.StartMs < r.EndMs
}

// Gap returns the distance from r's end to next's start (negative when overlapping)
func (r Range) Gap(next Range) int64 {
	return next.StartMs - r.EndMs
}

// MergeRanges sorts ranges by start and merges those that overlap or sit
// within maxGapMs of each other. The input slice is not modified.
func MergeRanges(ranges []Range, maxGapMs int64) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMs < sorted[j].StartMs
	})

	out := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if last.Gap(r) <= maxGapMs {
			if r.EndMs > last.EndMs {
				last.EndMs = r.EndMs
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// FindGaps returns the uncovered spans of [0, totalMs] that are at least minGapMs long
func FindGaps(ranges []Range, totalMs, minGapMs int64) []Range {
	merged := MergeRanges(ranges, 0)
	var gaps []Range
	cursor := int64(0)
	for _, r := range merged {
		if r.StartMs-cursor >= minGapMs && r.StartMs > cursor {
			gaps = append(gaps, Range{StartMs: cursor, EndMs: r.StartMs})
		}
		if r.EndMs > cursor {
			cursor = r.EndMs
		}
	}
	if totalMs-cursor >= minGapMs && totalMs > cursor {
		gaps = append(gaps, Range{StartMs: cursor, EndMs: totalMs})
	}
	return gaps
}

// ChunkBounds splits [0, totalMs) into consecutive windows of windowMs
func ChunkBounds(totalMs, windowMs int64) []Range {
	if totalMs <= 0 || windowMs <= 0 {
		return nil
	}
	var out []Range
	for start := int64(0); start < totalMs; start += windowMs {
		end := start + windowMs
		if end > totalMs {
			end = totalMs
		}
		out = append(out, Range{StartMs: start, EndMs: end})
	}
	return out
}
