package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	"github.com/johnquangdev/transcript-intel/internal/usecase/diarization"
	"github.com/johnquangdev/transcript-intel/internal/usecase/namedetect"
	"github.com/johnquangdev/transcript-intel/internal/usecase/postprocess"
)

// renderer turns a vendor response into a readable document without touching
// the identity store: speaker names come from aliases and introductions only.
type renderer struct {
	normalizer *diarization.Normalizer
	detector   *namedetect.Detector
	postOpts   postprocess.Options
	aliases    map[string]string
	format     string
	now        func() time.Time
	logger     *zap.Logger
}

// render reads one vendor JSON file and returns the rendered document
func (r *renderer) render(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	var resp entities.VendorResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	norm, err := r.normalizer.Normalize(&resp)
	if err != nil {
		return "", fmt.Errorf("normalize %s: %w", path, err)
	}

	speakerMap := make(map[string]string)
	for _, d := range r.detector.DetectWithIntroductionFocus(norm.Segments) {
		speakerMap[d.SpeakerLabel] = d.Name
	}
	// Manual aliases win over detections
	for label, name := range r.aliases {
		speakerMap[label] = name
	}

	opts := r.postOpts
	opts.SpeakerAliases = speakerMap
	segments := postprocess.NewProcessor(opts).ProcessTranscript(norm.Segments)

	r.logger.Info("transcript rendered",
		zap.String("file", path),
		zap.String("strategy", string(norm.Strategy)),
		zap.Int("segments", len(segments)),
		zap.Int("named_speakers", len(speakerMap)),
		zap.Bool("quality_warning", norm.QualityWarning),
	)

	if r.format == "text" {
		return postprocess.FullText(segments) + "\n", nil
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return postprocess.RenderMarkdown(title, r.now(), segments), nil
}

// outputPath maps an input file to its document path inside dir
func (r *renderer) outputPath(dir, in string) string {
	ext := ".md"
	if r.format == "text" {
		ext = ".txt"
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(dir, base+ext)
}

// atomicWrite writes data to path atomically using a temp file + rename
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".transcriptctl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}

// parseAliases reads "label=Name" pairs separated by commas
func parseAliases(s string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		label, name, ok := strings.Cut(pair, "=")
		label, name = strings.TrimSpace(label), strings.TrimSpace(name)
		if !ok || label == "" || name == "" {
			return nil, fmt.Errorf("invalid alias %q, want label=Name", pair)
		}
		out[label] = name
	}
	return out, nil
}
