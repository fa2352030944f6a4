// Command transcriptctl renders diarized vendor responses offline, either one
// file at a time or by watching a drop directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/usecase/diarization"
	"github.com/johnquangdev/transcript-intel/internal/usecase/namedetect"
	"github.com/johnquangdev/transcript-intel/internal/usecase/postprocess"
	"github.com/johnquangdev/transcript-intel/pkg/config"
)

func main() {
	var (
		inPath   string
		watchDir string
		outPath  string
		format   string
		aliases  string
		verbose  bool
	)
	flag.StringVar(&inPath, "in", "", "Vendor response JSON file")
	flag.StringVar(&watchDir, "watch", "", "Directory to watch for vendor response JSON files")
	flag.StringVar(&outPath, "out", "", "Output file (-in) or directory (-watch); stdout when empty with -in")
	flag.StringVar(&format, "format", "markdown", "Output format: markdown|text")
	flag.StringVar(&aliases, "alias", "", "Speaker aliases, e.g. \"Speaker 1=Ana,Speaker 2=Ben\"")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if (inPath == "") == (watchDir == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -in or -watch is required")
		flag.Usage()
		os.Exit(2)
	}
	if format != "markdown" && format != "text" {
		log.Fatalf("unknown -format %q", format)
	}

	aliasMap, err := parseAliases(aliases)
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}
	defer logger.Sync()

	r, err := newRenderer(format, aliasMap, logger)
	if err != nil {
		log.Fatal(err)
	}

	if inPath != "" {
		doc, err := r.render(inPath)
		if err != nil {
			log.Fatal(err)
		}
		if outPath == "" {
			fmt.Print(doc)
			return
		}
		if err := atomicWrite(outPath, []byte(doc)); err != nil {
			log.Fatal(err)
		}
		return
	}

	if outPath == "" {
		outPath = watchDir
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := r.watch(ctx, watchDir, outPath); err != nil {
		log.Fatal(err)
	}
}

// newRenderer builds the offline pipeline from the PIPELINE_* environment
func newRenderer(format string, aliases map[string]string, logger *zap.Logger) (*renderer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	p := cfg.Pipeline

	detector, err := namedetect.NewDetector(nil, namedetect.Options{
		IntroductionWindow: p.IntroductionWindow(),
		LatePenalty:        p.LateDetectionPenalty,
	})
	if err != nil {
		return nil, err
	}

	return &renderer{
		normalizer: diarization.NewNormalizer(diarization.Options{
			MaxMergeGapMs:           p.MaxMergeGapMs,
			ChunkMs:                 p.ChunkMs(),
			QualityWarningThreshold: p.QualityWarningThreshold,
		}, logger),
		detector: detector,
		postOpts: postprocess.Options{
			RemoveFillers:           p.RemoveFillers,
			CleanSentenceBoundaries: p.CleanSentenceBoundaries,
			HighlightLowConfidence:  p.HighlightLowConfidence,
			ConfidenceThreshold:     p.ConfidenceThreshold,
		},
		aliases: aliases,
		format:  format,
		now:     time.Now,
		logger:  logger,
	}, nil
}
