package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay lets the writer finish before the file is read
const settleDelay = 100 * time.Millisecond

// watch renders every .json file dropped into dir until ctx is done.
// Files already present are processed first.
func (r *renderer) watch(ctx context.Context, dir, outDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			r.logger.Warn("failed to close watcher", zap.Error(err))
		}
	}()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && isVendorFile(e.Name()) {
			r.processFile(filepath.Join(dir, e.Name()), outDir)
		}
	}

	r.logger.Info("watching for vendor responses", zap.String("dir", dir), zap.String("out", outDir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isVendorFile(event.Name) {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				time.Sleep(settleDelay)
				r.processFile(event.Name, outDir)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

// processFile renders one file; failures are logged so the watch continues
func (r *renderer) processFile(in, outDir string) {
	doc, err := r.render(in)
	if err != nil {
		r.logger.Error("failed to render transcript", zap.String("file", in), zap.Error(err))
		return
	}
	out := r.outputPath(outDir, in)
	if err := atomicWrite(out, []byte(doc)); err != nil {
		r.logger.Error("failed to write transcript", zap.String("file", out), zap.Error(err))
		return
	}
	r.logger.Info("transcript written", zap.String("file", out))
}

func isVendorFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".json") && !strings.HasPrefix(base, ".")
}
