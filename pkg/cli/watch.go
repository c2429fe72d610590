package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/modverify/pkg/analyzer"
)

var artifactKinds = []analyzer.ArtifactKind{
	analyzer.ArtifactComponents,
	analyzer.ArtifactMarkup,
	analyzer.ArtifactInputs,
	analyzer.ArtifactLess,
}

// watch runs verification now and again after every burst of artifact
// writes, until ctx is canceled.
func (v *verifier) watch(ctx context.Context, debounce time.Duration) error {
	return watchArtifacts(ctx, v.cfg.Project.ArtifactRoot, debounce, v.logger, func(ctx context.Context) {
		rep, err := v.run(ctx)
		if err != nil {
			v.logger.WithError(err).Error("verification run failed")
			return
		}
		if rep.FailsOn(v.threshold) {
			v.logger.WithFields(logrus.Fields{
				"errors":   rep.Summary.Errors,
				"warnings": rep.Summary.Warnings,
			}).Warn("verification failed")
		}
	})
}

// watchArtifacts calls run once, then once per quiet period of debounce
// following writes to artifact files anywhere under root.
func watchArtifacts(ctx context.Context, root string, debounce time.Duration, log logrus.FieldLogger, run func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := setupWatcher(watcher, root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	run(ctx)
	log.WithField("root", root).Info("watching for artifact changes")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := setupWatcher(watcher, event.Name); err != nil {
						log.WithError(err).Warn("failed to watch new directory")
					}
				}
			}

			if !isArtifactEvent(event) {
				continue
			}
			log.WithField("file", event.Name).Debug("artifact changed")
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			run(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}

func isArtifactEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	for _, kind := range artifactKinds {
		if name == analyzer.ArtifactFile(kind) {
			return true
		}
	}
	return false
}

// setupWatcher recursively adds all directories to the watcher
func setupWatcher(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
