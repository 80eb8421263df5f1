package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// watchDebounce coalesces the burst of events one editor save produces.
const watchDebounce = 150 * time.Millisecond

// watchJobs re-exports file jobs whenever their file is written, until ctx
// is canceled. Parent directories are watched so editors that save by
// renaming a temp file are still seen.
func watchJobs(ctx context.Context, pool Pool, jobs []exportJob, params *exportParams, common commonFlags, env *Environment, log *logrus.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	byPath := make(map[string]int)
	dirs := make(map[string]bool)
	for i, job := range jobs {
		if job.Path == "" {
			continue
		}
		p := cleanPath(job.Path)
		byPath[p] = i
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	out := resultWriter(params, env)
	if !common.quiet {
		fmt.Fprintf(out, "Watching %d file(s) for changes, press Ctrl+C to stop\n", len(byPath))
	}

	rerun := func(indexes []int) {
		batch := make([]exportJob, len(indexes))
		for i, idx := range indexes {
			batch[i] = jobs[idx]
		}
		log.WithField("files", len(batch)).Debug("change detected")
		printResults(exportBatch(ctx, pool, batch, params), common, out, env.Stderr)
	}

	return watchLoop(ctx, watcher.Events, watcher.Errors, byPath, watchDebounce, rerun, log)
}

// watchLoop collects write and create events for the watched paths and calls
// rerun with their job indexes once a path has been quiet for debounce.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, byPath map[string]int, debounce time.Duration, rerun func([]int), log *logrus.Logger) error {
	pending := make(map[int]time.Time)
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if idx, ok := byPath[cleanPath(ev.Name)]; ok {
				pending[idx] = time.Now()
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")

		case now := <-ticker.C:
			var ready []int
			for idx, at := range pending {
				if now.Sub(at) >= debounce {
					ready = append(ready, idx)
					delete(pending, idx)
				}
			}
			if len(ready) > 0 {
				sort.Ints(ready)
				rerun(ready)
			}
		}
	}
}

// watchPaths returns the files of jobs that can be watched.
func watchPaths(jobs []exportJob) []string {
	var paths []string
	for _, job := range jobs {
		if job.Path != "" {
			paths = append(paths, job.Path)
		}
	}
	return paths
}

// cleanPath returns an absolute, cleaned form of p for event matching.
func cleanPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
