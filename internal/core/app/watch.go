package app

import (
	"context"
	"log/slog"
	"verylcheck/internal/core/config"
	"verylcheck/internal/core/watcher"
	"verylcheck/internal/shared/observability"
)

// Watch re-checks the whole project whenever a source or the metadata file
// changes, and hands every outcome to onResult. Re-checks are throttled by
// watch.max_rechecks_per_second. Watch blocks until ctx is done.
//
// Exclude patterns of the source watcher are fixed at start; a metadata
// reload changes discovery, lint settings and the debounce interval but not
// which directories are watched.
func (a *App) Watch(ctx context.Context, onResult func(*Result, error)) error {
	m := a.Metadata()
	trigger := make(chan struct{}, 1)
	notify := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	w, err := watcher.NewWatcher(
		m.Watch.Debounce,
		m.Analysis.ExcludeDirs,
		expandPatterns(m.Analysis.ExcludeFiles),
		func(paths []string) {
			slog.Debug("sources changed", "count", len(paths))
			notify()
		},
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{a.Root()}); err != nil {
		return err
	}

	if m.MetadataPath != "" {
		mw := config.NewWatcher(m.MetadataPath, func(next *config.Metadata) {
			if err := a.Reload(next); err != nil {
				slog.Warn("metadata reload rejected", "error", err)
				return
			}
			w.SetDebounce(next.Watch.Debounce)
			notify()
		})
		if err := mw.Start(ctx); err != nil {
			return err
		}
		defer mw.Stop()
	}

	slog.Info("watching for changes", "root", a.Root())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			if !a.throttle(ctx) {
				return nil
			}
			res, err := a.recheck(ctx)
			if ctx.Err() != nil {
				return nil
			}
			if onResult != nil {
				onResult(res, err)
			}
		}
	}
}

// throttle waits for a re-check token. It returns false when ctx ends first.
func (a *App) throttle(ctx context.Context) bool {
	a.mu.RLock()
	limiter := a.limiter
	a.mu.RUnlock()

	if limiter.Allow(1) {
		return true
	}
	observability.RechecksThrottledTotal.Inc()
	slog.Debug("re-check throttled", "delay", limiter.Delay())
	return limiter.Wait(ctx, 1) == nil
}

func (a *App) recheck(ctx context.Context) (*Result, error) {
	res, err := a.CheckAll(ctx)
	if err != nil {
		return nil, err
	}
	if a.Metadata().Analysis.PersistFacts {
		if err := a.Persist(ctx, res); err != nil {
			return res, err
		}
	}
	return res, nil
}
