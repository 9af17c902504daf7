// Package watcher mirrors a live stage into a plain text snapshot on disk.
// It subscribes to change notifications for the live URL and, after a quiet
// period, re-reads the stage and rewrites the snapshot so downstream tools
// always see a complete, deterministic file.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/stage"
)

// DefaultDebounce is how long the watcher waits after the last change
// before mirroring. Live edits arrive in bursts; one snapshot per burst.
const DefaultDebounce = 100 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Client   asset.Client
	Logger   *slog.Logger
	Debounce time.Duration
}

// Watcher watches one live stage and maintains its snapshot file.
type Watcher struct {
	client   asset.Client
	logger   *slog.Logger
	debounce time.Duration
}

// New creates a watcher. The client is required.
func New(cfg Config) (*Watcher, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("watcher: client is required")
	}
	w := &Watcher{
		client:   cfg.Client,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	return w, nil
}

// Run watches liveURL until the context is cancelled, writing a snapshot to
// outPath after every settled burst of changes. An initial snapshot is taken
// before watching so the output exists even if the stage never changes.
func (w *Watcher) Run(ctx context.Context, liveURL, outPath string) error {
	events, err := w.client.Subscribe(ctx, liveURL)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", liveURL, err)
	}

	if err := w.mirror(ctx, liveURL, outPath); err != nil {
		if !errors.Is(err, asset.ErrNotFound) {
			return err
		}
		w.logger.Info("stage does not exist yet, waiting for it", "url", liveURL)
	}

	// The timer starts stopped; the first event arms it.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.logger.Debug("change observed", "url", ev.URL, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := w.mirror(ctx, liveURL, outPath); err != nil {
				if errors.Is(err, asset.ErrNotFound) {
					w.logger.Info("stage removed", "url", liveURL)
					continue
				}
				// The writer may be mid-save; the next burst retries.
				w.logger.Warn("snapshot failed", "error", err)
			}
		}
	}
}

// mirror reads, parses and re-encodes the stage, then replaces the snapshot
// atomically via a rename.
func (w *Watcher) mirror(ctx context.Context, liveURL, outPath string) error {
	data, err := w.client.ReadFile(ctx, liveURL)
	if err != nil {
		return err
	}
	st, err := stage.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", liveURL, err)
	}
	encoded, err := stage.Encode(st)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := outPath + ".tmp"
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot folder: %w", err)
	}
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	w.logger.Info("snapshot written", "url", liveURL, "path", outPath, "bytes", len(encoded))
	return nil
}
