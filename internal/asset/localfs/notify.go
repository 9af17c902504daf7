package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/stagelink-labs/stagelink/internal/asset"
)

// Subscribe implements asset.Client. The watched URL does not have to
// exist yet; its parent directory is created and watched, and events for
// the URL (and anything beneath it, for folders) are forwarded until the
// context is cancelled.
func (c *Client) Subscribe(ctx context.Context, url string) (<-chan asset.Event, error) {
	path, err := c.resolve(url)
	if err != nil {
		return nil, err
	}

	watchDir := filepath.Dir(path)
	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", url, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(watchDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", url, err)
	}
	// If the URL is an existing directory, watch inside it too.
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if err := watcher.Add(path); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", url, err)
		}
	}

	events := make(chan asset.Event, 16)
	go c.forwardEvents(ctx, watcher, path, url, events)
	return events, nil
}

func (c *Client) forwardEvents(ctx context.Context, watcher *fsnotify.Watcher, path, url string, out chan<- asset.Event) {
	defer close(out)
	defer func() { _ = watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !eventMatches(ev.Name, path) {
				continue
			}
			op, ok := mapOp(ev.Op)
			if !ok {
				continue
			}
			select {
			case out <- asset.Event{URL: url, Op: op}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("watch error", "url", url, "error", err)
		}
	}
}

// eventMatches reports whether an fsnotify event path concerns the
// subscribed path or something beneath it.
func eventMatches(eventPath, subscribed string) bool {
	if eventPath == subscribed {
		return true
	}
	rel, err := filepath.Rel(subscribed, eventPath)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && rel != "." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

func mapOp(op fsnotify.Op) (asset.EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return asset.OpCreated, true
	case op.Has(fsnotify.Write):
		return asset.OpModified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return asset.OpDeleted, true
	}
	return 0, false
}
