package smith

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jlrickert/cli-toolkit/mylog"
)

const (
	// watchTick is how often the settle check runs.
	watchTick = 100 * time.Millisecond

	// watchQuiet is how long a report must stay quiet before it is
	// reloaded. Editors and sync tools write report trees in bursts.
	watchQuiet = 250 * time.Millisecond
)

// Watch reloads reports in the store as their files change on disk.
// It blocks until ctx is done. Changes are coalesced per report name
// so a burst of writes triggers one reload.
func Watch(ctx context.Context, store *Store) error {
	lg := mylog.LoggerFromContext(ctx)
	root := store.Root()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create reports root %s: %w", root, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start report watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	if err := watchTree(watcher, root); err != nil {
		return fmt.Errorf("failed to watch reports under %s: %w", root, err)
	}
	lg.Info("watching reports", "root", root)

	pending := map[string]bool{}
	var pendingFrom time.Time
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(pending) == 0 || time.Since(pendingFrom) < watchQuiet {
				continue
			}
			for name := range pending {
				if err := store.Refresh(ctx, name); err != nil {
					lg.Warn("failed to refresh report", "name", name, "err", err)
				}
			}
			pending = map[string]bool{}
		case event, ok := <-watcher.Events:
			if !ok {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod|fsnotify.Remove) == 0 {
				continue
			}
			// fsnotify watches are not recursive; new directories
			// need their own watch before writes inside them show up.
			if event.Op&fsnotify.Create != 0 {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						lg.Warn("failed to watch new directory", "path", event.Name, "err", err)
					}
				}
			}
			if name, ok := reportNameForPath(root, event.Name); ok {
				pending[name] = true
				pendingFrom = time.Now()
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				continue
			}
			lg.Warn("report watcher error", "err", watchErr)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}

// reportNameForPath maps a changed path to the report folder it lives
// under. Paths outside root, and root itself, map to nothing.
func reportNameForPath(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	name, _, _ := strings.Cut(rel, string(filepath.Separator))
	return name, name != ""
}
