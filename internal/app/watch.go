package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/vk/fmexport/internal/ctxlog"
	"github.com/vk/fmexport/internal/hcl"
)

// watchDebounce collapses a burst of editor writes into one export.
var watchDebounce = 200 * time.Millisecond

// watch exports once, then again after every change to a model file, until
// ctx is done. A failed export is reported and the watch goes on.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(a.config.ModelPath)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	logger.Info("Watching model files.", "path", a.config.ModelPath, "dirs", len(dirs))

	a.exportAndReport(ctx)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !a.isModelEvent(event) {
				continue
			}
			logger.Debug("Model file event detected.", "event", event.Op.String(), "file", event.Name)
			pending = time.After(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error.", "error", err)

		case <-pending:
			pending = nil
			a.exportAndReport(ctx)
		}
	}
}

func (a *App) exportAndReport(ctx context.Context) {
	report, err := a.Export(ctx)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Export failed.", "error", err)
		fmt.Fprintln(a.outW, color.RedString("Export failed: %v", err))
		return
	}
	fmt.Fprint(a.outW, report.Format())
}

func (a *App) isModelEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if !strings.HasSuffix(event.Name, hcl.Extension) {
		return false
	}
	info, err := os.Stat(a.config.ModelPath)
	if err == nil && info.IsDir() {
		return true
	}
	return filepath.Clean(event.Name) == filepath.Clean(a.config.ModelPath)
}

// watchDirs lists the directories to watch for path. Directories are
// watched recursively. A file is watched through its parent, since editors
// often replace files by renaming.
func watchDirs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{filepath.Dir(path)}, nil
	}

	var dirs []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}
	return dirs, nil
}
