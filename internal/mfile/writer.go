package mfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vk/fmexport/internal/ctxlog"
)

const filePerm = 0o644

// Writer writes artifacts into a directory of an afero filesystem.
type Writer struct {
	fs  afero.Fs
	dir string
}

// NewWriter creates a Writer rooted at dir on fs.
func NewWriter(fs afero.Fs, dir string) *Writer {
	return &Writer{fs: fs, dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Write stages every artifact in a temporary file next to its target and
// renames them into place once all are staged. No target file is touched
// when staging fails.
func (w *Writer) Write(ctx context.Context, arts Artifacts) error {
	logger := ctxlog.FromContext(ctx)

	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %q: %w", w.dir, err)
	}

	staged := make([]string, 0, len(arts))
	cleanup := func(paths []string) {
		for _, p := range paths {
			_ = w.fs.Remove(p)
		}
	}

	for _, art := range arts {
		if err := ctx.Err(); err != nil {
			cleanup(staged)
			return err
		}
		tmp, err := w.stage(art)
		if err != nil {
			cleanup(staged)
			return err
		}
		staged = append(staged, tmp)
	}

	for i, art := range arts {
		target := filepath.Join(w.dir, art.Name)
		if err := w.fs.Rename(staged[i], target); err != nil {
			cleanup(staged[i:])
			return fmt.Errorf("moving %s into place: %w", art.Name, err)
		}
		logger.Debug("Wrote artifact.", "path", target, "bytes", len(art.Content))
	}
	return nil
}

func (w *Writer) stage(art Artifact) (string, error) {
	f, err := afero.TempFile(w.fs, w.dir, "."+art.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("staging %s: %w", art.Name, err)
	}
	name := f.Name()

	if _, err := f.Write(art.Content); err != nil {
		_ = f.Close()
		_ = w.fs.Remove(name)
		return "", fmt.Errorf("staging %s: %w", art.Name, err)
	}
	if err := f.Close(); err != nil {
		_ = w.fs.Remove(name)
		return "", fmt.Errorf("staging %s: %w", art.Name, err)
	}
	if err := w.fs.Chmod(name, filePerm); err != nil {
		_ = w.fs.Remove(name)
		return "", fmt.Errorf("staging %s: %w", art.Name, err)
	}
	return name, nil
}
