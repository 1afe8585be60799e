// Package testutil provides an end-to-end harness that runs the export
// pipeline against in-memory model files.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vk/fmexport/internal/app"
	"github.com/vk/fmexport/internal/export"
	"github.com/vk/fmexport/internal/hcl"
)

const (
	// ModelDir is where the harness places model files.
	ModelDir = "models"
	// OutputDir is where the harness writes artifacts.
	OutputDir = "out"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of one harness run.
type HarnessResult struct {
	Output string
	Err    error
	Fs     afero.Fs
}

// Artifact returns the content of a written artifact.
func (r *HarnessResult) Artifact(t *testing.T, name string) string {
	t.Helper()
	b, err := afero.ReadFile(r.Fs, filepath.Join(OutputDir, name))
	require.NoError(t, err, "artifact %s", name)
	return string(b)
}

// Written reports whether the output directory exists.
func (r *HarnessResult) Written(t *testing.T) bool {
	t.Helper()
	ok, err := afero.DirExists(r.Fs, OutputDir)
	require.NoError(t, err)
	return ok
}

// RunExport writes files (relative names, HCL sources) below ModelDir on an
// in-memory filesystem and runs the app once. mutate may adjust the
// configuration first.
func RunExport(t *testing.T, files map[string]string, mutate func(*app.Config)) *HarnessResult {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(ModelDir, name), []byte(content), 0o644))
	}

	cfg, err := app.NewConfig(app.Config{
		ModelPath: ModelDir,
		OutputDir: OutputDir,
		Export:    export.DefaultOptions(),
		LogFormat: "text",
		LogLevel:  "debug",
	})
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}

	out := &SafeBuffer{}
	runErr := app.NewApp(out, cfg, hcl.NewLoader(fs), fs).Run(context.Background())

	t.Cleanup(func() {
		if os.Getenv("FMEXPORT_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})

	return &HarnessResult{Output: out.String(), Err: runErr, Fs: fs}
}
