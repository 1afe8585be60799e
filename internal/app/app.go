package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/vk/fmexport/internal/model"
)

// Loader builds a model from model files on disk.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*model.Model, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader Loader
	fs     afero.Fs
}

// NewApp is the constructor for the main application. Artifacts are written
// to fs, or to the OS filesystem when fs is nil.
func NewApp(outW io.Writer, cfg *Config, loader Loader, fs afero.Fs) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
		fs:     fs,
	}
}

