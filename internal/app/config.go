package app

import (
	"errors"
	"fmt"

	"github.com/vk/fmexport/internal/export"
)

// DefaultOutputDir is used when no output directory is configured.
const DefaultOutputDir = "."

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModelPath string // hcl file or directory
	OutputDir string

	// DryRun renders every artifact without touching the real filesystem.
	DryRun bool
	Watch  bool

	Export export.Options

	// Substitutions pins variables by canonical name after loading, on top
	// of the values the model file declares.
	Substitutions map[string]float64

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.Export.Algorithm != "" {
		if _, err := export.ParseAlgorithm(string(cfg.Export.Algorithm)); err != nil {
			return nil, fmt.Errorf("invalid export options: %w", err)
		}
	}
	return &cfg, nil
}
