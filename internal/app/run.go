package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"github.com/vk/fmexport/internal/ctxlog"
	"github.com/vk/fmexport/internal/export"
	"github.com/vk/fmexport/internal/mfile"
)

// Run executes the main application logic based on the app's configuration.
// In watch mode it keeps re-exporting until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.Watch {
		return a.watch(ctx)
	}

	report, err := a.Export(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.outW, report.Format())

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Export runs one load, export, render and write cycle and reports what it
// produced. Nothing is written unless every earlier stage succeeded.
func (a *App) Export(ctx context.Context) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	m, err := a.loader.Load(ctx, a.config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	logger.Info("Model loaded.", "model", m.Name, "path", a.config.ModelPath)

	names := make([]string, 0, len(a.config.Substitutions))
	for name := range a.config.Substitutions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := m.Pin(name, a.config.Substitutions[name]); err != nil {
			return nil, fmt.Errorf("failed to apply substitution %q: %w", name, err)
		}
	}

	res, err := export.Export(ctx, m, a.config.Export)
	if err != nil {
		return nil, fmt.Errorf("failed to export model %s: %w", m.Name, err)
	}

	arts, err := mfile.Render(res)
	if err != nil {
		return nil, fmt.Errorf("failed to render artifacts: %w", err)
	}

	fs := a.fs
	if a.config.DryRun {
		logger.Debug("Dry run, writing to an in-memory filesystem.")
		fs = afero.NewMemMapFs()
	}
	if err := mfile.NewWriter(fs, a.config.OutputDir).Write(ctx, arts); err != nil {
		return nil, fmt.Errorf("failed to write artifacts: %w", err)
	}

	report := newReport(res, arts, a.config.OutputDir, a.config.DryRun)
	logger.Info("Export finished.",
		"model", report.Model,
		"positions", report.Positions,
		"files", len(report.Files),
		"dry_run", report.DryRun,
	)
	return report, nil
}
