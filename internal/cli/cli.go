package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/vk/fmexport/internal/app"
	"github.com/vk/fmexport/internal/export"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// flagValues holds the raw flag values of one parse.
type flagValues struct {
	model       string
	algorithm   string
	guess       string
	guessValues []float64
	guessMap    map[string]string
	substitute  map[string]string
	gradObj     bool
	gradConstr  bool
	logSpace    bool
	outputDir   string
	dryRun      bool
	watch       bool
	profile     string
	logFormat   string
	logLevel    string
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return ParseFS(args, output, afero.NewOsFs())
}

// ParseFS is Parse reading export profiles from fs.
func ParseFS(args []string, output io.Writer, fs afero.Fs) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var config *app.Config
	cmd := newCommand(fs, &config)
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, usageError("%s", err)
	}
	if config == nil {
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func newCommand(fs afero.Fs, result **app.Config) *cobra.Command {
	f := &flagValues{}
	cmd := &cobra.Command{
		Use:   "fmexport [flags] [MODEL_PATH]",
		Short: "Export a posynomial model to MATLAB fmincon files",
		Long: `fmexport - exports a posynomial/signomial optimization model to MATLAB
fmincon input files (confun.m, objfun.m, main.m, lookup.txt).

Arguments:
  MODEL_PATH
    Path to a single .hcl file or a directory containing .hcl files.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := buildConfig(cmd, f, fs, args)
			if err != nil {
				return err
			}
			*result = config
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.model, "model", "m", "", "Path to the model file or directory.")
	flags.StringVar(&f.algorithm, "algorithm", string(export.InteriorPoint), "fmincon algorithm: 'interior-point' or 'sqp'.")
	flags.StringVar(&f.guess, "guess", "ones", "Initial guess: 'ones', 'order-of-magnitude-floor', 'order-of-magnitude-round' or 'almost-exact-solution'.")
	flags.Float64SliceVar(&f.guessValues, "guess-values", nil, "Explicit initial guess, one value per free variable in position order.")
	flags.StringToStringVar(&f.guessMap, "guess-map", nil, "Explicit initial guess by variable name, e.g. x=1,Wing.S=2.")
	flags.StringToStringVar(&f.substitute, "substitute", nil, "Pin variables before export, e.g. rho=1.2.")
	flags.BoolVar(&f.gradObj, "gradobj", true, "Include the analytic objective gradient.")
	flags.BoolVar(&f.gradConstr, "gradconstr", true, "Include the analytic constraint gradients.")
	flags.BoolVar(&f.logSpace, "logspace", false, "Export in log space (disables analytic gradients).")
	flags.StringVarP(&f.outputDir, "output-dir", "o", app.DefaultOutputDir, "Directory the MATLAB files are written to.")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Render the files without writing them.")
	flags.BoolVar(&f.watch, "watch", false, "Re-export whenever a model file changes.")
	flags.StringVar(&f.profile, "profile", "", "Path to a YAML export profile.")
	flags.StringVar(&f.logFormat, "log-format", "json", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	return cmd
}

func buildConfig(cmd *cobra.Command, f *flagValues, fs afero.Fs, args []string) (*app.Config, error) {
	path := f.model
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	slog.Debug("Model path determined.", "path", path)

	if path == "" {
		slog.Debug("No model path provided, printing usage and exiting.")
		_ = cmd.Usage()
		return nil, nil
	}

	logFormat := strings.ToLower(f.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, usageError("invalid log-format: must be 'text' or 'json'")
	}
	logLevel := strings.ToLower(f.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	s := defaultSettings()
	if f.profile != "" {
		p, err := LoadProfile(fs, f.profile)
		if err != nil {
			return nil, usageError("%s", err)
		}
		p.apply(&s)
		slog.Debug("Export profile applied.", "profile", f.profile)
	}
	if err := applyFlags(cmd, f, &s); err != nil {
		return nil, err
	}

	opts, err := s.exportOptions()
	if err != nil {
		return nil, usageError("%s", err)
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ModelPath:     path,
		OutputDir:     s.outputDir,
		DryRun:        !s.writeFiles,
		Watch:         f.watch,
		Export:        opts,
		Substitutions: s.substitutions,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, usageError("%s", err)
	}
	return config, nil
}

// applyFlags overrides s with every flag given explicitly.
func applyFlags(cmd *cobra.Command, f *flagValues, s *settings) error {
	changed := cmd.Flags().Changed

	if changed("algorithm") {
		s.algorithm = f.algorithm
	}
	if changed("guess") {
		s.guess, s.guessValues, s.guessMap = f.guess, nil, nil
	}
	if changed("guess-values") {
		s.guessValues, s.guessMap = f.guessValues, nil
	}
	if changed("guess-map") {
		m, err := parseFloats("guess-map", f.guessMap)
		if err != nil {
			return err
		}
		s.guessMap, s.guessValues = m, nil
	}
	if changed("substitute") {
		m, err := parseFloats("substitute", f.substitute)
		if err != nil {
			return err
		}
		merged := make(map[string]float64, len(s.substitutions)+len(m))
		for k, v := range s.substitutions {
			merged[k] = v
		}
		for k, v := range m {
			merged[k] = v
		}
		s.substitutions = merged
	}
	if changed("gradobj") {
		s.gradObj = f.gradObj
	}
	if changed("gradconstr") {
		s.gradConstr = f.gradConstr
	}
	if changed("logspace") {
		s.logSpace = f.logSpace
	}
	if changed("output-dir") {
		s.outputDir = f.outputDir
	}
	if changed("dry-run") {
		s.writeFiles = !f.dryRun
	}
	return nil
}

func parseFloats(flag string, raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for name, text := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, usageError("invalid --%s value %q for %s", flag, text, name)
		}
		out[name] = v
	}
	return out, nil
}

func (s settings) exportOptions() (export.Options, error) {
	alg, err := export.ParseAlgorithm(s.algorithm)
	if err != nil {
		return export.Options{}, err
	}

	var guess export.Guess
	switch {
	case len(s.guessValues) > 0 && len(s.guessMap) > 0:
		return export.Options{}, errors.New("guess values and guess map are mutually exclusive")
	case len(s.guessValues) > 0:
		guess = export.List(s.guessValues...)
	case len(s.guessMap) > 0:
		guess = export.Map(s.guessMap)
	default:
		if guess, err = export.ParseGuess(s.guess); err != nil {
			return export.Options{}, err
		}
	}

	return export.Options{
		Algorithm:       alg,
		Guess:           guess,
		GradObjective:   s.gradObj,
		GradConstraints: s.gradConstr,
		LogSpace:        s.logSpace,
	}, nil
}
