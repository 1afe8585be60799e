package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Profile is a saved set of export settings. Unset fields leave the
// defaults alone; flags given on the command line override the profile.
type Profile struct {
	Algorithm     string             `yaml:"algorithm"`
	Guess         string             `yaml:"guess"`
	GuessValues   []float64          `yaml:"guess_values"`
	GuessMap      map[string]float64 `yaml:"guess_map"`
	GradObj       *bool              `yaml:"gradobj"`
	GradConstr    *bool              `yaml:"gradconstr"`
	LogSpace      *bool              `yaml:"logspace"`
	OutputDir     string             `yaml:"output_dir"`
	WriteFiles    *bool              `yaml:"write_files"`
	Substitutions map[string]float64 `yaml:"substitutions"`
}

// LoadProfile reads a profile from fs. Unknown keys are errors.
func LoadProfile(fs afero.Fs, path string) (*Profile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &p, nil
}

// settings are the merged export settings before validation.
type settings struct {
	algorithm     string
	guess         string
	guessValues   []float64
	guessMap      map[string]float64
	gradObj       bool
	gradConstr    bool
	logSpace      bool
	outputDir     string
	writeFiles    bool
	substitutions map[string]float64
}

func defaultSettings() settings {
	return settings{
		algorithm:  "interior-point",
		guess:      "ones",
		gradObj:    true,
		gradConstr: true,
		outputDir:  ".",
		writeFiles: true,
	}
}

func (p *Profile) apply(s *settings) {
	if p.Algorithm != "" {
		s.algorithm = p.Algorithm
	}
	if p.Guess != "" {
		s.guess = p.Guess
	}
	if p.GuessValues != nil {
		s.guessValues = p.GuessValues
	}
	if p.GuessMap != nil {
		s.guessMap = p.GuessMap
	}
	if p.GradObj != nil {
		s.gradObj = *p.GradObj
	}
	if p.GradConstr != nil {
		s.gradConstr = *p.GradConstr
	}
	if p.LogSpace != nil {
		s.logSpace = *p.LogSpace
	}
	if p.OutputDir != "" {
		s.outputDir = p.OutputDir
	}
	if p.WriteFiles != nil {
		s.writeFiles = *p.WriteFiles
	}
	if p.Substitutions != nil {
		s.substitutions = p.Substitutions
	}
}
