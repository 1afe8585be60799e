package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/vk/fmexport/internal/export"
	"github.com/vk/fmexport/internal/mfile"
)

var (
	headerStyle = color.New(color.FgCyan, color.Bold)
	countStyle  = color.New(color.FgYellow, color.Bold)
	fileStyle   = color.New(color.FgGreen)
	dryRunStyle = color.New(color.FgMagenta, color.Bold)
)

// Report summarizes one export.
type Report struct {
	Model        string
	Positions    int
	Inequalities int
	Equalities   int
	Algorithm    export.Algorithm
	LogSpace     bool
	Dir          string
	Files        []string
	DryRun       bool
}

func newReport(res *export.Result, arts mfile.Artifacts, dir string, dryRun bool) *Report {
	return &Report{
		Model:        res.Model,
		Positions:    res.Index.Len(),
		Inequalities: len(res.Inequalities),
		Equalities:   len(res.Equalities),
		Algorithm:    res.Algorithm,
		LogSpace:     res.LogSpace,
		Dir:          dir,
		Files:        arts.Names(),
		DryRun:       dryRun,
	}
}

// Format renders the report for the console.
func (r *Report) Format() string {
	var b strings.Builder
	b.WriteString(headerStyle.Sprintf("Exported %s", r.Model))
	if r.DryRun {
		b.WriteString(" " + dryRunStyle.Sprint("(dry run)"))
	}
	b.WriteString("\n")

	mode := "posynomial"
	if r.LogSpace {
		mode = "log-space"
	}
	fmt.Fprintf(&b, "  %s free variables, %s inequalities, %s equalities (%s, %s)\n",
		countStyle.Sprint(r.Positions),
		countStyle.Sprint(r.Inequalities),
		countStyle.Sprint(r.Equalities),
		r.Algorithm, mode,
	)
	for _, name := range r.Files {
		b.WriteString("  " + fileStyle.Sprint(filepath.Join(r.Dir, name)) + "\n")
	}
	return b.String()
}
