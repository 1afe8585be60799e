package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top level of a model file.
type fileRoot struct {
	Models []*modelBlock `hcl:"model,block"`
	Remain hcl.Body      `hcl:",remain"`
}

// modelBlock is a `model` block. Submodels nest recursively.
type modelBlock struct {
	Name        string           `hcl:"name,label"`
	Variables   []*variableBlock `hcl:"variable,block"`
	Constraints *hcl.Attribute   `hcl:"constraints,optional"`
	Objective   *hcl.Attribute   `hcl:"objective,optional"`
	Models      []*modelBlock    `hcl:"model,block"`
	Solutions   []*solutionBlock `hcl:"solution,block"`
}

// variableBlock declares a scalar variable, or a vector when Length is set.
// Value pins the variable; a vector takes a list of numbers.
type variableBlock struct {
	Name   string         `hcl:"name,label"`
	Value  hcl.Expression `hcl:"value,optional"`
	Units  string         `hcl:"units,optional"`
	Label  string         `hcl:"label,optional"`
	Length int            `hcl:"length,optional"`
}

// solutionBlock records the result of a solve procedure.
type solutionBlock struct {
	Procedure string         `hcl:"procedure,label"`
	Values    hcl.Expression `hcl:"values"`
}
