// Package hcl loads optimization models written in HCL.
//
// A model file holds exactly one root `model` block. Each model block
// declares variables, nested submodels, a `constraints` list and, on the
// root only, an `objective` and recorded `solution` blocks:
//
//	model "Aircraft" {
//	  variable "x" {}
//	  variable "rho" { value = 1.2 }
//	  variable "z" { length = 3 }
//	  constraints = [x >= 1, Wing.S * rho == 2, sum(z) <= 10]
//	  objective   = x + sum(z)
//	  model "Wing" {
//	    variable "S" {}
//	    constraints = [S >= 0.5]
//	  }
//	  solution "solve" {
//	    values = { "x" = 1, "Wing.S" = 2, "z[0]" = 1, "z[1]" = 1, "z[2]" = 1 }
//	  }
//	}
//
// Expressions are walked as hclsyntax trees and translated directly into
// nomial signomials; they are never evaluated as HCL values.
package hcl
