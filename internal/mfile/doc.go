// Package mfile renders an export.Result into the MATLAB files fmincon
// consumes and writes them to disk.
//
// Rendering and writing are separate steps. Render builds every artifact in
// memory and fails without side effects; Writer stages each artifact in a
// temporary file and renames it into place only after all of them were
// staged.
package mfile
