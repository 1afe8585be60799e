// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// merges flags with an optional YAML export profile into the application's
// internal configuration.
package cli
