// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the export lifecycle (load the model,
// export it, render the MATLAB files, write them), decoupled from any
// specific entrypoint like a CLI.
package app
