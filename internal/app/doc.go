// Package app contains the core application logic. It loads a project,
// builds the module graph and drives the views frame by frame, decoupled
// from any specific entrypoint like a CLI.
package app
