// Package config defines the format-agnostic project model of the
// application, along with the Loader interface for reading projects from
// various sources.
//
// A `config.Project` is the single source of truth the app uses to populate
// a module graph. Concrete loaders, such as for HCL and for Lisp project
// scripts, are provided in separate packages and combined by MultiLoader.
package config
