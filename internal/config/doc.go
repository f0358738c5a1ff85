// Package config defines the format-agnostic scenario model that drives a run,
// the Loader interface that produces it, and the TOML settings file that
// supplies defaults for the command line.
//
// Concrete loaders, such as the HCL one, live in separate packages.
package config
