// Package main hosts the rawsort CLI entrypoint and command graph.
//
// The root command takes a source and destination directory and runs one
// organize pass; subcommands report tool availability, read the move journal,
// and scaffold configuration. Configuration loading and logger setup live
// here so the internal packages stay free of CLI concerns.
package main
