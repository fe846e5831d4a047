// Package pipeline runs a sidebar build end to end: it indexes content,
// loads every API description, builds all sidebars, resolves references,
// fills and seals the registry, resolves the navbar and writes the artifact.
//
// Every run uses a fresh registry. Stage failures are returned as
// ClassifiedErrors so the CLI can map them to exit codes.
package pipeline
