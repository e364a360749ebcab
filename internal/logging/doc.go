// Package logging assembles the structured slog loggers used across
// scorepack.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so conversion jobs can tag log lines
// with job and container identifiers automatically. Prefer these constructors
// over hand-rolled slog setup so every component emits data with the same
// shape and routing.
package logging
