// Package logging assembles the structured slog loggers used across likebot.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes typed attribute helpers so pipeline code tags log
// lines with consistent keys (component, target, phase, run_id). The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
