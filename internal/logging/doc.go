// Package logging assembles the structured slog loggers used across splice
// commands and services.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes small attr helpers plus run-scoped context fields so
// render and probe code tags its lines consistently. A no-op logger is
// provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
