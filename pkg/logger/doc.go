// Package logger builds configured slog.Logger instances and provides the
// typed attribute helpers used across the engine, so log field names stay
// consistent between packages.
package logger
