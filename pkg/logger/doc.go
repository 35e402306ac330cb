// Package logger provides a small factory around log/slog plus typed
// attribute helpers used across the notification pipeline.
//
// The factory produces JSON logs at info level by default; WithDevelopment
// and WithProduction select sensible per-environment presets. Context
// extractors allow request-scoped values to be injected into every record
// without threading them through call sites.
package logger
