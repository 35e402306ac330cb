// Package environment defines the application environment tag and helpers
// to branch behavior on it (development email overrides, log presets).
package environment

import "context"

// Environment represents application environment.
type Environment string

const (
	// Development for development environment.
	Development Environment = "development"
	// Production for production environment.
	Production Environment = "production"
	// Staging for staging environment.
	Staging Environment = "staging"
)

type contextKey struct{}

// WithContext adds the environment tag to context.
func WithContext(ctx context.Context, env string) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext retrieves the environment tag from context.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	env, _ := ctx.Value(contextKey{}).(string)
	return env
}

// IsProduction reports whether the given tag denotes production.
func IsProduction(env string) bool {
	return env == string(Production) || env == "prod"
}

// IsDevelopment reports whether the given tag denotes development.
func IsDevelopment(env string) bool {
	return env == string(Development) || env == "dev" || env == ""
}
