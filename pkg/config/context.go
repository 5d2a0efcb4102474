package config

import "context"

// ContextKey is an alias used for storing values in context
type ContextKey string

const (
	// ConfigCtxKey is the context key used to store the *Config instance
	ConfigCtxKey ContextKey = "config"
)

// ContextWithConfig stores the configuration in the context
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ConfigCtxKey, cfg)
}

// FromContext returns the configuration attached to ctx, falling back to the
// built-in defaults when none was attached.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(ConfigCtxKey).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	return Default()
}

const sourcesCtxKey ContextKey = "config_sources"

// ContextWithSources stores the per-key source tracking next to the config.
func ContextWithSources(ctx context.Context, sources map[string]SourceType) context.Context {
	return context.WithValue(ctx, sourcesCtxKey, sources)
}

// SourcesFromContext returns the stored source tracking, or nil.
func SourcesFromContext(ctx context.Context) map[string]SourceType {
	if ctx == nil {
		return nil
	}
	sources, _ := ctx.Value(sourcesCtxKey).(map[string]SourceType)
	return sources
}
