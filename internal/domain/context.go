package domain

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const tenantIDKey contextKey = "tenant_id"

// WithTenantID returns a context carrying the tenant scope for a request.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantIDFromContext extracts the tenant scope, or "" when absent.
func TenantIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tenantIDKey).(string); ok {
		return v
	}
	return ""
}
