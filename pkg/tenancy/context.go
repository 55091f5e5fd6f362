package tenancy

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const (
	TenantIDKey contextKey = "tenant_id"
	UserIDKey   contextKey = "user_id"
)

var (
	ErrNoTenantInContext = errors.New("no tenant ID in context")
	ErrInvalidTenantID   = errors.New("invalid tenant ID")
)

// GetTenantID extracts the tenant ID from a context
func GetTenantID(ctx context.Context) (string, error) {
	tenantID, ok := ctx.Value(TenantIDKey).(string)
	if !ok || tenantID == "" {
		return "", ErrNoTenantInContext
	}
	return tenantID, nil
}

// WithTenant adds a tenant ID to a context
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// Middleware extracts the tenant from a request and adds it to the
// request context. Supported sources, in order:
//  1. X-Tenant-ID header
//  2. API key prefix (fleet_<tenant>_<key>) in the Authorization header
//  3. tenant_id query parameter (websocket subscriptions)
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tenantID string

		if headerTenant := r.Header.Get("X-Tenant-ID"); headerTenant != "" {
			tenantID = headerTenant
		}

		if tenantID == "" {
			if auth := r.Header.Get("Authorization"); auth != "" {
				token := strings.TrimPrefix(auth, "Bearer ")
				if parts := strings.Split(token, "_"); len(parts) >= 3 && parts[0] == "fleet" {
					tenantID = parts[1]
				}
			}
		}

		if tenantID == "" {
			if queryTenant := r.URL.Query().Get("tenant_id"); queryTenant != "" {
				tenantID = queryTenant
			}
		}

		if tenantID != "" {
			r = r.WithContext(WithTenant(r.Context(), tenantID))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTenant rejects requests without tenant context. Every fleet
// data route sits behind this: a request that cannot be attributed to
// a tenant must not see any tenant's data.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := GetTenantID(r.Context())
		if err != nil {
			http.Error(w, `{"error":"tenant_required","message":"No tenant ID provided"}`, http.StatusBadRequest)
			return
		}
		if !isValidTenantID(tenantID) {
			http.Error(w, `{"error":"invalid_tenant","message":"Invalid tenant ID format"}`, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isValidTenantID(tenantID string) bool {
	if len(tenantID) == 0 || len(tenantID) > 64 {
		return false
	}
	for _, ch := range tenantID {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch == '-' || ch == '_') {
			return false
		}
	}
	return true
}
