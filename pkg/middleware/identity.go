package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKeyType string

const (
	customerIDKey contextKeyType = "customer_id"
	roleKey       contextKeyType = "role"
)

// Header names populated by the upstream gateway after token validation.
// This service never validates credentials itself; it trusts the identity
// the gateway attaches to the request.
const (
	HeaderCustomerID = "X-Customer-ID"
	HeaderRole       = "X-Customer-Role"
)

// Role constants shared across the identity middleware and handlers.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Identity reads the gateway-injected identity headers and stores them in the
// request context. If no customer ID is present the request is rejected with
// 401 Unauthorized: every operation in this service requires an
// authenticated customer.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderCustomerID)
		if id == "" {
			writeIdentityError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		role := r.Header.Get(HeaderRole)
		if role == "" {
			role = RoleCustomer
		}

		ctx := context.WithValue(r.Context(), customerIDKey, id)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole middleware checks that the authenticated customer has one of the
// required roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if _, ok := roleSet[role]; !ok {
				writeIdentityError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CustomerIDFromContext extracts the authenticated customer ID from the request context.
func CustomerIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(customerIDKey).(string); ok {
		return id
	}
	return ""
}

// RoleFromContext extracts the customer role from the request context.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

func writeIdentityError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
