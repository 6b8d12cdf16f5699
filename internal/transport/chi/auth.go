package chi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kailas-cloud/newsrank/internal/domain/access"
)

// ErrUnknownKey signals a bearer token that maps to no groups.
var ErrUnknownKey = errors.New("unknown api key")

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// GroupResolver resolves the document groups a caller may read.
type GroupResolver interface {
	ResolvePermittedGroups(ctx context.Context, token string) (access.Scope, error)
}

// StaticGroupResolver maps configured API keys to group sets.
type StaticGroupResolver struct {
	keys map[string]access.Scope
}

// NewStaticGroupResolver builds a resolver from api key -> groups.
// Keys without any non-empty group are dropped.
func NewStaticGroupResolver(apiKeys map[string][]string) *StaticGroupResolver {
	keys := make(map[string]access.Scope, len(apiKeys))
	for k, groups := range apiKeys {
		if k == "" {
			continue
		}
		scope := access.NewScope(groups)
		if scope.IsEmpty() {
			continue
		}
		keys[k] = scope
	}
	return &StaticGroupResolver{keys: keys}
}

// ResolvePermittedGroups returns the scope bound to token.
func (r *StaticGroupResolver) ResolvePermittedGroups(_ context.Context, token string) (access.Scope, error) {
	scope, ok := r.keys[token]
	if !ok {
		return access.Scope{}, ErrUnknownKey
	}
	return scope, nil
}

type scopeCtxKey struct{}

// ContextWithScope stores the caller's access scope in the context.
func ContextWithScope(ctx context.Context, scope access.Scope) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, scope)
}

// ScopeFromContext returns the caller's access scope. An empty scope sees nothing.
func ScopeFromContext(ctx context.Context) access.Scope {
	scope, _ := ctx.Value(scopeCtxKey{}).(access.Scope)
	return scope
}

// BearerAuthMiddleware validates Bearer tokens and attaches the resolved scope to the request.
// There is no pass-through mode: a request without a resolvable key never reaches a handler.
func BearerAuthMiddleware(resolver GroupResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			scope, err := resolver.ResolvePermittedGroups(r.Context(), auth[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithScope(r.Context(), scope)))
		})
	}
}
