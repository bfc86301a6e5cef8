package auth

import (
	"net/http"
	"strings"

	"autoparts/internal/util"
)

// Authenticate attaches the Identity of a valid bearer access token to the
// request. Requests without an Authorization header continue anonymously so
// the access policy can answer 401; a present but bad token is rejected here.
func Authenticate(tokens *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := bearerIdentity(tokens, r)
			if err != nil {
				util.WriteError(w, err)
				return
			}
			if id != nil {
				r = r.WithContext(WithIdentity(r.Context(), *id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuthenticate is Authenticate for public endpoints: a bad token is
// ignored and the request continues anonymously.
func OptionalAuthenticate(tokens *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := bearerIdentity(tokens, r); err == nil && id != nil {
				r = r.WithContext(WithIdentity(r.Context(), *id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerIdentity returns nil, nil when the request carries no Authorization header.
func bearerIdentity(tokens *Manager, r *http.Request) (*Identity, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return nil, nil
	}
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrInvalidToken
	}
	claims, err := tokens.Verify(strings.TrimSpace(raw), AccessToken)
	if err != nil {
		return nil, err
	}
	id := claims.Identity()
	return &id, nil
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			util.WriteError(w, ErrMissingToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}
