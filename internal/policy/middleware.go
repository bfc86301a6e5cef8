package policy

import (
	"errors"
	"net/http"

	"autoparts/internal/auth"
	"autoparts/internal/metrics"
	"autoparts/internal/models"
	"autoparts/internal/util"
)

// Require evaluates p for every request against resource, taking the
// operation from the HTTP method.
func Require(p Policy, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var caller *auth.Identity
			if id, ok := auth.FromContext(r.Context()); ok {
				caller = &id
			}
			op := OperationFor(r.Method)
			if err := p.Authorize(caller, op, resource); err != nil {
				reason := "forbidden"
				if errors.Is(err, models.ErrUnauthorized) {
					reason = "unauthorized"
				}
				metrics.AuthzDenied.WithLabelValues(resource, op.String(), reason).Inc()
				util.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
