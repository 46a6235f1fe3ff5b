package api

import (
	"net/http"
	"strings"

	"github.com/campuslens/campuslens-server/internal/access"
	"github.com/campuslens/campuslens-server/internal/http/response"
)

// authenticate resolves the bearer assertion when one is present and
// attaches the principal to the request context. Requests without an
// Authorization header continue anonymously; a present but invalid
// assertion is rejected outright.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format", s.logger.Logger)
			return
		}

		user, err := s.gate.Authenticate(r.Context(), parts[1])
		if err != nil {
			response.HandleError(w, err, s.logger.Logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), user)))
	})
}

// requirePrincipal rejects anonymous requests. Must be used after
// authenticate.
func (s *Server) requirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if access.PrincipalFrom(r.Context()) == nil {
			response.Unauthorized(w, "Authentication required", s.logger.Logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin rejects principals without the admin role. Must be used
// after requirePrincipal.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := access.RequireAdmin(r.Context()); err != nil {
			response.HandleError(w, err, s.logger.Logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
