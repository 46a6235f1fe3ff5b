package api

import (
	"net/http"

	"github.com/campuslens/campuslens-server/internal/access"
	"github.com/campuslens/campuslens-server/internal/http/response"
)

// handleGetCurrentUser returns the authenticated user's profile.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	response.Success(w, access.PrincipalFrom(r.Context()), s.logger.Logger)
}
