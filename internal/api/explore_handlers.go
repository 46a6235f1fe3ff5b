package api

import (
	"net/http"

	"github.com/campuslens/campuslens-server/internal/http/response"
)

// handleExplore lists public photos from every user. Anonymous viewers
// get the same answer as authenticated ones.
func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	photos, err := s.gallery.Explore(r.Context(), listOptionsFrom(r))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, photos, s.logger.Logger)
}
