package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campuslens/campuslens-server/internal/http/response"
)

// handleAdminListPhotos lists every photo regardless of owner or
// visibility. ?owner_id= narrows to one user's photos.
func (s *Server) handleAdminListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := s.gallery.ListAll(r.Context(), r.URL.Query().Get("owner_id"), listOptionsFrom(r))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, photos, s.logger.Logger)
}

// handleTagStats reports per-tag usage counts, most used first.
func (s *Server) handleTagStats(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	stats, err := s.tagService.Stats(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, stats, s.logger.Logger)
}

// handleRelatedTags reports tags co-occurring with the named tag.
func (s *Server) handleRelatedTags(w http.ResponseWriter, r *http.Request) {
	minCorrelation, _ := strconv.Atoi(r.URL.Query().Get("min"))

	related, err := s.tagService.Related(r.Context(), chi.URLParam(r, "name"), minCorrelation)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, related, s.logger.Logger)
}

// handleAnalyticsSummary reports the aggregate usage summary.
func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analytics.Summarize(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, summary, s.logger.Logger)
}
