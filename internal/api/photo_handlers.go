package api

import (
	"encoding/json/v2"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campuslens/campuslens-server/internal/access"
	"github.com/campuslens/campuslens-server/internal/http/response"
	"github.com/campuslens/campuslens-server/internal/service"
)

// multipartOverhead is slack on top of the file size limit for the
// other form fields and multipart framing.
const multipartOverhead = 64 << 10

// handleUploadPhoto ingests a multipart upload: the "file" part plus
// optional title, description, and is_public fields.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := access.PrincipalFrom(ctx)

	if !s.uploadLimiter.Allow(user.ID) {
		response.TooManyRequests(w, "Upload rate limit exceeded, try again shortly", s.logger.Logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxUploadBytes + multipartOverhead); err != nil {
		response.BadRequest(w, "Invalid or oversized multipart request", s.logger.Logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field", s.logger.Logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "Failed to read uploaded file", s.logger.Logger)
		return
	}

	params := service.UploadParams{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		IsPublic:    r.FormValue("is_public") == "true",
	}

	photo, err := s.photoService.Ingest(ctx, user, header.Filename, data, params)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	response.Created(w, photo, s.logger.Logger)
}

// handleListOwnPhotos lists the authenticated user's photos, private
// ones included.
func (s *Server) handleListOwnPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := access.PrincipalFrom(ctx)

	photos, err := s.gallery.ListOwn(ctx, user, listOptionsFrom(r))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, photos, s.logger.Logger)
}

// handleGetPhoto returns a single photo if the viewer may see it.
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photo, err := s.photoService.Get(ctx, access.PrincipalFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, photo, s.logger.Logger)
}

// handleGetPhotoFile streams the stored image bytes.
func (s *Server) handleGetPhotoFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, contentType, err := s.photoService.File(ctx, access.PrincipalFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write photo bytes", "error", err)
	}
}

// handleUpdatePhoto edits title, description, or visibility.
// Only fields present in the request body are applied (PATCH semantics).
func (s *Server) handleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var params service.UpdateParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger.Logger)
		return
	}

	photo, err := s.photoService.Update(ctx, access.PrincipalFrom(ctx), chi.URLParam(r, "id"), params)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, photo, s.logger.Logger)
}

// handleDeletePhoto removes a photo and its stored file.
func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.photoService.Delete(ctx, access.PrincipalFrom(ctx), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.NoContent(w)
}

// handleReprocessPhoto reruns tagging on a stored photo.
func (s *Server) handleReprocessPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photo, err := s.photoService.Reprocess(ctx, access.PrincipalFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, photo, s.logger.Logger)
}

// listOptionsFrom extracts the shared listing filters from query
// parameters.
func listOptionsFrom(r *http.Request) service.ListOptions {
	q := r.URL.Query()

	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	return service.ListOptions{
		Tag:    q.Get("tag"),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Skip:   skip,
		Limit:  limit,
	}
}
