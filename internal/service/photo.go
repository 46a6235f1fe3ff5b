// Package service orchestrates the photo collection workflows on top of
// the store, blob storage, and the tagging pipeline.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/campuslens/campuslens-server/internal/access"
	"github.com/campuslens/campuslens-server/internal/blob"
	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/errors"
	"github.com/campuslens/campuslens-server/internal/id"
	"github.com/campuslens/campuslens-server/internal/media/images"
	"github.com/campuslens/campuslens-server/internal/store"
	"github.com/campuslens/campuslens-server/internal/tagger"
	"github.com/campuslens/campuslens-server/internal/validation"
)

// PhotoService handles photo ingestion, retrieval, metadata updates,
// deletion, and reprocessing.
type PhotoService struct {
	store     store.Store
	blobs     *blob.Store
	pipeline  *tagger.Pipeline
	validator *validation.Validator
	logger    *slog.Logger
	maxBytes  int64
}

// NewPhotoService creates a new photo service.
func NewPhotoService(st store.Store, blobs *blob.Store, pipeline *tagger.Pipeline, validator *validation.Validator, maxBytes int64, logger *slog.Logger) *PhotoService {
	return &PhotoService{
		store:     st,
		blobs:     blobs,
		pipeline:  pipeline,
		validator: validator,
		logger:    logger,
		maxBytes:  maxBytes,
	}
}

// UploadParams are the user-supplied fields of an upload.
type UploadParams struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
	IsPublic    bool   `json:"is_public"`
}

// UpdateParams are the user-editable fields of a photo. Nil fields are
// left unchanged.
type UpdateParams struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public"`
}

// Ingest runs the upload pipeline: validate, store the file, create the
// record, then tag. A tagging failure never fails the upload; the photo
// lands in tag_failed and the caller still gets it back. A record
// failure rolls the stored file back so nothing is left behind.
func (s *PhotoService) Ingest(ctx context.Context, owner *domain.User, filename string, data []byte, params UploadParams) (*domain.Photo, error) {
	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.Validation("uploaded file is empty")
	}

	// Content type is checked before the size ceiling.
	info, err := images.Probe(data)
	if err != nil {
		return nil, errors.Validation("unsupported image format").WithCause(err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, errors.Validationf("file exceeds the %d byte upload limit", s.maxBytes)
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		// Fall back to the upload's file name, extension stripped.
		title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	fileKey, err := s.blobs.Save(data, images.Extension(info.ContentType))
	if err != nil {
		return nil, errors.Internal("store uploaded file").WithCause(err)
	}

	photoID, err := id.Generate("photo")
	if err != nil {
		s.discardBlob(fileKey)
		return nil, errors.Internal("generate photo id").WithCause(err)
	}

	now := time.Now().UTC()
	photo := &domain.Photo{
		ID:          photoID,
		OwnerID:     owner.ID,
		FileKey:     fileKey,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		IsPublic:    params.IsPublic,
		State:       domain.PhotoStatePending,
		ContentType: info.ContentType,
		SizeBytes:   int64(len(data)),
		Width:       info.Width,
		Height:      info.Height,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        []domain.TagDetail{},
	}

	if hash, err := images.ComputeBlurHash(data); err == nil {
		photo.BlurHash = hash
	} else {
		s.logger.Debug("blurhash computation failed", "photo_id", photoID, "error", err)
	}

	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		// No record, no file.
		s.discardBlob(fileKey)
		return nil, errors.Internal("create photo record").WithCause(err)
	}

	s.logger.Info("photo ingested",
		"photo_id", photo.ID,
		"owner_id", owner.ID,
		"size_bytes", photo.SizeBytes,
		"content_type", photo.ContentType,
	)

	s.process(ctx, photo, data)
	return photo, nil
}

// process runs tagging for a stored photo and records the outcome.
// Failures are absorbed into the tag_failed state; the photo and its
// file always survive.
func (s *PhotoService) process(ctx context.Context, photo *domain.Photo, data []byte) {
	result, err := s.pipeline.Analyze(ctx, data)
	if err != nil {
		s.logger.Warn("tagging failed",
			"photo_id", photo.ID,
			"error", err,
		)
		s.markTagFailed(ctx, photo)
		return
	}

	if err := s.persistResult(ctx, photo, result); err != nil {
		s.logger.Warn("persisting tags failed",
			"photo_id", photo.ID,
			"error", err,
		)
		s.markTagFailed(ctx, photo)
	}
}

// persistResult writes the tagging outcome: tag rows, associations,
// caption, and the tagged state.
func (s *PhotoService) persistResult(ctx context.Context, photo *domain.Photo, result *tagger.Result) error {
	params := make([]store.PhotoTagParams, 0, len(result.Tags))
	details := make([]domain.TagDetail, 0, len(result.Tags))
	for _, t := range result.Tags {
		tag, _, err := s.store.FindOrCreateTag(ctx, t.Name)
		if err != nil {
			return fmt.Errorf("find or create tag %q: %w", t.Name, err)
		}
		params = append(params, store.PhotoTagParams{
			TagID:      tag.ID,
			Confidence: t.Confidence,
			Matched:    t.Matched,
		})
		details = append(details, domain.TagDetail{
			Name:       tag.Name,
			Confidence: t.Confidence,
			Matched:    t.Matched,
		})
	}

	if err := s.store.SetPhotoTags(ctx, photo.ID, params); err != nil {
		return fmt.Errorf("set photo tags: %w", err)
	}
	if err := s.store.SetPhotoProcessed(ctx, photo.ID, result.Caption, domain.PhotoStateTagged); err != nil {
		return fmt.Errorf("mark photo tagged: %w", err)
	}

	photo.Caption = result.Caption
	photo.State = domain.PhotoStateTagged
	photo.Tags = details
	return nil
}

func (s *PhotoService) markTagFailed(ctx context.Context, photo *domain.Photo) {
	if err := s.store.SetPhotoProcessed(ctx, photo.ID, nil, domain.PhotoStateTagFailed); err != nil {
		s.logger.Error("failed to record tag failure", "photo_id", photo.ID, "error", err)
		return
	}
	photo.State = domain.PhotoStateTagFailed
}

func (s *PhotoService) discardBlob(fileKey string) {
	if err := s.blobs.Delete(fileKey); err != nil {
		s.logger.Warn("failed to remove orphaned file", "file_key", fileKey, "error", err)
	}
}

// Get returns a photo the viewer may see. A private photo of another
// user reads as forbidden, not as not found; photo existence is not
// treated as sensitive.
func (s *PhotoService) Get(ctx context.Context, viewer *domain.User, photoID string) (*domain.Photo, error) {
	photo, err := s.store.GetPhotoByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(viewer, photo) {
		if viewer == nil {
			return nil, errors.Unauthorized("authentication required")
		}
		return nil, errors.Forbidden("not allowed to view this photo")
	}
	return photo, nil
}

// File returns the stored bytes and content type for a viewable photo.
func (s *PhotoService) File(ctx context.Context, viewer *domain.User, photoID string) ([]byte, string, error) {
	photo, err := s.Get(ctx, viewer, photoID)
	if err != nil {
		return nil, "", err
	}

	data, err := s.blobs.Get(photo.FileKey)
	if err != nil {
		return nil, "", errors.Internal("read photo file").WithCause(err)
	}
	return data, photo.ContentType, nil
}

// Update edits a photo's title, description, or visibility. Owner or
// admin only; anyone else gets forbidden.
func (s *PhotoService) Update(ctx context.Context, actor *domain.User, photoID string, params UpdateParams) (*domain.Photo, error) {
	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}

	photo, err := s.store.GetPhotoByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if err := access.CanModify(actor, photo); err != nil {
		return nil, err
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, errors.Validation("title cannot be empty")
		}
		photo.Title = title
	}
	if params.Description != nil {
		photo.Description = strings.TrimSpace(*params.Description)
	}
	if params.IsPublic != nil {
		photo.IsPublic = *params.IsPublic
	}

	if err := s.store.UpdatePhotoMeta(ctx, photo); err != nil {
		return nil, err
	}
	return s.store.GetPhotoByID(ctx, photoID)
}

// Delete removes a photo's record and then its file. The file removal
// is best-effort: a leftover file is recoverable noise, a leftover
// record pointing at nothing is not.
func (s *PhotoService) Delete(ctx context.Context, actor *domain.User, photoID string) error {
	photo, err := s.store.GetPhotoByID(ctx, photoID)
	if err != nil {
		return err
	}
	if err := access.CanModify(actor, photo); err != nil {
		return err
	}

	if err := s.store.DeletePhoto(ctx, photoID); err != nil {
		return err
	}
	s.discardBlob(photo.FileKey)

	s.logger.Info("photo deleted",
		"photo_id", photoID,
		"actor_id", actor.ID,
	)
	return nil
}

// Reprocess reruns tagging on a stored photo, replacing its caption and
// tags with fresh results. Owner or admin only.
func (s *PhotoService) Reprocess(ctx context.Context, actor *domain.User, photoID string) (*domain.Photo, error) {
	photo, err := s.store.GetPhotoByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if err := access.CanModify(actor, photo); err != nil {
		return nil, err
	}

	data, err := s.blobs.Get(photo.FileKey)
	if err != nil {
		return nil, errors.Internal("read photo file").WithCause(err)
	}

	s.process(ctx, photo, data)
	return s.store.GetPhotoByID(ctx, photoID)
}
