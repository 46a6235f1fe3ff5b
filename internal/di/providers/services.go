package providers

import (
	"github.com/samber/do/v2"

	"github.com/campuslens/campuslens-server/internal/config"
	"github.com/campuslens/campuslens-server/internal/logger"
	"github.com/campuslens/campuslens-server/internal/service"
	"github.com/campuslens/campuslens-server/internal/tagger"
	"github.com/campuslens/campuslens-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvidePhotoService provides the photo ingestion and management service.
func ProvidePhotoService(i do.Injector) (*service.PhotoService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobHandle := do.MustInvoke[*BlobStoreHandle](i)
	pipeline := do.MustInvoke[*tagger.Pipeline](i)
	validator := do.MustInvoke[*validation.Validator](i)

	return service.NewPhotoService(storeHandle.Store, blobHandle.Store, pipeline, validator, cfg.Upload.MaxBytes, log.Logger), nil
}

// ProvideGalleryService provides the listing and visibility query service.
func ProvideGalleryService(i do.Injector) (*service.GalleryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGalleryService(storeHandle.Store, log.Logger), nil
}

// ProvideTagService provides the tag statistics service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideAnalyticsService provides the usage analytics service.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalyticsService(storeHandle.Store, log.Logger), nil
}
