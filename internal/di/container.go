// Package di provides dependency injection configuration for the CampusLens server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/campuslens/campuslens-server/internal/access"
	"github.com/campuslens/campuslens-server/internal/auth"
	"github.com/campuslens/campuslens-server/internal/config"
	"github.com/campuslens/campuslens-server/internal/di/providers"
	"github.com/campuslens/campuslens-server/internal/logger"
	"github.com/campuslens/campuslens-server/internal/service"
	"github.com/campuslens/campuslens-server/internal/tagger"
	"github.com/campuslens/campuslens-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideVerifier)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBlobStore)

	// Inference layer
	do.Provide(injector, providers.ProvideInferenceCache)
	do.Provide(injector, providers.ProvideAdapter)
	do.Provide(injector, providers.ProvidePipeline)

	// Access control
	do.Provide(injector, providers.ProvideGate)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvidePhotoService)
	do.Provide(injector, providers.ProvideGalleryService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideAnalyticsService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*auth.Verifier](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.BlobStoreHandle](injector)
	_ = do.MustInvoke[*providers.InferenceCacheHandle](injector)
	_ = do.MustInvoke[*tagger.Pipeline](injector)
	_ = do.MustInvoke[*access.Gate](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.PhotoService](injector)
	_ = do.MustInvoke[*service.GalleryService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.AnalyticsService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
