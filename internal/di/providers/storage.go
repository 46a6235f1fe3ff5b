package providers

import (
	"github.com/samber/do/v2"

	"github.com/campuslens/campuslens-server/internal/blob"
	"github.com/campuslens/campuslens-server/internal/config"
	"github.com/campuslens/campuslens-server/internal/logger"
)

// BlobStoreHandle wraps the upload blob store.
type BlobStoreHandle struct {
	*blob.Store
}

// ProvideBlobStore provides the on-disk store for uploaded image files.
func ProvideBlobStore(i do.Injector) (*BlobStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := blob.NewStore(cfg.Storage.UploadsPath)
	if err != nil {
		return nil, err
	}

	log.Info("Upload storage ready", "path", cfg.Storage.UploadsPath)

	return &BlobStoreHandle{Store: store}, nil
}
