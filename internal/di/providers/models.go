package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/campuslens/campuslens-server/internal/config"
	"github.com/campuslens/campuslens-server/internal/logger"
	"github.com/campuslens/campuslens-server/internal/tagger"
)

// InferenceCacheHandle wraps the inference cache with shutdown
// capability. Cache is nil when result caching is disabled.
type InferenceCacheHandle struct {
	*tagger.Cache
}

// Shutdown implements do.Shutdownable.
func (h *InferenceCacheHandle) Shutdown() error {
	if h.Cache == nil {
		return nil
	}
	return h.Close()
}

// ProvideInferenceCache provides the on-disk inference result cache.
func ProvideInferenceCache(i do.Injector) (*InferenceCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Models.Enabled || !cfg.Models.CacheResults {
		return &InferenceCacheHandle{Cache: nil}, nil
	}

	cachePath := filepath.Join(cfg.Storage.BasePath, "inference-cache")
	cache, err := tagger.OpenCache(cachePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Inference cache ready", "path", cachePath)

	return &InferenceCacheHandle{Cache: cache}, nil
}

// ProvideAdapter provides the model adapter: the remote inference
// client when models are enabled, otherwise a disabled stub.
func ProvideAdapter(i do.Injector) (tagger.Adapter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Models.Enabled {
		log.Info("Model inference disabled; photos will be stored without captions or tags")
		return tagger.Disabled{}, nil
	}

	log.Info("Model inference enabled",
		"base_url", cfg.Models.BaseURL,
		"timeout", cfg.Models.Timeout,
	)

	return tagger.NewRemote(cfg.Models.BaseURL, cfg.Models.Timeout, log.Logger), nil
}

// ProvidePipeline provides the captioning and tagging pipeline.
func ProvidePipeline(i do.Injector) (*tagger.Pipeline, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	adapter := do.MustInvoke[tagger.Adapter](i)
	cacheHandle := do.MustInvoke[*InferenceCacheHandle](i)

	vocabulary, err := tagger.LoadVocabulary(cfg.Models.VocabularyPath)
	if err != nil {
		return nil, err
	}
	if len(vocabulary) > 0 {
		log.Info("Loaded tag vocabulary", "labels", len(vocabulary), "path", cfg.Models.VocabularyPath)
	}

	return tagger.NewPipeline(adapter, cacheHandle.Cache, vocabulary, cfg.Models.MinConfidence, log.Logger), nil
}
