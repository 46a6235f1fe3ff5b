package providers

import (
	"github.com/samber/do/v2"

	"github.com/campuslens/campuslens-server/internal/access"
	"github.com/campuslens/campuslens-server/internal/auth"
	"github.com/campuslens/campuslens-server/internal/config"
	"github.com/campuslens/campuslens-server/internal/logger"
)

// ProvideVerifier provides the identity assertion verifier.
// Production requires the provider's public key in config; development
// falls back to a locally generated keypair so devtoken can mint
// assertions against the same key.
func ProvideVerifier(i do.Injector) (*auth.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	publicKeyHex := cfg.Auth.IdentityPublicKey
	if publicKeyHex == "" {
		secret, err := auth.LoadOrGenerateKeypair(cfg.Storage.BasePath)
		if err != nil {
			return nil, err
		}
		publicKeyHex = secret.Public().ExportHex()
		log.Info("Using local development identity keypair",
			"issuer", cfg.Auth.Issuer,
			"audience", cfg.Auth.Audience,
		)
	}

	return auth.NewVerifier(publicKeyHex, cfg.Auth.Issuer, cfg.Auth.Audience)
}

// ProvideGate provides the access control gate.
func ProvideGate(i do.Injector) (*access.Gate, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	verifier := do.MustInvoke[*auth.Verifier](i)
	log := do.MustInvoke[*logger.Logger](i)

	return access.NewGate(storeHandle.Store, verifier, log.Logger), nil
}
