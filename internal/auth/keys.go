package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aidanwoods.dev/go-paseto"
)

// Ed25519 seed+public key, hex-encoded.
const secretKeyHexLength = 128

// LoadOrGenerateKeypair loads or generates a development identity
// keypair. The secret key is stored in <dataPath>/identity.key as a
// hex-encoded string. Production deployments configure the real
// provider's public key instead and never touch this.
func LoadOrGenerateKeypair(dataPath string) (paseto.V4AsymmetricSecretKey, error) {
	keyPath := filepath.Join(dataPath, "identity.key")

	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))
		if len(keyHex) != secretKeyHexLength {
			return paseto.V4AsymmetricSecretKey{}, fmt.Errorf("invalid identity key length: expected %d hex chars, got %d", secretKeyHexLength, len(keyHex))
		}
		key, err := paseto.NewV4AsymmetricSecretKeyFromHex(keyHex)
		if err != nil {
			return paseto.V4AsymmetricSecretKey{}, fmt.Errorf("invalid identity key: %w", err)
		}
		return key, nil
	}

	key := paseto.NewV4AsymmetricSecretKey()

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return paseto.V4AsymmetricSecretKey{}, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(key.ExportHex()), 0o600); err != nil {
		return paseto.V4AsymmetricSecretKey{}, fmt.Errorf("failed to save identity key: %w", err)
	}

	return key, nil
}
