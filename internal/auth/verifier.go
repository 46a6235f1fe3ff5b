// Package auth verifies identity assertions issued by the campus
// identity provider. The server holds only the provider's public key;
// it never mints user-facing credentials itself.
package auth

import (
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/campuslens/campuslens-server/internal/errors"
)

// Identity is the verified subject carried by an assertion.
type Identity struct {
	Subject     string `json:"sub"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
}

// Verifier checks PASETO v4.public identity assertions.
type Verifier struct {
	publicKey paseto.V4AsymmetricPublicKey
	issuer    string
	audience  string
}

// NewVerifier creates a Verifier from the provider's hex-encoded
// Ed25519 public key.
func NewVerifier(publicKeyHex, issuer, audience string) (*Verifier, error) {
	key, err := paseto.NewV4AsymmetricPublicKeyFromHex(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid identity public key: %w", err)
	}
	return &Verifier{
		publicKey: key,
		issuer:    issuer,
		audience:  audience,
	}, nil
}

// Verify parses and validates an assertion, returning the identity it
// asserts. Any failure, from a bad signature to an expired token,
// yields an unauthorized error.
func (v *Verifier) Verify(assertion string) (*Identity, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.IssuedBy(v.issuer))
	parser.AddRule(paseto.ForAudience(v.audience))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Public(v.publicKey, assertion, nil)
	if err != nil {
		return nil, errors.Unauthorized("invalid identity assertion").WithCause(err)
	}

	var identity Identity
	if err := json.Unmarshal(token.ClaimsJSON(), &identity); err != nil {
		return nil, errors.Unauthorized("malformed assertion claims").WithCause(err)
	}
	if identity.Subject == "" {
		return nil, errors.Unauthorized("assertion missing subject")
	}

	return &identity, nil
}
