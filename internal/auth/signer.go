package auth

import (
	"time"

	"aidanwoods.dev/go-paseto"
)

// Signer mints identity assertions. Only development tooling uses this;
// in production the campus identity provider signs assertions and the
// server never sees the secret key.
type Signer struct {
	secretKey paseto.V4AsymmetricSecretKey
	issuer    string
	audience  string
}

// NewSigner creates a Signer with the given secret key.
func NewSigner(secretKey paseto.V4AsymmetricSecretKey, issuer, audience string) *Signer {
	return &Signer{
		secretKey: secretKey,
		issuer:    issuer,
		audience:  audience,
	}
}

// Sign creates a signed assertion for the identity, valid for ttl.
func (s *Signer) Sign(identity Identity, ttl time.Duration) string {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(s.issuer)
	token.SetAudience(s.audience)
	token.SetSubject(identity.Subject)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))

	if identity.Email != "" {
		//nolint:errcheck // Token.Set only errors on invalid types, which we control
		_ = token.Set("email", identity.Email)
	}
	if identity.DisplayName != "" {
		//nolint:errcheck // Token.Set only errors on invalid types, which we control
		_ = token.Set("name", identity.DisplayName)
	}

	return token.V4Sign(s.secretKey, nil)
}
