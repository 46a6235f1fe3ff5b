// Package access is the authorization gate: it turns bearer assertions
// into principals and answers who may see or modify what.
package access

import (
	"context"
	"log/slog"

	"github.com/campuslens/campuslens-server/internal/auth"
	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/errors"
	"github.com/campuslens/campuslens-server/internal/store"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// principalKey is the context key for the authenticated user.
const principalKey ctxKey = "principal"

// Gate authenticates assertions and enforces role checks.
type Gate struct {
	store    store.Store
	verifier *auth.Verifier
	logger   *slog.Logger
}

// NewGate creates a Gate.
func NewGate(st store.Store, verifier *auth.Verifier, logger *slog.Logger) *Gate {
	return &Gate{store: st, verifier: verifier, logger: logger}
}

// Authenticate verifies a bearer assertion and resolves it to a user,
// creating the account on first sight of an unseen subject.
func (g *Gate) Authenticate(ctx context.Context, assertion string) (*domain.User, error) {
	identity, err := g.verifier.Verify(assertion)
	if err != nil {
		return nil, err
	}

	user, created, err := g.store.GetOrCreateUserBySubject(ctx, identity.Subject, identity.Email, identity.DisplayName)
	if err != nil {
		return nil, errors.Internal("resolve user").WithCause(err)
	}
	if created {
		g.logger.Info("provisioned user on first sighting",
			"user_id", user.ID,
			"subject", user.Subject,
		)
	}
	return user, nil
}

// WithPrincipal stores the authenticated user in the context.
func WithPrincipal(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

// PrincipalFrom returns the authenticated user from the context, or nil
// for anonymous requests.
func PrincipalFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(principalKey).(*domain.User)
	return user
}

// RequirePrincipal returns the authenticated user or an unauthorized
// error for anonymous requests.
func RequirePrincipal(ctx context.Context) (*domain.User, error) {
	user := PrincipalFrom(ctx)
	if user == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	return user, nil
}

// RequireAdmin returns the authenticated user if they hold the admin
// role.
func RequireAdmin(ctx context.Context) (*domain.User, error) {
	user, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, errors.Forbidden("admin access required")
	}
	return user, nil
}

// CanView reports whether the user may see the photo: its owner, any
// admin, or anyone when the photo is public.
func CanView(user *domain.User, photo *domain.Photo) bool {
	if photo.IsPublic {
		return true
	}
	if user == nil {
		return false
	}
	return photo.OwnedBy(user.ID) || user.IsAdmin()
}

// CanModify returns nil when the user may modify or delete the photo:
// its owner or any admin.
func CanModify(user *domain.User, photo *domain.Photo) error {
	if user == nil {
		return errors.Unauthorized("authentication required")
	}
	if photo.OwnedBy(user.ID) || user.IsAdmin() {
		return nil
	}
	return errors.Forbidden("not the photo owner")
}
