package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/store"
)

func TestGetOrCreateUserBySubject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, created, err := s.GetOrCreateUserBySubject(ctx, "idp|alice", "alice@example.edu", "Alice")
	if err != nil {
		t.Fatalf("GetOrCreateUserBySubject failed: %v", err)
	}
	if !created {
		t.Error("expected created=true on first sighting")
	}
	if u.Role != domain.RoleUser {
		t.Errorf("new user role = %q, want %q", u.Role, domain.RoleUser)
	}
	if u.ID == "" {
		t.Error("expected generated user ID")
	}

	again, created, err := s.GetOrCreateUserBySubject(ctx, "idp|alice", "alice@example.edu", "Alice")
	if err != nil {
		t.Fatalf("second GetOrCreateUserBySubject failed: %v", err)
	}
	if created {
		t.Error("expected created=false on second sighting")
	}
	if again.ID != u.ID {
		t.Errorf("second sighting returned different user: %q vs %q", again.ID, u.ID)
	}
}

func TestGetUserBySubjectNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserBySubject(context.Background(), "idp|nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "idp|bob")

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Subject != "idp|bob" {
		t.Errorf("subject = %q, want %q", got.Subject, "idp|bob")
	}
	if got.Email != "idp|bob@example.edu" {
		t.Errorf("email = %q, want %q", got.Email, "idp|bob@example.edu")
	}

	_, err = s.GetUserByID(ctx, "user-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "idp|carol")

	if err := s.UpdateUserRole(ctx, u.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole failed: %v", err)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if !got.IsAdmin() {
		t.Errorf("role = %q, want admin", got.Role)
	}

	err = s.UpdateUserRole(ctx, "user-missing", domain.RoleAdmin)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing user, got %v", err)
	}
}
