package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/id"
	"github.com/campuslens/campuslens-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, subject, email, display_name, role, created_at, updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		email       sql.NullString
		displayName sql.NullString
		role        string
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Subject,
		&email,
		&displayName,
		&role,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		u.Email = email.String
	}
	if displayName.Valid {
		u.DisplayName = displayName.String
	}
	u.Role = domain.Role(role)

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// GetUserByID retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserBySubject retrieves a user by the identity provider's subject ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUserBySubject(ctx context.Context, subject string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE subject = ?`, subject)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// createUser inserts a new user row.
// Returns store.ErrAlreadyExists on a duplicate subject.
func (s *Store) createUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, subject, email, display_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Subject,
		nullString(u.Email),
		nullString(u.DisplayName),
		string(u.Role),
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetOrCreateUserBySubject finds a user by subject or creates one with
// role "user". The unique constraint on subject serializes concurrent
// first sightings: on conflict we re-read rather than pre-checking.
func (s *Store) GetOrCreateUserBySubject(ctx context.Context, subject, email, displayName string) (*domain.User, bool, error) {
	existing, err := s.GetUserBySubject(ctx, subject)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, false, fmt.Errorf("generate user id: %w", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:          userID,
		Subject:     subject,
		Email:       email,
		DisplayName: displayName,
		Role:        domain.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.createUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Another request created the user concurrently.
			existing, err := s.GetUserBySubject(ctx, subject)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return u, true, nil
}

// UpdateUserRole sets the user's role. Exposed only to out-of-band
// administrative tooling, never through the API.
func (s *Store) UpdateUserRole(ctx context.Context, userID string, role domain.Role) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), formatTime(time.Now().UTC()), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
