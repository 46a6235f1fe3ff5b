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

const tagColumns = `id, name, created_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	var createdAt string

	err := scanner.Scan(&t.ID, &t.Name, &createdAt)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) getTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindOrCreateTag finds a tag by canonical name or creates it. The unique
// constraint on name serializes concurrent creates: on conflict we re-read
// rather than pre-checking.
func (s *Store) FindOrCreateTag(ctx context.Context, name string) (*domain.Tag, bool, error) {
	existing, err := s.getTagByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}

	t := &domain.Tag{
		ID:        tagID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, formatTime(t.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			// Another request created the tag concurrently.
			existing, err := s.getTagByName(ctx, name)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert tag: %w", err)
	}

	return t, true, nil
}

// SetPhotoTags replaces the photo's tag associations in one transaction.
// The primary key on (photo_id, tag_id) guarantees at most one row per pair.
func (s *Store) SetPhotoTags(ctx context.Context, photoID string, tags []store.PhotoTagParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM photo_tags WHERE photo_id = ?`, photoID); err != nil {
		return fmt.Errorf("clear photo tags: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, t := range tags {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO photo_tags (photo_id, tag_id, confidence, matched, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (photo_id, tag_id) DO UPDATE SET
				confidence = excluded.confidence,
				matched = excluded.matched`,
			photoID, t.TagID, t.Confidence, t.Matched, now)
		if err != nil {
			return fmt.Errorf("insert photo tag: %w", err)
		}
	}

	return tx.Commit()
}

// GetPhotoTags returns the photo's tag details ordered by confidence
// descending.
func (s *Store) GetPhotoTags(ctx context.Context, photoID string) ([]domain.TagDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name, pt.confidence, pt.matched
		FROM photo_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.photo_id = ?
		ORDER BY pt.confidence DESC`, photoID)
	if err != nil {
		return nil, fmt.Errorf("query photo tags: %w", err)
	}
	defer rows.Close()

	details := []domain.TagDetail{}
	for rows.Next() {
		var d domain.TagDetail
		if err := rows.Scan(&d.Name, &d.Confidence, &d.Matched); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
