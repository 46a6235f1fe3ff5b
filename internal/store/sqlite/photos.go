package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/store"
)

// photoColumns is the ordered list of columns selected in photo queries.
// Must match the scan order in scanPhoto.
const photoColumns = `id, owner_id, file_key, title, description, caption,
	is_public, state, content_type, size_bytes, width, height, blur_hash,
	created_at, updated_at`

// scanPhoto scans a sql.Row (or sql.Rows via its Scan method) into a domain.Photo.
// Tags are left nil; the caller attaches them.
func scanPhoto(scanner interface{ Scan(dest ...any) error }) (*domain.Photo, error) {
	var p domain.Photo

	var (
		description sql.NullString
		caption     sql.NullString
		isPublic    int
		state       string
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&p.ID,
		&p.OwnerID,
		&p.FileKey,
		&p.Title,
		&description,
		&caption,
		&isPublic,
		&state,
		&p.ContentType,
		&p.SizeBytes,
		&p.Width,
		&p.Height,
		&p.BlurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = description.String
	}
	if caption.Valid {
		c := caption.String
		p.Caption = &c
	}
	p.IsPublic = isPublic != 0
	p.State = domain.PhotoState(state)

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePhoto inserts a new photo row.
func (s *Store) CreatePhoto(ctx context.Context, p *domain.Photo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (id, owner_id, file_key, title, description, caption,
			is_public, state, content_type, size_bytes, width, height, blur_hash,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OwnerID,
		p.FileKey,
		p.Title,
		nullString(p.Description),
		nullableString(p.Caption),
		boolToInt(p.IsPublic),
		string(p.State),
		p.ContentType,
		p.SizeBytes,
		p.Width,
		p.Height,
		p.BlurHash,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

// GetPhotoByID retrieves a photo by ID with its tag details attached.
// Returns store.ErrNotFound if the photo does not exist.
func (s *Store) GetPhotoByID(ctx context.Context, photoID string) (*domain.Photo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = ?`, photoID)

	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Tags, err = s.GetPhotoTags(ctx, photoID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePhotoMeta persists the user-editable fields: title, description,
// and the is_public flag.
func (s *Store) UpdatePhotoMeta(ctx context.Context, p *domain.Photo) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE photos
		SET title = ?, description = ?, is_public = ?, updated_at = ?
		WHERE id = ?`,
		p.Title,
		nullString(p.Description),
		boolToInt(p.IsPublic),
		formatTime(time.Now().UTC()),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
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

// SetPhotoProcessed records the outcome of a tagging run.
func (s *Store) SetPhotoProcessed(ctx context.Context, photoID string, caption *string, state domain.PhotoState) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE photos SET caption = ?, state = ?, updated_at = ? WHERE id = ?`,
		nullableString(caption),
		string(state),
		formatTime(time.Now().UTC()),
		photoID,
	)
	if err != nil {
		return fmt.Errorf("update photo state: %w", err)
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

// DeletePhoto removes the photo row. Association rows cascade via the
// photo_tags foreign key; tag rows are untouched.
func (s *Store) DeletePhoto(ctx context.Context, photoID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, photoID)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
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

// ListPhotos returns photos matching the query with tags attached.
// Filters compose with AND; ordering ties on identical timestamps break
// by insertion order (rowid).
func (s *Store) ListPhotos(ctx context.Context, q store.PhotoQuery) ([]*domain.Photo, error) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(`SELECT ` + photoColumnsQualified + ` FROM photos p`)
	if q.Tag != "" {
		// (photo, tag) pairs are unique, so a single-tag join cannot
		// duplicate photos.
		sb.WriteString(` JOIN photo_tags pt ON pt.photo_id = p.id
			JOIN tags t ON t.id = pt.tag_id`)
	}
	sb.WriteString(` WHERE 1=1`)

	if q.OwnerID != "" {
		sb.WriteString(` AND p.owner_id = ?`)
		args = append(args, q.OwnerID)
	}
	if q.PublicOnly {
		sb.WriteString(` AND p.is_public = 1`)
	}
	if q.Tag != "" {
		sb.WriteString(` AND t.name = ?`)
		args = append(args, q.Tag)
	}
	if q.Search != "" {
		sb.WriteString(` AND (instr(lower(p.title), ?) > 0
			OR instr(lower(coalesce(p.description, '')), ?) > 0
			OR instr(lower(coalesce(p.caption, '')), ?) > 0)`)
		args = append(args, q.Search, q.Search, q.Search)
	}

	switch q.Sort {
	case store.SortOldest:
		sb.WriteString(` ORDER BY p.created_at ASC, p.rowid ASC`)
	case store.SortTitle:
		sb.WriteString(` ORDER BY lower(p.title) ASC, p.rowid ASC`)
	default:
		sb.WriteString(` ORDER BY p.created_at DESC, p.rowid ASC`)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	sb.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, limit, max(q.Skip, 0))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var photos []*domain.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if photos == nil {
		return []*domain.Photo{}, nil
	}

	if err := s.attachTags(ctx, photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// photoColumnsQualified is photoColumns with the "p." alias for joins.
var photoColumnsQualified = qualifyColumns(photoColumns, "p")

// qualifyColumns prefixes every column in a comma-separated list with
// the table alias, regardless of how the list is wrapped across lines.
func qualifyColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, col := range parts {
		parts[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(parts, ", ")
}

// attachTags loads tag details for a batch of photos in one query.
func (s *Store) attachTags(ctx context.Context, photos []*domain.Photo) error {
	ids := make([]any, len(photos))
	placeholders := make([]string, len(photos))
	byID := make(map[string]*domain.Photo, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
		placeholders[i] = "?"
		byID[p.ID] = p
		p.Tags = []domain.TagDetail{}
	}

	query := `SELECT pt.photo_id, t.name, pt.confidence, pt.matched
		FROM photo_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.photo_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY pt.confidence DESC`

	rows, err := s.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("query photo tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			photoID string
			detail  domain.TagDetail
		)
		if err := rows.Scan(&photoID, &detail.Name, &detail.Confidence, &detail.Matched); err != nil {
			return err
		}
		if p, ok := byID[photoID]; ok {
			p.Tags = append(p.Tags, detail)
		}
	}
	return rows.Err()
}
