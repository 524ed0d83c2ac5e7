package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"imgvault/internal/model"
	"imgvault/internal/repository"
)

// ImagePostgres is a PostgreSQL implementation of repository.ImageRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ImagePostgres struct {
	db *sql.DB
}

// NewImagePostgres creates a new ImagePostgres repository.
func NewImagePostgres(db *sql.DB) *ImagePostgres {
	return &ImagePostgres{db: db}
}

var _ repository.ImageRepository = (*ImagePostgres)(nil)

const imageColumns = `id, owner_id, folder_id, name, size, content_type, media_url, storage_key, created_at`

func scanImage(s interface{ Scan(...any) error }) (*model.Image, error) {
	var img model.Image
	if err := s.Scan(
		&img.ID,
		&img.OwnerID,
		&img.FolderID,
		&img.Name,
		&img.Size,
		&img.ContentType,
		&img.MediaURL,
		&img.StorageKey,
		&img.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &img, nil
}

// Create inserts a new image row and returns the stored record.
func (r *ImagePostgres) Create(ctx context.Context, img *model.Image) (*model.Image, error) {
	const q = `
		INSERT INTO images (id, owner_id, folder_id, name, size, content_type, media_url, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + imageColumns
	row := r.db.QueryRowContext(ctx, q,
		img.ID,
		img.OwnerID,
		img.FolderID,
		img.Name,
		img.Size,
		img.ContentType,
		img.MediaURL,
		img.StorageKey,
		img.CreatedAt,
	)
	return scanImage(row)
}

// FindByID fetches a single image by id, scoped to the owner.
func (r *ImagePostgres) FindByID(ctx context.Context, id, ownerID string) (*model.Image, error) {
	const q = `
		SELECT ` + imageColumns + `
		FROM images
		WHERE id = $1 AND owner_id = $2
	`
	return scanImage(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// ListByFolder returns the owner's images in a single folder.
func (r *ImagePostgres) ListByFolder(ctx context.Context, ownerID, folderID string) ([]model.Image, error) {
	const q = `
		SELECT ` + imageColumns + `
		FROM images
		WHERE owner_id = $1 AND folder_id = $2
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, folderID)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

// ListByFolders returns the owner's images in any of the given folders.
func (r *ImagePostgres) ListByFolders(ctx context.Context, ownerID string, folderIDs []string) ([]model.Image, error) {
	if len(folderIDs) == 0 {
		return []model.Image{}, nil
	}
	q := fmt.Sprintf(`
		SELECT `+imageColumns+`
		FROM images
		WHERE owner_id = $1 AND folder_id IN (%s)
	`, placeholders(2, len(folderIDs)))
	rows, err := r.db.QueryContext(ctx, q, idArgs(ownerID, folderIDs)...)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

// SearchByName returns the owner's images whose name contains term, case-insensitively.
func (r *ImagePostgres) SearchByName(ctx context.Context, ownerID, term string) ([]model.Image, error) {
	const q = `
		SELECT ` + imageColumns + `
		FROM images
		WHERE owner_id = $1 AND name ILIKE $2
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, "%"+escapeLike(term)+"%")
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

// Delete removes one image row for the owner. It does not return an error
// if the row does not exist.
func (r *ImagePostgres) Delete(ctx context.Context, id, ownerID string) error {
	const q = `DELETE FROM images WHERE id = $1 AND owner_id = $2`
	_, err := r.db.ExecContext(ctx, q, id, ownerID)
	return err
}

// DeleteByIDs removes the given image rows for the owner. Missing rows are ignored.
func (r *ImagePostgres) DeleteByIDs(ctx context.Context, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := fmt.Sprintf(`DELETE FROM images WHERE owner_id = $1 AND id IN (%s)`, placeholders(2, len(ids)))
	_, err := r.db.ExecContext(ctx, q, idArgs(ownerID, ids)...)
	return err
}

func collectImages(rows *sql.Rows) ([]model.Image, error) {
	defer rows.Close()
	items := make([]model.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// escapeLike neutralizes LIKE metacharacters in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
