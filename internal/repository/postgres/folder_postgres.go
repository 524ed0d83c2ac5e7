package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"imgvault/internal/model"
	"imgvault/internal/repository"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FolderPostgres struct {
	db *sql.DB
}

// NewFolderPostgres creates a new FolderPostgres repository.
func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

const folderColumns = `id, owner_id, name, parent_id, path, created_at, updated_at`

func scanFolder(s interface{ Scan(...any) error }) (*model.Folder, error) {
	var f model.Folder
	var parent sql.NullString
	if err := s.Scan(&f.ID, &f.OwnerID, &f.Name, &parent, &f.Path, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		f.ParentID = &parent.String
	}
	return &f, nil
}

// Create inserts a new folder row and returns the stored record.
func (r *FolderPostgres) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `
		INSERT INTO folders (id, owner_id, name, parent_id, path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + folderColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.OwnerID,
		f.Name,
		nullable(f.ParentID),
		f.Path,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return scanFolder(row)
}

// FindByID fetches a single folder by id, scoped to the owner.
func (r *FolderPostgres) FindByID(ctx context.Context, id, ownerID string) (*model.Folder, error) {
	const q = `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE id = $1 AND owner_id = $2
	`
	return scanFolder(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// ListChildren returns the owner's folders directly under parentID (nil = root).
func (r *FolderPostgres) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == nil {
		const q = `
			SELECT ` + folderColumns + `
			FROM folders
			WHERE owner_id = $1 AND parent_id IS NULL
			ORDER BY name
		`
		rows, err = r.db.QueryContext(ctx, q, ownerID)
	} else {
		const q = `
			SELECT ` + folderColumns + `
			FROM folders
			WHERE owner_id = $1 AND parent_id = $2
			ORDER BY name
		`
		rows, err = r.db.QueryContext(ctx, q, ownerID, *parentID)
	}
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}

// ListByOwner returns all of the owner's folders ordered by path.
func (r *FolderPostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.Folder, error) {
	const q = `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE owner_id = $1
		ORDER BY path
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}

// ListByParents returns the owner's folders whose parent is any of parentIDs.
func (r *FolderPostgres) ListByParents(ctx context.Context, ownerID string, parentIDs []string) ([]model.Folder, error) {
	if len(parentIDs) == 0 {
		return []model.Folder{}, nil
	}
	q := fmt.Sprintf(`
		SELECT `+folderColumns+`
		FROM folders
		WHERE owner_id = $1 AND parent_id IN (%s)
	`, placeholders(2, len(parentIDs)))
	rows, err := r.db.QueryContext(ctx, q, idArgs(ownerID, parentIDs)...)
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}

// SiblingExists reports whether name is already taken under parentID for the
// owner. The id <> clause is only added when excludeID is set: id is a uuid
// column, so an empty string must never reach the bind.
func (r *FolderPostgres) SiblingExists(ctx context.Context, ownerID string, parentID *string, name, excludeID string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM folders WHERE owner_id = $1 AND `
	args := []any{ownerID}

	if parentID == nil {
		q += `parent_id IS NULL`
	} else {
		args = append(args, *parentID)
		q += fmt.Sprintf(`parent_id = $%d`, len(args))
	}

	args = append(args, name)
	q += fmt.Sprintf(` AND name = $%d`, len(args))

	if excludeID != "" {
		args = append(args, excludeID)
		q += fmt.Sprintf(` AND id <> $%d`, len(args))
	}
	q += `)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateNameAndPath renames a folder and refreshes its cached path.
func (r *FolderPostgres) UpdateNameAndPath(ctx context.Context, id, ownerID, name, path string) error {
	const q = `
		UPDATE folders
		SET name = $1, path = $2, updated_at = now()
		WHERE id = $3 AND owner_id = $4
	`
	_, err := r.db.ExecContext(ctx, q, name, path, id, ownerID)
	return err
}

// UpdatePath refreshes only the cached path of a folder.
func (r *FolderPostgres) UpdatePath(ctx context.Context, id, path string) error {
	const q = `
		UPDATE folders
		SET path = $1, updated_at = now()
		WHERE id = $2
	`
	_, err := r.db.ExecContext(ctx, q, path, id)
	return err
}

// DeleteByIDs removes the given folder rows for the owner. It does not
// return an error if some rows are already gone.
func (r *FolderPostgres) DeleteByIDs(ctx context.Context, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := fmt.Sprintf(`DELETE FROM folders WHERE owner_id = $1 AND id IN (%s)`, placeholders(2, len(ids)))
	_, err := r.db.ExecContext(ctx, q, idArgs(ownerID, ids)...)
	return err
}

func collectFolders(rows *sql.Rows) ([]model.Folder, error) {
	defer rows.Close()
	items := make([]model.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
