package repository

import (
	"context"

	"imgvault/internal/model"
)

// FolderRepository defines data access for folders using SQL queries only.
// The subtree walk is expressed as repeated ListByParents calls (one query
// per tree level); the repository itself knows nothing about trees.
type FolderRepository interface {
	// Create inserts a new folder record and returns the stored row.
	Create(ctx context.Context, f *model.Folder) (*model.Folder, error)

	// FindByID returns the folder with the given id owned by ownerID.
	FindByID(ctx context.Context, id, ownerID string) (*model.Folder, error)

	// ListChildren returns the direct children of parentID (nil = root
	// folders) for the owner, sorted by name.
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error)

	// ListByOwner returns every folder of the owner, sorted by path.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Folder, error)

	// ListByParents returns all folders whose parent is any of parentIDs,
	// for the owner. Used to advance the subtree walk one level.
	ListByParents(ctx context.Context, ownerID string, parentIDs []string) ([]model.Folder, error)

	// SiblingExists reports whether the owner already has a folder named
	// name under parentID, excluding excludeID (empty to exclude nothing).
	SiblingExists(ctx context.Context, ownerID string, parentID *string, name, excludeID string) (bool, error)

	// UpdateNameAndPath renames a folder in place and refreshes its cached path.
	UpdateNameAndPath(ctx context.Context, id, ownerID, name, path string) error

	// UpdatePath refreshes only the cached path of a folder.
	UpdatePath(ctx context.Context, id, path string) error

	// DeleteByIDs removes the given folder records for the owner. Missing
	// ids are ignored so the operation is idempotent.
	DeleteByIDs(ctx context.Context, ownerID string, ids []string) error
}
