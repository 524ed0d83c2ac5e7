package repository

import (
	"context"

	"imgvault/internal/model"
)

// ImageRepository defines data access for image records.
// No business logic here — strictly persistence operations.
type ImageRepository interface {
	// Create inserts a new image record and returns the stored row.
	Create(ctx context.Context, img *model.Image) (*model.Image, error)

	// FindByID returns the image with the given id owned by ownerID.
	FindByID(ctx context.Context, id, ownerID string) (*model.Image, error)

	// ListByFolder returns the owner's images filed under folderID, sorted by name.
	ListByFolder(ctx context.Context, ownerID, folderID string) ([]model.Image, error)

	// ListByFolders returns the owner's images filed under any of folderIDs.
	ListByFolders(ctx context.Context, ownerID string, folderIDs []string) ([]model.Image, error)

	// SearchByName returns the owner's images whose name contains term,
	// case-insensitively, sorted by name.
	SearchByName(ctx context.Context, ownerID, term string) ([]model.Image, error)

	// Delete removes one image record for the owner. Deleting a missing
	// row is not an error.
	Delete(ctx context.Context, id, ownerID string) error

	// DeleteByIDs removes the given image records for the owner. Missing
	// ids are ignored so the operation is idempotent.
	DeleteByIDs(ctx context.Context, ownerID string, ids []string) error
}
