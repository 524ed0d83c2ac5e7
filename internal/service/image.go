package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"imgvault/internal/apperr"
	"imgvault/internal/config"
	"imgvault/internal/model"
	"imgvault/internal/repository"
	"imgvault/internal/storage"
)

const maxImageNameLength = 100

// UploadInput carries a single image upload. Reader streams the binary
// payload; Size must be its exact length.
type UploadInput struct {
	Reader      io.Reader
	Name        string
	FolderID    string
	ContentType string
	Size        int64
}

// ImageService defines the use cases for individual images. Bulk removal
// happens only through FolderService.DeleteSubtree.
type ImageService interface {
	// Upload stores the payload in object storage, then creates the image
	// record. The stored object is rolled back if the record insert fails.
	Upload(ctx context.Context, ownerID string, in UploadInput) (*model.Image, error)

	// Get returns one image by id.
	Get(ctx context.Context, ownerID, imageID string) (*model.Image, error)

	// ListByFolder returns the owner's images filed under folderID.
	ListByFolder(ctx context.Context, ownerID, folderID string) ([]model.Image, error)

	// Search returns the owner's images whose name contains term.
	Search(ctx context.Context, ownerID, term string) ([]model.Image, error)

	// Delete removes one image record and, best-effort, its stored media.
	Delete(ctx context.Context, ownerID, imageID string) error
}

type imageService struct {
	images  repository.ImageRepository
	folders repository.FolderRepository
	store   storage.Storage
	upload  config.UploadConfig
	logger  *slog.Logger
}

// NewImageService constructs a new ImageService.
func NewImageService(images repository.ImageRepository, folders repository.FolderRepository, store storage.Storage, upload config.UploadConfig, logger *slog.Logger) ImageService {
	return &imageService{images: images, folders: folders, store: store, upload: upload, logger: logger}
}

func (s *imageService) Upload(ctx context.Context, ownerID string, in UploadInput) (*model.Image, error) {
	if in.Reader == nil {
		return nil, apperr.Validation("image file is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("image name is required")
	}
	if len(name) > maxImageNameLength {
		return nil, apperr.Validation(fmt.Sprintf("image name cannot exceed %d characters", maxImageNameLength))
	}
	if in.FolderID == "" {
		return nil, apperr.Validation("folder is required")
	}
	if s.upload.MaxSizeBytes > 0 && in.Size > s.upload.MaxSizeBytes {
		return nil, apperr.Validation("image exceeds the maximum allowed size")
	}
	if !s.contentTypeAllowed(in.ContentType) {
		return nil, apperr.Validation("unsupported image type")
	}

	// Every image lives in exactly one folder owned by the uploader.
	if _, err := s.folders.FindByID(ctx, in.FolderID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("folder not found")
		}
		return nil, fmt.Errorf("find folder: %w", err)
	}

	key := filepath.ToSlash(filepath.Join("images", ownerID, uuid.New().String()+extensionFor(name, in.ContentType)))

	// A storage failure is fatal for uploads: without a media reference
	// the record cannot exist.
	objInfo, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-name": name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upload to storage: %v", apperr.ErrDependency, err)
	}

	img := &model.Image{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		FolderID:    in.FolderID,
		Name:        name,
		Size:        objInfo.Size,
		ContentType: in.ContentType,
		MediaURL:    s.store.PublicURL(objInfo.Key),
		StorageKey:  objInfo.Key,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.images.Create(ctx, img)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.logger.Info("image uploaded",
		"image_id", stored.ID,
		"owner_id", ownerID,
		"folder_id", stored.FolderID,
		"size", stored.Size,
	)
	return stored, nil
}

func (s *imageService) Get(ctx context.Context, ownerID, imageID string) (*model.Image, error) {
	img, err := s.images.FindByID(ctx, imageID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("image not found")
		}
		return nil, fmt.Errorf("find image: %w", err)
	}
	return img, nil
}

func (s *imageService) ListByFolder(ctx context.Context, ownerID, folderID string) ([]model.Image, error) {
	if folderID == "" {
		return nil, apperr.Validation("folder is required")
	}
	items, err := s.images.ListByFolder(ctx, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return items, nil
}

func (s *imageService) Search(ctx context.Context, ownerID, term string) ([]model.Image, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperr.Validation("search term is required")
	}
	items, err := s.images.SearchByName(ctx, ownerID, term)
	if err != nil {
		return nil, fmt.Errorf("search images: %w", err)
	}
	return items, nil
}

func (s *imageService) Delete(ctx context.Context, ownerID, imageID string) error {
	img, err := s.images.FindByID(ctx, imageID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("image not found")
		}
		return fmt.Errorf("find image: %w", err)
	}

	// Same contract as subtree deletion: the record must go even if the
	// media host is unavailable.
	if err := s.store.Delete(ctx, img.StorageKey); err != nil {
		s.logger.Error("media delete failed, object orphaned",
			"image_id", img.ID,
			"storage_key", img.StorageKey,
			"error", err,
		)
	}
	if err := s.images.Delete(ctx, imageID, ownerID); err != nil {
		return fmt.Errorf("delete image record: %w", err)
	}

	s.logger.Info("image deleted", "image_id", imageID, "owner_id", ownerID)
	return nil
}

func (s *imageService) contentTypeAllowed(ct string) bool {
	if len(s.upload.AllowedContentTypes) == 0 {
		return strings.HasPrefix(ct, "image/")
	}
	for _, allowed := range s.upload.AllowedContentTypes {
		if strings.EqualFold(ct, allowed) {
			return true
		}
	}
	return false
}

func extensionFor(name, contentType string) string {
	if ext := filepath.Ext(name); ext != "" {
		return ext
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
