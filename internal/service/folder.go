package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"imgvault/internal/apperr"
	"imgvault/internal/model"
	"imgvault/internal/repository"
	"imgvault/internal/storage"
)

const maxFolderNameLength = 100

// FolderService defines the use cases for the folder tree. Deleting a
// folder cascades over the whole subtree: every descendant folder, every
// image filed anywhere inside it, and each image's externally hosted
// media payload.
type FolderService interface {
	// Create makes a folder under parentID (nil = root) for the owner.
	Create(ctx context.Context, ownerID, name string, parentID *string) (*model.Folder, error)

	// Get returns one folder by id.
	Get(ctx context.Context, ownerID, folderID string) (*model.Folder, error)

	// ListChildren returns the direct children of parentID (nil = root).
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error)

	// Tree returns the owner's full folder forest.
	Tree(ctx context.Context, ownerID string) ([]*model.FolderNode, error)

	// Rename changes a folder's name in place and recomputes the cached
	// path of the folder and of every descendant. It never changes parent
	// pointers.
	Rename(ctx context.Context, ownerID, folderID, newName string) (*model.Folder, error)

	// DeleteSubtree removes the folder, all descendant folders, and all
	// images in the subtree. Media deletions are best-effort: failures are
	// logged and never block record cleanup.
	DeleteSubtree(ctx context.Context, ownerID, folderID string) error
}

type folderService struct {
	folders repository.FolderRepository
	images  repository.ImageRepository
	store   storage.Storage
	logger  *slog.Logger
}

// NewFolderService constructs a new FolderService.
func NewFolderService(folders repository.FolderRepository, images repository.ImageRepository, store storage.Storage, logger *slog.Logger) FolderService {
	return &folderService{folders: folders, images: images, store: store, logger: logger}
}

func (s *folderService) Create(ctx context.Context, ownerID, name string, parentID *string) (*model.Folder, error) {
	name, err := normalizeFolderName(name)
	if err != nil {
		return nil, err
	}

	parentPath := ""
	if parentID != nil {
		parent, err := s.folders.FindByID(ctx, *parentID, ownerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("parent folder not found")
			}
			return nil, fmt.Errorf("find parent folder: %w", err)
		}
		parentPath = parent.Path
	}

	taken, err := s.folders.SiblingExists(ctx, ownerID, parentID, name, "")
	if err != nil {
		return nil, fmt.Errorf("check sibling names: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("a folder with this name already exists here")
	}

	now := time.Now().UTC()
	folder := &model.Folder{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		ParentID:  parentID,
		Path:      joinPath(parentPath, name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := s.folders.Create(ctx, folder)
	if err != nil {
		// SiblingExists races with concurrent creates; the sibling unique
		// index is the authority.
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("a folder with this name already exists here")
		}
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.logger.Info("folder created",
		"folder_id", stored.ID,
		"owner_id", ownerID,
		"path", stored.Path,
	)
	return stored, nil
}

func (s *folderService) Get(ctx context.Context, ownerID, folderID string) (*model.Folder, error) {
	folder, err := s.folders.FindByID(ctx, folderID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("folder not found")
		}
		return nil, fmt.Errorf("find folder: %w", err)
	}
	return folder, nil
}

func (s *folderService) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error) {
	if parentID != nil {
		// Listing under a missing or foreign parent is a NotFound, not an
		// empty list.
		if _, err := s.folders.FindByID(ctx, *parentID, ownerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("folder not found")
			}
			return nil, fmt.Errorf("find folder: %w", err)
		}
	}
	items, err := s.folders.ListChildren(ctx, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return items, nil
}

func (s *folderService) Tree(ctx context.Context, ownerID string) ([]*model.FolderNode, error) {
	folders, err := s.folders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	nodes := make(map[string]*model.FolderNode, len(folders))
	for i := range folders {
		nodes[folders[i].ID] = &model.FolderNode{Folder: folders[i], Children: []*model.FolderNode{}}
	}

	roots := make([]*model.FolderNode, 0)
	for _, f := range folders {
		node := nodes[f.ID]
		if f.ParentID != nil {
			if parent, ok := nodes[*f.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func (s *folderService) Rename(ctx context.Context, ownerID, folderID, newName string) (*model.Folder, error) {
	newName, err := normalizeFolderName(newName)
	if err != nil {
		return nil, err
	}

	folder, err := s.folders.FindByID(ctx, folderID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("folder not found")
		}
		return nil, fmt.Errorf("find folder: %w", err)
	}

	taken, err := s.folders.SiblingExists(ctx, ownerID, folder.ParentID, newName, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("check sibling names: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("a folder with this name already exists here")
	}

	parentPath := ""
	if folder.ParentID != nil {
		parent, err := s.folders.FindByID(ctx, *folder.ParentID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("find parent folder: %w", err)
		}
		parentPath = parent.Path
	}
	newPath := joinPath(parentPath, newName)

	if err := s.folders.UpdateNameAndPath(ctx, folder.ID, ownerID, newName, newPath); err != nil {
		return nil, fmt.Errorf("rename folder: %w", err)
	}

	// The cached path of every descendant embeds this folder's name, so
	// the whole subtree is recomputed level by level.
	if err := s.recomputeDescendantPaths(ctx, ownerID, folder.ID, newPath); err != nil {
		return nil, fmt.Errorf("recompute descendant paths: %w", err)
	}

	folder.Name = newName
	folder.Path = newPath
	folder.UpdatedAt = time.Now().UTC()

	s.logger.Info("folder renamed",
		"folder_id", folder.ID,
		"owner_id", ownerID,
		"path", newPath,
	)
	return folder, nil
}

// recomputeDescendantPaths walks the subtree breadth-first and rewrites
// each descendant's cached path from its parent's fresh path.
func (s *folderService) recomputeDescendantPaths(ctx context.Context, ownerID, rootID, rootPath string) error {
	paths := map[string]string{rootID: rootPath}
	visited := map[string]bool{rootID: true}
	frontier := []string{rootID}

	for len(frontier) > 0 {
		children, err := s.folders.ListByParents(ctx, ownerID, frontier)
		if err != nil {
			return err
		}
		next := make([]string, 0, len(children))
		for _, child := range children {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			parentPath := ""
			if child.ParentID != nil {
				parentPath = paths[*child.ParentID]
			}
			childPath := joinPath(parentPath, child.Name)
			paths[child.ID] = childPath
			if err := s.folders.UpdatePath(ctx, child.ID, childPath); err != nil {
				return err
			}
			next = append(next, child.ID)
		}
		frontier = next
	}
	return nil
}

func (s *folderService) DeleteSubtree(ctx context.Context, ownerID, folderID string) error {
	// Ownership check first: a missing or foreign folder fails with no
	// side effects.
	if _, err := s.folders.FindByID(ctx, folderID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("folder not found")
		}
		return fmt.Errorf("find folder: %w", err)
	}

	// Collect the complete descendant set before any mutation; a failure
	// here aborts the whole operation.
	folderIDs, err := s.collectSubtree(ctx, ownerID, folderID)
	if err != nil {
		return fmt.Errorf("collect subtree: %w", err)
	}

	images, err := s.images.ListByFolders(ctx, ownerID, folderIDs)
	if err != nil {
		return fmt.Errorf("collect images: %w", err)
	}

	// Best-effort media purge. Every deletion is attempted; failures are
	// logged and must not hold up record cleanup, since an orphaned
	// object is recoverable but a dangling record is user-visible.
	s.purgeMedia(ctx, images)

	imageIDs := make([]string, len(images))
	for i, img := range images {
		imageIDs[i] = img.ID
	}
	if err := s.images.DeleteByIDs(ctx, ownerID, imageIDs); err != nil {
		return fmt.Errorf("delete image records: %w", err)
	}
	if err := s.folders.DeleteByIDs(ctx, ownerID, folderIDs); err != nil {
		return fmt.Errorf("delete folder records: %w", err)
	}

	s.logger.Info("folder subtree deleted",
		"folder_id", folderID,
		"owner_id", ownerID,
		"folders_removed", len(folderIDs),
		"images_removed", len(imageIDs),
	)
	return nil
}

// collectSubtree returns the ids of the target folder and every
// descendant, walking the parent-pointer tree one level per query. The
// visited set makes the walk terminate even on a corrupted cyclic tree.
func (s *folderService) collectSubtree(ctx context.Context, ownerID, rootID string) ([]string, error) {
	visited := map[string]bool{rootID: true}
	all := []string{rootID}
	frontier := []string{rootID}

	for len(frontier) > 0 {
		children, err := s.folders.ListByParents(ctx, ownerID, frontier)
		if err != nil {
			return nil, err
		}
		next := make([]string, 0, len(children))
		for _, child := range children {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			all = append(all, child.ID)
			next = append(next, child.ID)
		}
		frontier = next
	}
	return all, nil
}

// mediaPurgeConcurrency caps the number of in-flight media deletions so a
// large subtree does not flood the object store with goroutines.
const mediaPurgeConcurrency = 8

// purgeMedia deletes the stored object of each image concurrently, bounded
// by mediaPurgeConcurrency, and waits for every attempt to finish.
// Failures are logged, never returned.
func (s *folderService) purgeMedia(ctx context.Context, images []model.Image) {
	sem := make(chan struct{}, mediaPurgeConcurrency)
	var wg sync.WaitGroup
	for _, img := range images {
		wg.Add(1)
		sem <- struct{}{}
		go func(img model.Image) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := s.store.Delete(ctx, img.StorageKey); err != nil {
				s.logger.Error("media delete failed, object orphaned",
					"image_id", img.ID,
					"storage_key", img.StorageKey,
					"error", err,
				)
			}
		}(img)
	}
	wg.Wait()
}

func normalizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("folder name is required")
	}
	if len(name) > maxFolderNameLength {
		return "", apperr.Validation(fmt.Sprintf("folder name cannot exceed %d characters", maxFolderNameLength))
	}
	return name, nil
}

func joinPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}
