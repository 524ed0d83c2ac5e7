package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"imgvault/internal/apperr"
	"imgvault/internal/model"
	repoMocks "imgvault/internal/repository/mocks"
	storeMocks "imgvault/internal/storage/mocks"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOwner = "owner-1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFolderFixture() (*repoMocks.MockFolderRepository, *repoMocks.MockImageRepository, *storeMocks.MockStorage, FolderService) {
	mFolders := new(repoMocks.MockFolderRepository)
	mImages := new(repoMocks.MockImageRepository)
	mStore := new(storeMocks.MockStorage)
	svc := NewFolderService(mFolders, mImages, mStore, discardLogger())
	return mFolders, mImages, mStore, svc
}

func strPtr(s string) *string { return &s }

func folderFix(id string, parentID *string, name, path string) *model.Folder {
	return &model.Folder{
		ID:        id,
		OwnerID:   testOwner,
		Name:      name,
		ParentID:  parentID,
		Path:      path,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestFolderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("root folder", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		mFolders.On("SiblingExists", ctx, testOwner, (*string)(nil), "Photos", "").Return(false, nil)
		mFolders.On("Create", ctx, mock.MatchedBy(func(f *model.Folder) bool {
			return f.Name == "Photos" && f.ParentID == nil && f.Path == "Photos" && f.OwnerID == testOwner && f.ID != ""
		})).Return(folderFix("f1", nil, "Photos", "Photos"), nil)

		folder, err := svc.Create(ctx, testOwner, "  Photos  ", nil)
		require.NoError(t, err)
		assert.Equal(t, "Photos", folder.Name)
		assert.Equal(t, "Photos", folder.Path)
		mFolders.AssertExpectations(t)
	})

	t.Run("nested folder derives path from parent", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()
		parent := strPtr("p1")

		mFolders.On("FindByID", ctx, "p1", testOwner).Return(folderFix("p1", nil, "Photos", "Photos"), nil)
		mFolders.On("SiblingExists", ctx, testOwner, parent, "Trips", "").Return(false, nil)
		mFolders.On("Create", ctx, mock.MatchedBy(func(f *model.Folder) bool {
			return f.Path == "Photos/Trips" && f.ParentID == parent
		})).Return(folderFix("f2", parent, "Trips", "Photos/Trips"), nil)

		folder, err := svc.Create(ctx, testOwner, "Trips", parent)
		require.NoError(t, err)
		assert.Equal(t, "Photos/Trips", folder.Path)
	})

	t.Run("duplicate sibling name is a conflict", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		mFolders.On("SiblingExists", ctx, testOwner, (*string)(nil), "Photos", "").Return(true, nil)

		_, err := svc.Create(ctx, testOwner, "Photos", nil)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		mFolders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("same name under a different parent succeeds", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()
		other := strPtr("p2")

		mFolders.On("FindByID", ctx, "p2", testOwner).Return(folderFix("p2", nil, "Archive", "Archive"), nil)
		mFolders.On("SiblingExists", ctx, testOwner, other, "Photos", "").Return(false, nil)
		mFolders.On("Create", ctx, mock.Anything).Return(folderFix("f3", other, "Photos", "Archive/Photos"), nil)

		_, err := svc.Create(ctx, testOwner, "Photos", other)
		assert.NoError(t, err)
	})

	t.Run("unique violation at insert is a conflict, not a server error", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		// A concurrent create can slip between the sibling check and the
		// insert; the unique index violation must map the same way.
		mFolders.On("SiblingExists", ctx, testOwner, (*string)(nil), "Photos", "").Return(false, nil)
		mFolders.On("Create", ctx, mock.Anything).
			Return(nil, &pgconn.PgError{Code: "23505", ConstraintName: "uq_folders_sibling_name"})

		_, err := svc.Create(ctx, testOwner, "Photos", nil)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("missing parent", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "nope", testOwner).Return(nil, sql.ErrNoRows)

		_, err := svc.Create(ctx, testOwner, "Photos", strPtr("nope"))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("empty name", func(t *testing.T) {
		_, _, _, svc := newFolderFixture()

		_, err := svc.Create(ctx, testOwner, "   ", nil)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("name too long", func(t *testing.T) {
		_, _, _, svc := newFolderFixture()

		_, err := svc.Create(ctx, testOwner, strings.Repeat("a", 101), nil)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestFolderService_DeleteSubtree(t *testing.T) {
	ctx := context.Background()

	// Tree: A -> B -> C, image X in B, image Y in C.
	setupTree := func(mFolders *repoMocks.MockFolderRepository) {
		mFolders.On("FindByID", ctx, "A", testOwner).Return(folderFix("A", nil, "A", "A"), nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"A"}).
			Return([]model.Folder{*folderFix("B", strPtr("A"), "B", "A/B")}, nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"B"}).
			Return([]model.Folder{*folderFix("C", strPtr("B"), "C", "A/B/C")}, nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"C"}).
			Return([]model.Folder{}, nil)
	}

	imgX := model.Image{ID: "X", OwnerID: testOwner, FolderID: "B", StorageKey: "images/owner-1/x.jpg"}
	imgY := model.Image{ID: "Y", OwnerID: testOwner, FolderID: "C", StorageKey: "images/owner-1/y.jpg"}

	t.Run("removes every folder and image in the subtree", func(t *testing.T) {
		mFolders, mImages, mStore, svc := newFolderFixture()
		setupTree(mFolders)

		mImages.On("ListByFolders", ctx, testOwner, []string{"A", "B", "C"}).
			Return([]model.Image{imgX, imgY}, nil)
		mStore.On("Delete", ctx, imgX.StorageKey).Return(nil)
		mStore.On("Delete", ctx, imgY.StorageKey).Return(nil)
		mImages.On("DeleteByIDs", ctx, testOwner, []string{"X", "Y"}).Return(nil)
		mFolders.On("DeleteByIDs", ctx, testOwner, []string{"A", "B", "C"}).Return(nil)

		err := svc.DeleteSubtree(ctx, testOwner, "A")
		require.NoError(t, err)
		mFolders.AssertExpectations(t)
		mImages.AssertExpectations(t)
		mStore.AssertExpectations(t)
	})

	t.Run("empty folder removes exactly one record", func(t *testing.T) {
		mFolders, mImages, _, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "solo", testOwner).Return(folderFix("solo", nil, "Solo", "Solo"), nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"solo"}).Return([]model.Folder{}, nil)
		mImages.On("ListByFolders", ctx, testOwner, []string{"solo"}).Return([]model.Image{}, nil)
		mImages.On("DeleteByIDs", ctx, testOwner, []string{}).Return(nil)
		mFolders.On("DeleteByIDs", ctx, testOwner, []string{"solo"}).Return(nil)

		err := svc.DeleteSubtree(ctx, testOwner, "solo")
		assert.NoError(t, err)
	})

	t.Run("second delete of a gone folder is NotFound with no side effects", func(t *testing.T) {
		mFolders, mImages, mStore, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "gone", testOwner).Return(nil, sql.ErrNoRows)

		err := svc.DeleteSubtree(ctx, testOwner, "gone")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		mFolders.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything, mock.Anything)
		mImages.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything, mock.Anything)
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("foreign folder looks like NotFound", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "A", "other-owner").Return(nil, sql.ErrNoRows)

		err := svc.DeleteSubtree(ctx, "other-owner", "A")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("one media failure does not block any record cleanup", func(t *testing.T) {
		mFolders, mImages, mStore, svc := newFolderFixture()
		setupTree(mFolders)

		mImages.On("ListByFolders", ctx, testOwner, []string{"A", "B", "C"}).
			Return([]model.Image{imgX, imgY}, nil)
		mStore.On("Delete", ctx, imgX.StorageKey).Return(errors.New("provider unavailable"))
		mStore.On("Delete", ctx, imgY.StorageKey).Return(nil)
		mImages.On("DeleteByIDs", ctx, testOwner, []string{"X", "Y"}).Return(nil)
		mFolders.On("DeleteByIDs", ctx, testOwner, []string{"A", "B", "C"}).Return(nil)

		err := svc.DeleteSubtree(ctx, testOwner, "A")
		assert.NoError(t, err)
		mStore.AssertNumberOfCalls(t, "Delete", 2)
		mImages.AssertCalled(t, "DeleteByIDs", ctx, testOwner, []string{"X", "Y"})
		mFolders.AssertCalled(t, "DeleteByIDs", ctx, testOwner, []string{"A", "B", "C"})
	})

	t.Run("collection failure aborts before any deletion", func(t *testing.T) {
		mFolders, mImages, mStore, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "A", testOwner).Return(folderFix("A", nil, "A", "A"), nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"A"}).
			Return(nil, errors.New("db down"))

		err := svc.DeleteSubtree(ctx, testOwner, "A")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrNotFound)
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		mImages.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything, mock.Anything)
		mFolders.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("record deletion failure surfaces as a server error", func(t *testing.T) {
		mFolders, mImages, mStore, svc := newFolderFixture()
		setupTree(mFolders)

		mImages.On("ListByFolders", ctx, testOwner, []string{"A", "B", "C"}).
			Return([]model.Image{imgX}, nil)
		mStore.On("Delete", ctx, imgX.StorageKey).Return(nil)
		mImages.On("DeleteByIDs", ctx, testOwner, []string{"X"}).Return(errors.New("db write failed"))

		err := svc.DeleteSubtree(ctx, testOwner, "A")
		assert.Error(t, err)
		mFolders.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("media purge concurrency stays bounded", func(t *testing.T) {
		mFolders, mImages, mStore, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "big", testOwner).Return(folderFix("big", nil, "Big", "Big"), nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"big"}).Return([]model.Folder{}, nil)

		images := make([]model.Image, 40)
		for i := range images {
			images[i] = model.Image{
				ID:         fmt.Sprintf("img-%d", i),
				OwnerID:    testOwner,
				FolderID:   "big",
				StorageKey: fmt.Sprintf("images/owner-1/%d.jpg", i),
			}
		}
		mImages.On("ListByFolders", ctx, testOwner, []string{"big"}).Return(images, nil)

		var inFlight, peak int32
		mStore.On("Delete", ctx, mock.AnythingOfType("string")).Run(func(mock.Arguments) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}).Return(nil)
		mImages.On("DeleteByIDs", ctx, testOwner, mock.Anything).Return(nil)
		mFolders.On("DeleteByIDs", ctx, testOwner, []string{"big"}).Return(nil)

		err := svc.DeleteSubtree(ctx, testOwner, "big")
		require.NoError(t, err)
		mStore.AssertNumberOfCalls(t, "Delete", len(images))
		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(mediaPurgeConcurrency))
	})

	t.Run("traversal terminates on a corrupted cyclic tree", func(t *testing.T) {
		mFolders, mImages, _, svc := newFolderFixture()

		// B claims A as parent, and the store corruptly reports A as a
		// child of B again.
		mFolders.On("FindByID", ctx, "A", testOwner).Return(folderFix("A", nil, "A", "A"), nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"A"}).
			Return([]model.Folder{*folderFix("B", strPtr("A"), "B", "A/B")}, nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"B"}).
			Return([]model.Folder{*folderFix("A", strPtr("B"), "A", "A")}, nil)
		mImages.On("ListByFolders", ctx, testOwner, []string{"A", "B"}).Return([]model.Image{}, nil)
		mImages.On("DeleteByIDs", ctx, testOwner, []string{}).Return(nil)
		mFolders.On("DeleteByIDs", ctx, testOwner, []string{"A", "B"}).Return(nil)

		err := svc.DeleteSubtree(ctx, testOwner, "A")
		assert.NoError(t, err)
	})
}

func TestFolderService_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("renames in place and recomputes descendant paths", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()
		parentA := strPtr("A")

		mFolders.On("FindByID", ctx, "B", testOwner).Return(folderFix("B", parentA, "Old", "A/Old"), nil)
		mFolders.On("SiblingExists", ctx, testOwner, parentA, "New", "B").Return(false, nil)
		mFolders.On("FindByID", ctx, "A", testOwner).Return(folderFix("A", nil, "A", "A"), nil)
		mFolders.On("UpdateNameAndPath", ctx, "B", testOwner, "New", "A/New").Return(nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"B"}).
			Return([]model.Folder{*folderFix("C", strPtr("B"), "C", "A/Old/C")}, nil)
		mFolders.On("UpdatePath", ctx, "C", "A/New/C").Return(nil)
		mFolders.On("ListByParents", ctx, testOwner, []string{"C"}).Return([]model.Folder{}, nil)

		folder, err := svc.Rename(ctx, testOwner, "B", "New")
		require.NoError(t, err)
		assert.Equal(t, "New", folder.Name)
		assert.Equal(t, "A/New", folder.Path)
		// Rename never changes parent pointers.
		assert.Equal(t, parentA, folder.ParentID)
		mFolders.AssertExpectations(t)
	})

	t.Run("duplicate sibling name is a conflict", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "B", testOwner).Return(folderFix("B", nil, "Old", "Old"), nil)
		mFolders.On("SiblingExists", ctx, testOwner, (*string)(nil), "Taken", "B").Return(true, nil)

		_, err := svc.Rename(ctx, testOwner, "B", "Taken")
		assert.ErrorIs(t, err, apperr.ErrConflict)
		mFolders.AssertNotCalled(t, "UpdateNameAndPath", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing folder", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "gone", testOwner).Return(nil, sql.ErrNoRows)

		_, err := svc.Rename(ctx, testOwner, "gone", "New")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestFolderService_Tree(t *testing.T) {
	ctx := context.Background()
	mFolders, _, _, svc := newFolderFixture()

	mFolders.On("ListByOwner", ctx, testOwner).Return([]model.Folder{
		*folderFix("A", nil, "A", "A"),
		*folderFix("B", strPtr("A"), "B", "A/B"),
		*folderFix("R", nil, "R", "R"),
	}, nil)

	roots, err := svc.Tree(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "A", roots[0].ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "B", roots[0].Children[0].ID)
	assert.Empty(t, roots[1].Children)
}

func TestFolderService_ListChildren(t *testing.T) {
	ctx := context.Background()

	t.Run("missing parent is NotFound, not an empty list", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		mFolders.On("FindByID", ctx, "gone", testOwner).Return(nil, sql.ErrNoRows)

		_, err := svc.ListChildren(ctx, testOwner, strPtr("gone"))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("root listing needs no parent lookup", func(t *testing.T) {
		mFolders, _, _, svc := newFolderFixture()

		mFolders.On("ListChildren", ctx, testOwner, (*string)(nil)).
			Return([]model.Folder{*folderFix("A", nil, "A", "A")}, nil)

		items, err := svc.ListChildren(ctx, testOwner, nil)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}
