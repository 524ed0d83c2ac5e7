package mocks

import (
	"context"

	"imgvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockFolderRepository struct {
	mock.Mock
}

func (m *MockFolderRepository) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) FindByID(ctx context.Context, id, ownerID string) (*model.Folder, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error) {
	args := m.Called(ctx, ownerID, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Folder, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderRepository) ListByParents(ctx context.Context, ownerID string, parentIDs []string) ([]model.Folder, error) {
	args := m.Called(ctx, ownerID, parentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderRepository) SiblingExists(ctx context.Context, ownerID string, parentID *string, name, excludeID string) (bool, error) {
	args := m.Called(ctx, ownerID, parentID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFolderRepository) UpdateNameAndPath(ctx context.Context, id, ownerID, name, path string) error {
	args := m.Called(ctx, id, ownerID, name, path)
	return args.Error(0)
}

func (m *MockFolderRepository) UpdatePath(ctx context.Context, id, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *MockFolderRepository) DeleteByIDs(ctx context.Context, ownerID string, ids []string) error {
	args := m.Called(ctx, ownerID, ids)
	return args.Error(0)
}
