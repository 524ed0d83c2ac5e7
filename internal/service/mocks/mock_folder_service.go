package mocks

import (
	"context"

	"imgvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) Create(ctx context.Context, ownerID, name string, parentID *string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, name, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Get(ctx context.Context, ownerID, folderID string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error) {
	args := m.Called(ctx, ownerID, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderService) Tree(ctx context.Context, ownerID string) ([]*model.FolderNode, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FolderNode), args.Error(1)
}

func (m *MockFolderService) Rename(ctx context.Context, ownerID, folderID, newName string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, folderID, newName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) DeleteSubtree(ctx context.Context, ownerID, folderID string) error {
	args := m.Called(ctx, ownerID, folderID)
	return args.Error(0)
}
