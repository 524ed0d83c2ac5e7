package mocks

import (
	"context"

	"imgvault/internal/model"
	"imgvault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, ownerID string, in service.UploadInput) (*model.Image, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageService) Get(ctx context.Context, ownerID, imageID string) (*model.Image, error) {
	args := m.Called(ctx, ownerID, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageService) ListByFolder(ctx context.Context, ownerID, folderID string) ([]model.Image, error) {
	args := m.Called(ctx, ownerID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Image), args.Error(1)
}

func (m *MockImageService) Search(ctx context.Context, ownerID, term string) ([]model.Image, error) {
	args := m.Called(ctx, ownerID, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Image), args.Error(1)
}

func (m *MockImageService) Delete(ctx context.Context, ownerID, imageID string) error {
	args := m.Called(ctx, ownerID, imageID)
	return args.Error(0)
}
