package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"datamorph/internal/model"
	"datamorph/internal/repository"
)

type MockFileRepository struct {
	mock.Mock
}

var _ repository.FileRepository = (*MockFileRepository)(nil)

func (m *MockFileRepository) Create(ctx context.Context, f *model.File) (*model.File, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileRepository) List(ctx context.Context, filter repository.FileFilter, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	args := m.Called(ctx, filter, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.File]), args.Error(1)
}

func (m *MockFileRepository) UpdateProcessing(ctx context.Context, id string, u repository.ProcessingUpdate) error {
	return m.Called(ctx, id, u).Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
