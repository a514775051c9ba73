package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"datamorph/internal/model"
	"datamorph/internal/repository"
	repoMocks "datamorph/internal/repository/mocks"
	storeMocks "datamorph/internal/storage/mocks"
)

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	projects := new(repoMocks.MockProjectRepository)
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	projects.On("Create", ctx, mock.MatchedBy(func(p *model.Project) bool {
		return p.ID != "" &&
			p.UserID == "u1" &&
			p.Name == "Q1 reports" &&
			p.Status == model.ProjectActive &&
			p.Settings != nil &&
			p.CreatedAt.Equal(fixed) && p.CreatedAt.Location() == time.UTC
	})).Return(&model.Project{ID: "p1", UserID: "u1", Name: "Q1 reports"}, nil)

	svc := NewProjectService(projects, nil, nil, nil, zerolog.Nop()).(*projectService)
	svc.now = func() time.Time { return fixed }

	p, err := svc.Create(ctx, "u1", model.ProjectCreateRequest{Name: "  Q1 reports "})

	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	projects.AssertExpectations(t)

	_, err = svc.Create(ctx, "", model.ProjectCreateRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestProjectService_List(t *testing.T) {
	ctx := context.Background()
	projects := new(repoMocks.MockProjectRepository)
	projects.On("List", ctx, "u1", repository.PageQuery{Limit: 10, Offset: 10}).
		Return(&repository.PageResult[model.Project]{Items: []model.Project{{ID: "p3"}}, Total: 11}, nil)
	svc := NewProjectService(projects, nil, nil, nil, zerolog.Nop())

	res, err := svc.List(ctx, "u1", 2, 10)

	require.NoError(t, err)
	assert.Equal(t, 11, res.Total)
	assert.Equal(t, "p3", res.Projects[0].ID)
	projects.AssertExpectations(t)
}

func TestProjectService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(projects *repoMocks.MockProjectRepository)
		wantErr    error
		wantCount  int
	}{
		{
			name: "with file count",
			setupMocks: func(projects *repoMocks.MockProjectRepository) {
				projects.On("FindByID", ctx, "p1").Return(&model.Project{ID: "p1", UserID: "u1"}, nil)
				projects.On("CountFiles", ctx, "p1").Return(4, nil)
			},
			wantCount: 4,
		},
		{
			name: "someone else's project",
			setupMocks: func(projects *repoMocks.MockProjectRepository) {
				projects.On("FindByID", ctx, "p1").Return(&model.Project{ID: "p1", UserID: "u2"}, nil)
			},
			wantErr: ErrProjectNotFound,
		},
		{
			name: "missing",
			setupMocks: func(projects *repoMocks.MockProjectRepository) {
				projects.On("FindByID", ctx, "p1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrProjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := new(repoMocks.MockProjectRepository)
			tt.setupMocks(projects)
			svc := NewProjectService(projects, nil, nil, nil, zerolog.Nop())

			d, err := svc.Get(ctx, "u1", "p1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, d.FileCount)
			assert.Equal(t, "p1", d.ID)
		})
	}
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()
	desc := "kept"
	name := " renamed "
	archived := model.ProjectArchived

	projects := new(repoMocks.MockProjectRepository)
	projects.On("FindByID", ctx, "p1").Return(&model.Project{
		ID: "p1", UserID: "u1", Name: "old", Description: &desc, Status: model.ProjectActive,
		Settings: map[string]any{"delimiter": ","},
	}, nil)
	projects.On("Update", ctx, mock.MatchedBy(func(p *model.Project) bool {
		return p.Name == "renamed" &&
			p.Status == model.ProjectArchived &&
			p.Description != nil && *p.Description == "kept" &&
			p.Settings["delimiter"] == ","
	})).Return(&model.Project{ID: "p1", Name: "renamed", Status: model.ProjectArchived}, nil)
	svc := NewProjectService(projects, nil, nil, nil, zerolog.Nop())

	p, err := svc.Update(ctx, "u1", "p1", model.ProjectUpdateRequest{Name: &name, Status: &archived})

	require.NoError(t, err)
	assert.Equal(t, "renamed", p.Name)
	projects.AssertExpectations(t)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	owned := &model.Project{ID: "p1", UserID: "u1"}
	filter := repository.FileFilter{UserID: "u1", ProjectID: "p1"}

	fullPage := make([]model.File, MaxPageSize)
	for i := range fullPage {
		fullPage[i] = model.File{StoragePath: "u1/p1/a.csv", Size: 1}
	}

	tests := []struct {
		name       string
		setupMocks func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository, users *repoMocks.MockUserRepository, projects *repoMocks.MockProjectRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "releases quota across pages",
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository, users *repoMocks.MockUserRepository, projects *repoMocks.MockProjectRepository) {
				projects.On("FindByID", ctx, "p1").Return(owned, nil)
				files.On("List", ctx, filter, repository.PageQuery{Limit: MaxPageSize, Offset: 0}).
					Return(&repository.PageResult[model.File]{Items: fullPage, Total: MaxPageSize + 1}, nil)
				files.On("List", ctx, filter, repository.PageQuery{Limit: MaxPageSize, Offset: MaxPageSize}).
					Return(&repository.PageResult[model.File]{Items: []model.File{{StoragePath: "u1/p1/b.json", Size: 50}}, Total: MaxPageSize + 1}, nil)
				projects.On("Delete", ctx, "p1").Return(nil)
				st.On("Delete", ctx, "u1/p1/a.csv").Return(nil).Times(MaxPageSize)
				st.On("Delete", ctx, "u1/p1/b.json").Return(errors.New("minio down"))
				users.On("AddStorageUsed", ctx, "u1", int64(-(MaxPageSize + 50))).Return(nil)
			},
		},
		{
			name: "empty project leaves quota alone",
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository, users *repoMocks.MockUserRepository, projects *repoMocks.MockProjectRepository) {
				projects.On("FindByID", ctx, "p1").Return(owned, nil)
				files.On("List", ctx, filter, mock.Anything).Return(&repository.PageResult[model.File]{Items: []model.File{}}, nil)
				projects.On("Delete", ctx, "p1").Return(nil)
			},
		},
		{
			name: "someone else's project",
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository, users *repoMocks.MockUserRepository, projects *repoMocks.MockProjectRepository) {
				projects.On("FindByID", ctx, "p1").Return(&model.Project{ID: "p1", UserID: "u2"}, nil)
			},
			wantErr: ErrProjectNotFound,
		},
		{
			name: "file listing fails before anything is removed",
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository, users *repoMocks.MockUserRepository, projects *repoMocks.MockProjectRepository) {
				projects.On("FindByID", ctx, "p1").Return(owned, nil)
				files.On("List", ctx, filter, mock.Anything).Return(nil, errors.New("connection reset"))
			},
			wantErrMsg: "list project files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(storeMocks.MockStorage)
			files := new(repoMocks.MockFileRepository)
			users := new(repoMocks.MockUserRepository)
			projects := new(repoMocks.MockProjectRepository)
			tt.setupMocks(st, files, users, projects)
			svc := NewProjectService(projects, files, users, st, zerolog.Nop())

			err := svc.Delete(ctx, "u1", "p1")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.ErrorContains(t, err, tt.wantErrMsg)
			default:
				assert.NoError(t, err)
			}
			st.AssertExpectations(t)
			files.AssertExpectations(t)
			users.AssertExpectations(t)
			projects.AssertExpectations(t)
		})
	}
}
