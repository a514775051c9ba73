package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"datamorph/internal/model"
	"datamorph/internal/repository"
	"datamorph/internal/storage"
)

const maxProjectName = 255

// ProjectService manages the projects that group a user's uploads.
type ProjectService interface {
	Create(ctx context.Context, userID string, req model.ProjectCreateRequest) (*model.Project, error)
	List(ctx context.Context, userID string, page, pageSize int) (*model.ProjectList, error)
	Get(ctx context.Context, userID, projectID string) (*model.ProjectDetail, error)
	Update(ctx context.Context, userID, projectID string, req model.ProjectUpdateRequest) (*model.Project, error)
	// Delete drops the project with all its files and releases their quota.
	Delete(ctx context.Context, userID, projectID string) error
}

type projectService struct {
	projects repository.ProjectRepository
	files    repository.FileRepository
	users    repository.UserRepository
	store    storage.Storage
	log      zerolog.Logger
	now      func() time.Time
}

func NewProjectService(projects repository.ProjectRepository, files repository.FileRepository, users repository.UserRepository, store storage.Storage, log zerolog.Logger) ProjectService {
	return &projectService{
		projects: projects,
		files:    files,
		users:    users,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

func (s *projectService) Create(ctx context.Context, userID string, req model.ProjectCreateRequest) (*model.Project, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	p, err := createProject(ctx, s.projects, s.now, &model.Project{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Settings:    req.Settings,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("event", "project_created").Str("project_id", p.ID).Str("user_id", userID).Msg("project created")
	return p, nil
}

func (s *projectService) List(ctx context.Context, userID string, page, pageSize int) (*model.ProjectList, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	pq := pageQuery(page, pageSize)
	res, err := s.projects.List(ctx, userID, pq)
	if err != nil {
		return nil, err
	}
	return &model.ProjectList{Projects: res.Items, Total: res.Total}, nil
}

func (s *projectService) Get(ctx context.Context, userID, projectID string) (*model.ProjectDetail, error) {
	p, err := s.owned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	n, err := s.projects.CountFiles(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("count project files: %w", err)
	}
	return &model.ProjectDetail{Project: *p, FileCount: n}, nil
}

func (s *projectService) Update(ctx context.Context, userID, projectID string, req model.ProjectUpdateRequest) (*model.Project, error) {
	p, err := s.owned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Settings != nil {
		p.Settings = req.Settings
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	updated, err := s.projects.Update(ctx, p)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *projectService) Delete(ctx context.Context, userID, projectID string) error {
	p, err := s.owned(ctx, userID, projectID)
	if err != nil {
		return err
	}

	var (
		keys  []string
		total int64
	)
	filter := repository.FileFilter{UserID: userID, ProjectID: p.ID}
	for offset := 0; ; offset += MaxPageSize {
		res, err := s.files.List(ctx, filter, repository.PageQuery{Limit: MaxPageSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("list project files: %w", err)
		}
		for _, f := range res.Items {
			keys = append(keys, f.StoragePath)
			total += f.Size
		}
		if len(res.Items) < MaxPageSize {
			break
		}
	}

	if err := s.projects.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("remove blob")
		}
	}
	if total > 0 {
		if err := s.users.AddStorageUsed(ctx, userID, -total); err != nil {
			return fmt.Errorf("release storage usage: %w", err)
		}
	}

	s.log.Info().
		Str("event", "project_deleted").
		Str("project_id", p.ID).
		Int("files", len(keys)).
		Int64("bytes", total).
		Msg("project deleted")
	return nil
}

// owned loads a project and hides other users' projects behind ErrProjectNotFound.
func (s *projectService) owned(ctx context.Context, userID, projectID string) (*model.Project, error) {
	if userID == "" || projectID == "" {
		return nil, ErrIDRequired
	}
	return ownedProject(ctx, s.projects, userID, projectID)
}

func ownedProject(ctx context.Context, projects repository.ProjectRepository, userID, projectID string) (*model.Project, error) {
	p, err := projects.FindByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func createProject(ctx context.Context, projects repository.ProjectRepository, now func() time.Time, p *model.Project) (*model.Project, error) {
	ts := now().UTC()
	p.ID = uuid.NewString()
	p.Status = model.ProjectActive
	p.CreatedAt = ts
	p.UpdatedAt = ts
	if p.Settings == nil {
		p.Settings = map[string]any{}
	}
	created, err := projects.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

// projectName derives a project name from an upload's filename.
func projectName(filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		return model.DefaultProjectName
	}
	if utf8.RuneCountInString(name) > maxProjectName {
		name = string([]rune(name)[:maxProjectName])
	}
	return name
}

func pageQuery(page, pageSize int) repository.PageQuery {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return repository.PageQuery{Limit: pageSize, Offset: (page - 1) * pageSize}
}
