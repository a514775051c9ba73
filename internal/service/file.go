package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"datamorph/internal/model"
	"datamorph/internal/repository"
	"datamorph/internal/storage"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Enqueuer hands a stored file to background processing.
type Enqueuer interface {
	Enqueue(fileID string)
}

// UploadInput is one file to store. Size is -1 when unknown.
type UploadInput struct {
	UserID    string
	ProjectID string
	Filename  string
	Size      int64
	Reader    io.Reader
}

// ListQuery selects a page of a project's files. Page is 1-based.
type ListQuery struct {
	UserID    string
	ProjectID string
	Status    string
	Page      int
	PageSize  int
}

// FileListResult is a page of files plus the total match count.
type FileListResult struct {
	Items []model.File
	Total int
}

// FileService covers upload, lookup and removal of a user's files.
type FileService interface {
	// Upload stores the blob, records it and queues processing.
	// Without a ProjectID a project named after the file is created.
	// The blob is removed again if the record cannot be written.
	Upload(ctx context.Context, in UploadInput) (*model.File, error)
	Get(ctx context.Context, userID, fileID string) (*model.File, error)
	List(ctx context.Context, q ListQuery) (*FileListResult, error)
	// Delete removes the record and releases its quota. Blob removal is best effort.
	Delete(ctx context.Context, userID, fileID string) error
}

type fileService struct {
	store    storage.Storage
	files    repository.FileRepository
	users    repository.UserRepository
	projects repository.ProjectRepository
	jobs     Enqueuer
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

// NewFileService wires the upload use cases. jobs may be nil, in which case files stay pending.
func NewFileService(store storage.Storage, files repository.FileRepository, users repository.UserRepository, projects repository.ProjectRepository, jobs Enqueuer, maxBytes int64, log zerolog.Logger) FileService {
	return &fileService{
		store:    store,
		files:    files,
		users:    users,
		projects: projects,
		jobs:     jobs,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (*model.File, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if in.UserID == "" {
		return nil, ErrIDRequired
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	user, err := s.users.FindByID(ctx, in.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	limit := TierLimit(user.Tier)
	if in.Size > 0 {
		if err := checkQuota(user.Tier, user.StorageUsedBytes, in.Size); err != nil {
			return nil, err
		}
	}

	project, created, err := s.resolveProject(ctx, user.ID, in)
	if err != nil {
		return nil, err
	}
	dropProject := func() {
		if !created {
			return
		}
		if err := s.projects.Delete(ctx, project.ID); err != nil {
			s.log.Error().Err(err).Str("project_id", project.ID).Msg("rollback project")
		}
	}

	br := bufio.NewReaderSize(in.Reader, sniffLen)
	head, _ := br.Peek(sniffLen)
	det := DetectFormat(in.Filename, head)

	key := path.Join(user.ID, project.ID, uuid.NewString()+path.Ext(in.Filename))
	body := io.Reader(br)
	if s.maxBytes > 0 && in.Size < 0 {
		body = io.LimitReader(br, s.maxBytes+1)
	}

	obj, err := s.store.Put(ctx, key, body, storage.PutOptions{
		Size:        in.Size,
		ContentType: det.MimeType,
		Metadata:    map[string]string{"original-filename": in.Filename},
	})
	if err != nil {
		dropProject()
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	size := obj.Size
	if in.Size >= 0 {
		size = in.Size
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		s.removeBlob(ctx, key)
		dropProject()
		return nil, ErrFileTooLarge
	}
	if in.Size < 0 {
		if err := checkQuota(user.Tier, user.StorageUsedBytes, size); err != nil {
			s.removeBlob(ctx, key)
			dropProject()
			return nil, err
		}
	}

	now := s.now().UTC()
	stored, err := s.files.Create(ctx, &model.File{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		ProjectID:   project.ID,
		Filename:    in.Filename,
		StoragePath: key,
		Size:        size,
		MimeType:    det.MimeType,
		Format:      det.Format,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		defer dropProject()
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	// Quota is re-checked atomically with the increment.
	if err := s.users.ReserveStorage(ctx, user.ID, size, limit); err != nil {
		if delErr := s.files.Delete(ctx, stored.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("file_id", stored.ID).Msg("rollback file record")
		}
		s.removeBlob(ctx, key)
		dropProject()
		if errors.Is(err, repository.ErrLimitExceeded) {
			return nil, &StorageLimitError{Used: user.StorageUsedBytes, Limit: limit, Size: size}
		}
		return nil, fmt.Errorf("update storage usage: %w", err)
	}

	s.log.Info().
		Str("event", "file_uploaded").
		Str("file_id", stored.ID).
		Str("user_id", user.ID).
		Str("project_id", project.ID).
		Bool("project_created", created).
		Str("format", stored.Format).
		Int64("size", stored.Size).
		Msg("file stored")

	if s.jobs != nil {
		s.jobs.Enqueue(stored.ID)
	}
	return stored, nil
}

// resolveProject returns the caller's project for in, creating one named
// after the file when no ProjectID is given. created reports the latter.
func (s *fileService) resolveProject(ctx context.Context, userID string, in UploadInput) (*model.Project, bool, error) {
	if in.ProjectID != "" {
		p, err := ownedProject(ctx, s.projects, userID, in.ProjectID)
		return p, false, err
	}
	p, err := createProject(ctx, s.projects, s.now, &model.Project{
		UserID: userID,
		Name:   projectName(in.Filename),
	})
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (s *fileService) Get(ctx context.Context, userID, fileID string) (*model.File, error) {
	if userID == "" || fileID == "" {
		return nil, ErrIDRequired
	}
	f, err := s.files.FindByID(ctx, fileID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	// Other users' files are indistinguishable from missing ones.
	if f.UserID != userID {
		return nil, ErrFileNotFound
	}
	return f, nil
}

func (s *fileService) List(ctx context.Context, q ListQuery) (*FileListResult, error) {
	if q.UserID == "" || q.ProjectID == "" {
		return nil, ErrIDRequired
	}
	res, err := s.files.List(ctx,
		repository.FileFilter{UserID: q.UserID, ProjectID: q.ProjectID, Status: q.Status},
		pageQuery(q.Page, q.PageSize),
	)
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *fileService) Delete(ctx context.Context, userID, fileID string) error {
	f, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return err
	}

	s.removeBlob(ctx, f.StoragePath)

	if err := s.files.Delete(ctx, f.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFileNotFound
		}
		return err
	}
	if err := s.users.AddStorageUsed(ctx, userID, -f.Size); err != nil {
		return fmt.Errorf("release storage usage: %w", err)
	}
	return nil
}

func (s *fileService) removeBlob(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("remove blob")
	}
}
