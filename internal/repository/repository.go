// Package repository declares the persistence ports of the API server.
// Implementations live in subpackages; they hold no business rules.
package repository

import (
	"context"
	"errors"

	"datamorph/internal/model"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrLimitExceeded is returned when a conditional update would pass a limit.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	TouchLogin(ctx context.Context, id string) error
	// AddStorageUsed adjusts the user's quota counter by delta, never going below zero.
	AddStorageUsed(ctx context.Context, id string, delta int64) error
	// ReserveStorage adds size to the counter in one statement, failing with
	// ErrLimitExceeded when the result would pass limit.
	ReserveStorage(ctx context.Context, id string, size, limit int64) error
}

// ProjectRepository stores projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) (*model.Project, error)
	FindByID(ctx context.Context, id string) (*model.Project, error)
	// List returns the user's projects, most recently updated first.
	List(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.Project], error)
	Update(ctx context.Context, p *model.Project) (*model.Project, error)
	// Delete removes the project; its file rows go with it.
	Delete(ctx context.Context, id string) error
	CountFiles(ctx context.Context, id string) (int, error)
}

// FileRepository stores upload records.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) (*model.File, error)
	FindByID(ctx context.Context, id string) (*model.File, error)
	List(ctx context.Context, filter FileFilter, pq PageQuery) (*PageResult[model.File], error)
	UpdateProcessing(ctx context.Context, id string, u ProcessingUpdate) error
	Delete(ctx context.Context, id string) error
}

// FileFilter narrows List. Empty fields are ignored except UserID, which is required.
type FileFilter struct {
	UserID    string
	ProjectID string
	Status    string
}

// ProcessingUpdate is written by the processing job as a file advances.
type ProcessingUpdate struct {
	Status       string
	Progress     int
	ErrorMessage string
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is one page of T plus the total matching rows.
type PageResult[T any] struct {
	Items []T
	Total int
}
