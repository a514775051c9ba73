package model

import "time"

const (
	ProjectActive   = "active"
	ProjectArchived = "archived"

	// DefaultProjectName names projects created implicitly by an upload without a filename.
	DefaultProjectName = "Untitled"
)

// Project groups a user's uploads.
type Project struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Status      string         `json:"status"`
	Settings    map[string]any `json:"settings"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProjectCreateRequest is the create-project body.
type ProjectCreateRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=255"`
	Description *string        `json:"description"`
	Settings    map[string]any `json:"settings"`
}

// ProjectUpdateRequest is a partial update; nil fields are left unchanged.
type ProjectUpdateRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string        `json:"description"`
	Settings    map[string]any `json:"settings"`
	Status      *string        `json:"status" validate:"omitempty,oneof=active archived"`
}

// ProjectList is a page of a user's projects, most recently updated first.
type ProjectList struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
}

// ProjectDetail is a project with its file count.
type ProjectDetail struct {
	Project
	FileCount int `json:"file_count"`
}
