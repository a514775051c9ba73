package model

import "time"

// File processing states reported by the API. Clients must treat the status
// as an opaque string; these are the values the development server emits.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// UploadResult is the body returned by a successful upload.
// Fields are passed through from the server as-is.
type UploadResult struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	FormatDetected string `json:"format_detected"`
	FileSize       int64  `json:"file_size"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// FileProgress is the polling view of an uploaded file's processing state.
type FileProgress struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// FileInfo describes an uploaded file and its processing state.
type FileInfo struct {
	ID                 string    `json:"id"`
	ProjectID          string    `json:"project_id"`
	Filename           string    `json:"filename"`
	FileSize           int64     `json:"file_size"`
	MimeType           string    `json:"mime_type"`
	FormatDetected     string    `json:"format_detected"`
	Status             string    `json:"status"`
	ProcessingProgress int       `json:"processing_progress"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FileList is a page of files belonging to one project.
type FileList struct {
	Files []FileInfo `json:"files"`
	Total int        `json:"total"`
}

// File is the stored record of an upload.
// It is shared by the service, repository and HTTP layers of the API server.
type File struct {
	ID                 string
	UserID             string
	ProjectID          string
	Filename           string
	StoragePath        string
	Size               int64
	MimeType           string
	Format             string
	Status             string
	ProcessingProgress int
	ErrorMessage       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UploadResult renders the record in the shape returned by the upload endpoint.
func (f *File) UploadResult() UploadResult {
	return UploadResult{
		ID:             f.ID,
		Filename:       f.Filename,
		FormatDetected: f.Format,
		FileSize:       f.Size,
		Status:         f.Status,
		CreatedAt:      f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Info renders the record as a FileInfo.
func (f *File) Info() FileInfo {
	return FileInfo{
		ID:                 f.ID,
		ProjectID:          f.ProjectID,
		Filename:           f.Filename,
		FileSize:           f.Size,
		MimeType:           f.MimeType,
		FormatDetected:     f.Format,
		Status:             f.Status,
		ProcessingProgress: f.ProcessingProgress,
		ErrorMessage:       f.ErrorMessage,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
}

// Progress renders the record as a FileProgress.
func (f *File) Progress() FileProgress {
	return FileProgress{
		Status:   f.Status,
		Progress: f.ProcessingProgress,
		Error:    f.ErrorMessage,
	}
}
