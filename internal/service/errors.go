package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired          = errors.New("id is required")
	ErrReaderNil           = errors.New("reader is nil")
	ErrFileNotFound        = errors.New("file not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrFileTooLarge        = errors.New("file too large")
	ErrProjectNotFound     = errors.New("project not found")
)

// StorageLimitError is returned when an upload would push a user past their tier quota.
type StorageLimitError struct {
	Used  int64
	Limit int64
	Size  int64
}

func (e *StorageLimitError) Error() string {
	return fmt.Sprintf("storage limit exceeded: used %d, limit %d, file %d", e.Used, e.Limit, e.Size)
}

// Detail is the message shown to API callers.
func (e *StorageLimitError) Detail() string {
	return fmt.Sprintf("Storage limit exceeded. Used: %d, Limit: %d, File: %d", e.Used, e.Limit, e.Size)
}
