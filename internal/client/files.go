package client

import (
	"context"
	"net/http"
	"net/url"

	"datamorph/internal/model"
)

var (
	progressFailure = failure{message: "Failed to load upload progress", withStatus: true}
	fileFailure     = failure{message: "Failed to load file", withStatus: true}
	listFailure     = failure{message: "Failed to list files", withStatus: true}
	deleteFailure   = failure{message: "Failed to delete file", withStatus: true}
)

// UploadProgress returns the processing state of an uploaded file.
func (c *Client) UploadProgress(ctx context.Context, token, fileID string) (*model.FileProgress, error) {
	var out model.FileProgress
	err := c.do(ctx, call{
		op:     "progress",
		method: http.MethodGet,
		path:   "/api/v1/uploads/" + url.PathEscape(fileID) + "/progress",
		token:  token,
		fail:   progressFailure,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFile returns one uploaded file.
func (c *Client) GetFile(ctx context.Context, token, fileID string) (*model.FileInfo, error) {
	var out model.FileInfo
	err := c.do(ctx, call{
		op:     "get_file",
		method: http.MethodGet,
		path:   "/api/v1/uploads/" + url.PathEscape(fileID),
		token:  token,
		fail:   fileFailure,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjectFiles returns a page of a project's files, newest first.
// Zero page or pageSize leaves the server default.
func (c *Client) ListProjectFiles(ctx context.Context, token, projectID string, page, pageSize int) (*model.FileList, error) {
	path := withPage("/api/v1/uploads/project/"+url.PathEscape(projectID), page, pageSize)

	var out model.FileList
	err := c.do(ctx, call{
		op:     "list_files",
		method: http.MethodGet,
		path:   path,
		token:  token,
		fail:   listFailure,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFile removes an uploaded file.
func (c *Client) DeleteFile(ctx context.Context, token, fileID string) error {
	return c.do(ctx, call{
		op:     "delete_file",
		method: http.MethodDelete,
		path:   "/api/v1/uploads/" + url.PathEscape(fileID),
		token:  token,
		fail:   deleteFailure,
	})
}
