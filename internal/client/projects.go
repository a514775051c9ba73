package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"datamorph/internal/model"
)

var (
	createProjectFailure = failure{message: "Failed to create project", withStatus: true}
	listProjectsFailure  = failure{message: "Failed to list projects", withStatus: true}
	projectFailure       = failure{message: "Failed to load project", withStatus: true}
	deleteProjectFailure = failure{message: "Failed to delete project", withStatus: true}
)

// CreateProject creates an empty project owned by the token's user.
func (c *Client) CreateProject(ctx context.Context, token string, req model.ProjectCreateRequest) (*model.Project, error) {
	var out model.Project
	cl, err := jsonCall("create_project", http.MethodPost, "/api/v1/projects/", req, createProjectFailure, &out)
	if err != nil {
		return nil, err
	}
	cl.token = token
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects returns a page of the user's projects, most recently updated first.
// Zero page or pageSize leaves the server default.
func (c *Client) ListProjects(ctx context.Context, token string, page, pageSize int) (*model.ProjectList, error) {
	var out model.ProjectList
	err := c.do(ctx, call{
		op:     "list_projects",
		method: http.MethodGet,
		path:   withPage("/api/v1/projects/", page, pageSize),
		token:  token,
		fail:   listProjectsFailure,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject returns one project with its file count.
func (c *Client) GetProject(ctx context.Context, token, projectID string) (*model.ProjectDetail, error) {
	var out model.ProjectDetail
	err := c.do(ctx, call{
		op:     "get_project",
		method: http.MethodGet,
		path:   "/api/v1/projects/" + url.PathEscape(projectID),
		token:  token,
		fail:   projectFailure,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project together with every file in it.
func (c *Client) DeleteProject(ctx context.Context, token, projectID string) error {
	return c.do(ctx, call{
		op:     "delete_project",
		method: http.MethodDelete,
		path:   "/api/v1/projects/" + url.PathEscape(projectID),
		token:  token,
		fail:   deleteProjectFailure,
	})
}

func withPage(path string, page, pageSize int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return path
}
