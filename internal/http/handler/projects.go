package handler

import (
	"github.com/gofiber/fiber/v2"

	"datamorph/internal/http/middleware"
	"datamorph/internal/model"
	"datamorph/internal/service"
)

// CreateProject godoc
// @Summary     Create a project
// @Tags        Projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body     model.ProjectCreateRequest true "New project"
// @Success     201  {object} model.Project
// @Failure     422  {object} model.ErrorDetail
// @Router      /api/v1/projects/ [post]
func CreateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.ProjectCreateRequest
		if errs := bindJSON(c, &req); errs != nil {
			return writeValidation(c, errs)
		}
		p, err := svc.Create(c.UserContext(), middleware.GetUserID(c), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// ListProjects godoc
// @Summary     The caller's projects, most recently updated first
// @Tags        Projects
// @Produce     json
// @Security    BearerAuth
// @Param       page      query    int false "Page (1-based)"
// @Param       page_size query    int false "Page size (max 100)"
// @Success     200       {object} model.ProjectList
// @Router      /api/v1/projects/ [get]
func ListProjects(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, size, errs := pageParams(c)
		if errs != nil {
			return writeValidation(c, errs)
		}
		res, err := svc.List(c.UserContext(), middleware.GetUserID(c), page, size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetProject godoc
// @Summary     Project details with its file count
// @Tags        Projects
// @Produce     json
// @Security    BearerAuth
// @Param       project_id path     string true "Project ID"
// @Success     200        {object} model.ProjectDetail
// @Failure     404        {object} model.ErrorDetail
// @Router      /api/v1/projects/{project_id} [get]
func GetProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := pathUUID(c, "project_id")
		if errs != nil {
			return writeValidation(c, errs)
		}
		d, err := svc.Get(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(d)
	}
}

// UpdateProject godoc
// @Summary     Change a project's name, description, settings or status
// @Tags        Projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       project_id path     string                     true "Project ID"
// @Param       body       body     model.ProjectUpdateRequest true "Fields to change"
// @Success     200        {object} model.Project
// @Failure     404        {object} model.ErrorDetail
// @Failure     422        {object} model.ErrorDetail
// @Router      /api/v1/projects/{project_id} [patch]
func UpdateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := pathUUID(c, "project_id")
		if errs != nil {
			return writeValidation(c, errs)
		}
		var req model.ProjectUpdateRequest
		if errs := bindJSON(c, &req); errs != nil {
			return writeValidation(c, errs)
		}
		p, err := svc.Update(c.UserContext(), middleware.GetUserID(c), id, req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// DeleteProject godoc
// @Summary     Delete a project and every file in it
// @Tags        Projects
// @Security    BearerAuth
// @Param       project_id path string true "Project ID"
// @Success     204
// @Failure     404 {object} model.ErrorDetail
// @Router      /api/v1/projects/{project_id} [delete]
func DeleteProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := pathUUID(c, "project_id")
		if errs != nil {
			return writeValidation(c, errs)
		}
		if err := svc.Delete(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
