package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"datamorph/internal/http/middleware"
	"datamorph/internal/model"
	"datamorph/internal/service"
)

func pathUUID(c *fiber.Ctx, name string) (string, []fieldError) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", []fieldError{{Loc: []string{"path", name}, Msg: "value is not a valid uuid", Type: "type_error.uuid"}}
	}
	return id, nil
}

// pageParams reads ?page and ?page_size, defaulting to the first page of DefaultPageSize.
func pageParams(c *fiber.Ctx) (page, size int, errs []fieldError) {
	page = c.QueryInt("page", 1)
	size = c.QueryInt("page_size", service.DefaultPageSize)
	if page < 1 {
		errs = append(errs, fieldError{Loc: []string{"query", "page"}, Msg: "ensure this value is greater than or equal to 1", Type: "value_error.number.not_ge"})
	}
	if size < 1 || size > service.MaxPageSize {
		errs = append(errs, fieldError{Loc: []string{"query", "page_size"}, Msg: "ensure this value is between 1 and 100", Type: "value_error.number"})
	}
	return page, size, errs
}

// UploadFile godoc
// @Summary     Upload a file for processing
// @Tags        Uploads
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file       formData file   true  "File to upload"
// @Param       project_id formData string false "Project to attach the file to"
// @Success     201 {object} model.UploadResult
// @Failure     400 {object} model.ErrorDetail
// @Failure     413 {object} model.ErrorDetail
// @Router      /api/v1/uploads/ [post]
func UploadFile(svc service.FileService, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "File is required")
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			return writeError(c, fiber.StatusRequestEntityTooLarge, "File too large")
		}

		// project_id is read from the form, then from the query string.
		projectID := c.FormValue("project_id")
		if projectID == "" {
			projectID = c.Query("project_id")
		}
		if projectID != "" {
			if _, err := uuid.Parse(projectID); err != nil {
				return writeValidation(c, []fieldError{{
					Loc: []string{"body", "project_id"}, Msg: "value is not a valid uuid", Type: "type_error.uuid",
				}})
			}
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Could not read uploaded file")
		}
		defer f.Close()

		name := fh.Filename
		if name == "" {
			name = "file"
		}
		stored, err := svc.Upload(c.UserContext(), service.UploadInput{
			UserID:    middleware.GetUserID(c),
			ProjectID: projectID,
			Filename:  name,
			Size:      fh.Size,
			Reader:    f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(stored.UploadResult())
	}
}

// UploadProgress godoc
// @Summary     Processing progress of an uploaded file
// @Tags        Uploads
// @Produce     json
// @Security    BearerAuth
// @Param       file_id path     string true "File ID"
// @Success     200     {object} model.FileProgress
// @Failure     404     {object} model.ErrorDetail
// @Router      /api/v1/uploads/{file_id}/progress [get]
func UploadProgress(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := pathUUID(c, "file_id")
		if errs != nil {
			return writeValidation(c, errs)
		}
		f, err := svc.Get(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f.Progress())
	}
}

// GetFile godoc
// @Summary     Uploaded file details
// @Tags        Uploads
// @Produce     json
// @Security    BearerAuth
// @Param       file_id path     string true "File ID"
// @Success     200     {object} model.FileInfo
// @Failure     404     {object} model.ErrorDetail
// @Router      /api/v1/uploads/{file_id} [get]
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := pathUUID(c, "file_id")
		if errs != nil {
			return writeValidation(c, errs)
		}
		f, err := svc.Get(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f.Info())
	}
}

// ListProjectFiles godoc
// @Summary     Files uploaded to a project, newest first
// @Tags        Uploads
// @Produce     json
// @Security    BearerAuth
// @Param       project_id path     string true  "Project ID"
// @Param       page       query    int    false "Page (1-based)"
// @Param       page_size  query    int    false "Page size (max 100)"
// @Param       status     query    string false "Only files in this status"
// @Success     200        {object} model.FileList
// @Router      /api/v1/uploads/project/{project_id} [get]
func ListProjectFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID, errs := pathUUID(c, "project_id")
		if errs != nil {
			return writeValidation(c, errs)
		}
		page, size, errs := pageParams(c)
		if errs != nil {
			return writeValidation(c, errs)
		}

		res, err := svc.List(c.UserContext(), service.ListQuery{
			UserID:    middleware.GetUserID(c),
			ProjectID: projectID,
			Status:    c.Query("status"),
			Page:      page,
			PageSize:  size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		out := model.FileList{Files: make([]model.FileInfo, 0, len(res.Items)), Total: res.Total}
		for i := range res.Items {
			out.Files = append(out.Files, res.Items[i].Info())
		}
		return c.JSON(out)
	}
}

// DeleteFile godoc
// @Summary     Delete an uploaded file
// @Tags        Uploads
// @Security    BearerAuth
// @Param       file_id path string true "File ID"
// @Success     204
// @Failure     404 {object} model.ErrorDetail
// @Router      /api/v1/uploads/{file_id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := pathUUID(c, "file_id")
		if errs != nil {
			return writeValidation(c, errs)
		}
		if err := svc.Delete(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
