package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"

	"datamorph/docs"
	"datamorph/internal/http/middleware"
	"datamorph/internal/service"
)

// Deps are the collaborators the routes need.
type Deps struct {
	DB             Pinger
	Auth           service.AuthService
	Files          service.FileService
	Projects       service.ProjectService
	Tokens         middleware.TokenVerifier
	MaxUploadBytes int64
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes mounts the operational endpoints and the /api/v1 surface.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", Liveness())
	if d.Gatherer != nil {
		app.Get("/metrics", Metrics(d.Gatherer))
	}
	app.Get("/swagger/*", Swagger())

	requireAuth := middleware.BearerAuth(d.Tokens)
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/signup", Signup(d.Auth))
	auth.Post("/login", Login(d.Auth))
	auth.Post("/refresh", Refresh(d.Auth))
	auth.Get("/me", requireAuth, Me(d.Auth))

	uploads := api.Group("/uploads", requireAuth)
	uploads.Post("/", UploadFile(d.Files, d.MaxUploadBytes))
	uploads.Get("/project/:project_id", ListProjectFiles(d.Files))
	uploads.Get("/:file_id/progress", UploadProgress(d.Files))
	uploads.Get("/:file_id", GetFile(d.Files))
	uploads.Delete("/:file_id", DeleteFile(d.Files))

	projects := api.Group("/projects", requireAuth)
	projects.Post("/", CreateProject(d.Projects))
	projects.Get("/", ListProjects(d.Projects))
	projects.Get("/:project_id", GetProject(d.Projects))
	projects.Patch("/:project_id", UpdateProject(d.Projects))
	projects.Delete("/:project_id", DeleteProject(d.Projects))
}

// Swagger serves the UI with host and scheme taken from the incoming request.
func Swagger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		docs.SwaggerInfo.Host = c.Hostname()
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	}
}
