package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"imgvault/internal/auth"
	"imgvault/internal/http/middleware"
	"imgvault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, validate shape, delegate to a service.
func RegisterRoutes(app *fiber.App, db *sql.DB, tokens *auth.TokenManager, userSvc service.UserService, folderSvc service.FolderService, imageSvc service.ImageService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	// Public auth routes
	api.Post("/auth/signup", Signup(userSvc))
	api.Post("/auth/login", Login(userSvc))

	// Everything else requires a valid bearer token
	authed := api.Use(middleware.RequireAuth(tokens))

	authed.Get("/auth/me", Me(userSvc))

	authed.Post("/folders", CreateFolder(folderSvc))
	authed.Get("/folders", ListFolders(folderSvc))
	authed.Get("/folders/tree", FolderTree(folderSvc))
	authed.Get("/folders/:id", GetFolder(folderSvc))
	authed.Put("/folders/:id", RenameFolder(folderSvc))
	authed.Delete("/folders/:id", DeleteFolder(folderSvc))

	authed.Post("/images/upload", UploadImage(imageSvc))
	authed.Get("/images", ListImages(imageSvc))
	authed.Get("/images/search", SearchImages(imageSvc))
	authed.Delete("/images/:id", DeleteImage(imageSvc))
}

// HealthCheck reports whether the database dependency is reachable.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness check with no dependencies.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
