package scanner

import (
	"github.com/contre95/scanrelay/src/scanning"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the scanner routes.
func RegisterRoutes(app *fiber.App, service *Service, roots scanning.StorageRootProvider) {
	handler := NewHandler(service, roots)

	scanner := app.Group("/scanner")
	scanner.Get("/pending", handler.GetPending)
	scanner.Post("/commands", handler.SubmitCommand)
}
