package receiver

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the receiver routes.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	broadcasts := app.Group("/broadcasts")
	broadcasts.Post("/", handler.Receive)
	broadcasts.Post("/preview", handler.Preview)
}
