package receiver

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Handler handles HTTP requests for the receiver feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new receiver handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// BroadcastRequest is a raw platform notification.
type BroadcastRequest struct {
	Action string `json:"action" validate:"required"`
	Data   string `json:"data"`
}

// Receive routes a broadcast and delivers the resulting commands.
func (h *Handler) Receive(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	commands := h.service.Receive(c.UserContext(), ParseBroadcast(req.Action, req.Data))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"commands": commands})
}

// Preview routes a broadcast without delivering anything.
func (h *Handler) Preview(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	commands := h.service.Preview(ParseBroadcast(req.Action, req.Data))
	return c.JSON(fiber.Map{"commands": commands})
}

func parseRequest(c *fiber.Ctx) (BroadcastRequest, error) {
	var req BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}
