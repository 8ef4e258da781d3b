package scanner

import (
	"errors"
	"log/slog"

	"github.com/contre95/scanrelay/src/scanning"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Handler handles HTTP requests for the scanner feature.
type Handler struct {
	service *Service
	roots   scanning.StorageRootProvider
}

// NewHandler creates a new scanner handler.
func NewHandler(service *Service, roots scanning.StorageRootProvider) *Handler {
	return &Handler{service: service, roots: roots}
}

// CommandRequest submits a command directly, bypassing the dispatcher.
type CommandRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=scan_volume scan_file scan_volume_path update_database"`
	Param string `json:"param" validate:"required"`
}

// GetPending lists the commands still being handled.
func (h *Handler) GetPending(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"pending": h.service.Pending()})
}

// SubmitCommand queues a command for the scan service.
func (h *Handler) SubmitCommand(c *fiber.Ctx) error {
	var req CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	cmd := scanning.Command{Kind: scanning.CommandKind(req.Kind), Param: req.Param}
	if cmd.Kind == scanning.ScanFilePath && !scanning.WithinRoot(cmd.Param, h.roots.ExternalStorageRoot()) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "file is outside the external storage root"})
	}
	jobID, err := h.service.Submit(cmd)
	if err != nil {
		if errors.Is(err, ErrAlreadyPending) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		slog.Error("Failed to submit command", "command", cmd.String(), "error", err)
		return err
	}
	slog.Info("Command submitted", "command", cmd.String(), "job", jobID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": jobID, "command": cmd})
}
