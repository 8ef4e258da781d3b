package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the job service over HTTP.
type Handler struct {
	service *Service
}

// JobResponse wraps a job with navigation links.
type JobResponse struct {
	Job   Job               `json:"job"`
	Links map[string]string `json:"links"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleJobList lists jobs, optionally filtered by ?status= and ?type=.
func (h *Handler) HandleJobList(c *fiber.Ctx) error {
	status := c.Query("status")
	jobType := c.Query("type")

	jobs := make([]Job, 0)
	for _, job := range h.service.GetJobs() {
		if status != "" && string(job.Status) != status {
			continue
		}
		if jobType != "" && job.Type != jobType {
			continue
		}
		jobs = append(jobs, job)
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

func (h *Handler) HandleJobStatus(c *fiber.Ctx) error {
	jobID := c.Params("id")
	job, exists := h.service.GetJob(jobID)
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrJobNotFound.Error()})
	}

	baseURL := c.BaseURL()
	return c.JSON(&JobResponse{
		Job: job,
		Links: map[string]string{
			"self":   fmt.Sprintf("%s/jobs/%s", baseURL, job.ID),
			"logs":   fmt.Sprintf("%s/jobs/%s/logs", baseURL, job.ID),
			"cancel": fmt.Sprintf("%s/jobs/%s/cancel", baseURL, job.ID),
		},
	})
}

// HandleJobLogs returns the job's log file, when job logging is on.
func (h *Handler) HandleJobLogs(c *fiber.Ctx) error {
	job, exists := h.service.GetJob(c.Params("id"))
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrJobNotFound.Error()})
	}
	if job.LogPath == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job logging is disabled"})
	}
	content, err := os.ReadFile(job.LogPath)
	if err != nil {
		slog.Error("Failed to read job log", "job", job.ID, "path", job.LogPath, "error", err)
		return err
	}
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.Send(content)
}

func (h *Handler) HandleCancelJob(c *fiber.Ctx) error {
	jobID := c.Params("id")

	if err := h.service.CancelJob(jobID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	job, _ := h.service.GetJob(jobID)
	return c.JSON(fiber.Map{"job": job})
}

// HandleClearFinishedJobs forgets every finished job.
func (h *Handler) HandleClearFinishedJobs(c *fiber.Ctx) error {
	removed := h.service.CleanupOldJobs(0)
	slog.Info("Cleared finished jobs", "count", removed)
	return c.JSON(fiber.Map{"removed": removed})
}
