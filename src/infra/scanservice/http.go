package scanservice

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/contre95/scanrelay/src/scanning"
	"github.com/gofiber/fiber/v2"
)

// HTTPService posts each command as JSON to a remote scan service.
type HTTPService struct {
	url     string
	timeout time.Duration
}

func NewHTTPService(endpoint string, timeout time.Duration) (*HTTPService, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid scanner url %q", endpoint)
	}
	return &HTTPService{url: endpoint, timeout: timeout}, nil
}

func (s *HTTPService) Start(ctx context.Context, cmd scanning.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}

	agent := fiber.Post(s.url).JSON(newPayload(cmd)).Timeout(timeout)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("failed to reach scan service: %w", errors.Join(errs...))
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("scan service answered %d: %s", code, body)
	}
	return nil
}
