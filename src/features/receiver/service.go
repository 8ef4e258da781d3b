package receiver

import (
	"context"
	"log/slog"

	"github.com/contre95/scanrelay/src/features/metrics"
	"github.com/contre95/scanrelay/src/scanning"
)

// Submitter accepts commands for delivery to the scan service.
type Submitter interface {
	Submit(cmd scanning.Command) (string, error)
}

// Service routes incoming events to scan commands.
type Service struct {
	roots     scanning.StorageRootProvider
	submitter Submitter
}

// NewService creates a new receiver service.
func NewService(roots scanning.StorageRootProvider, submitter Submitter) *Service {
	return &Service{roots: roots, submitter: submitter}
}

// Receive dispatches event and hands every resulting command to the
// scanner. Handoff failures are logged and do not affect the result.
func (s *Service) Receive(ctx context.Context, event scanning.Event) []scanning.Command {
	commands := s.route(event)
	for _, cmd := range commands {
		if err := ctx.Err(); err != nil {
			slog.Warn("Dropping command, request cancelled", "command", cmd.String(), "error", err)
			metrics.RecordRejected(cmd)
			continue
		}
		if _, err := s.submitter.Submit(cmd); err != nil {
			slog.Warn("Scanner did not accept command", "command", cmd.String(), "error", err)
			metrics.RecordRejected(cmd)
		}
	}
	return commands
}

// Preview returns the commands event would produce without delivering them.
func (s *Service) Preview(event scanning.Event) []scanning.Command {
	return scanning.Dispatch(event, s.roots.ExternalStorageRoot())
}

func (s *Service) route(event scanning.Event) []scanning.Command {
	commands := scanning.Dispatch(event, s.roots.ExternalStorageRoot())
	slog.Debug("Routed broadcast", "action", event.Kind, "path", event.Path, "commands", len(commands))
	metrics.RecordDispatch(event, commands)
	return commands
}
