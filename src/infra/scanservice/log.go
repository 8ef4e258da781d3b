package scanservice

import (
	"context"
	"log/slog"

	"github.com/contre95/scanrelay/src/scanning"
)

// LogService only logs the commands it is given.
type LogService struct{}

func NewLogService() *LogService {
	return &LogService{}
}

func (s *LogService) Start(ctx context.Context, cmd scanning.Command) error {
	slog.Info("Scan requested", "kind", cmd.Kind, "extras", cmd.Bundle())
	return nil
}
