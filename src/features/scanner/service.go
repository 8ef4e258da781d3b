package scanner

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/contre95/scanrelay/src/features/jobs"
	"github.com/contre95/scanrelay/src/scanning"
)

// ErrAlreadyPending is returned when an identical command is still being handled.
var ErrAlreadyPending = errors.New("identical command already pending")

// JobStarter is the part of the job service the scanner needs.
type JobStarter interface {
	StartJob(jobType string, name string, metadata map[string]any) (string, error)
}

// Service hands commands over to the scan service through background jobs.
type Service struct {
	jobs  JobStarter
	queue Queue
	mu    sync.Mutex
}

// NewService creates a new scanner service.
func NewService(jobService JobStarter, queue Queue) *Service {
	return &Service{jobs: jobService, queue: queue}
}

// Submit schedules cmd and returns the id of the job that will deliver it.
func (s *Service) Submit(cmd scanning.Command) (string, error) {
	if cmd.Key() == "" {
		return "", fmt.Errorf("unknown command kind %q", cmd.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := PendingItem{
		ID:        pendingID(cmd),
		Command:   cmd,
		Timestamp: time.Now(),
	}
	if err := s.queue.Add(item); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return "", ErrAlreadyPending
		}
		return "", err
	}

	jobID, err := s.jobs.StartJob(cmd.Kind.JobType(), jobName(cmd), map[string]any{
		"kind":       string(cmd.Kind),
		"param":      cmd.Param,
		"pending_id": item.ID,
	})
	if err != nil {
		s.queue.Remove(item.ID)
		return "", fmt.Errorf("failed to start %s job: %w", cmd.Kind, err)
	}

	item.JobID = jobID
	if err := s.queue.Update(item); err != nil {
		slog.Warn("Pending command vanished before its job id was recorded", "command", cmd.String(), "error", err)
	}
	slog.Debug("Command handed to scanner", "command", cmd.String(), "job", jobID)
	return jobID, nil
}

// HandleJobFinished releases the pending slot of a finished scan job.
func (s *Service) HandleJobFinished(job jobs.Job) {
	id, ok := job.Metadata["pending_id"].(string)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.queue.Remove(id); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("Failed to release pending command", "id", id, "error", err)
	}
}

// Pending returns the commands still being handled, oldest first.
func (s *Service) Pending() []PendingItem {
	all := s.queue.GetAll()
	items := make([]PendingItem, 0, len(all))
	for _, item := range all {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b PendingItem) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return items
}

func jobName(cmd scanning.Command) string {
	switch cmd.Kind {
	case scanning.ScanVolume:
		return "Scan " + cmd.Param + " volume"
	case scanning.ScanFilePath:
		return "Scan file " + cmd.Param
	case scanning.ScanMountedVolumePath:
		return "Scan mounted volume " + cmd.Param
	case scanning.UpdateDatabaseForPath:
		return "Update database for " + cmd.Param
	}
	return cmd.String()
}
