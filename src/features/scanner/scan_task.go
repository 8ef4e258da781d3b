package scanner

import (
	"context"
	"fmt"

	"github.com/contre95/scanrelay/src/features/jobs"
	"github.com/contre95/scanrelay/src/scanning"
)

// ScanTask implements jobs.Task by delivering one command to the scan service.
type ScanTask struct {
	scanService scanning.ScanService
}

// NewScanTask creates a new ScanTask.
func NewScanTask(scanService scanning.ScanService) *ScanTask {
	return &ScanTask{scanService: scanService}
}

// MetadataKeys returns the required metadata keys for a scan job.
func (t *ScanTask) MetadataKeys() []string {
	return []string{"kind", "param"}
}

// Execute hands the job's command to the scan service.
func (t *ScanTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	kind, _ := job.Metadata["kind"].(string)
	param, _ := job.Metadata["param"].(string)
	cmd := scanning.Command{Kind: scanning.CommandKind(kind), Param: param}

	progressUpdater(10, "Handing "+cmd.String()+" to the scan service")
	if err := t.scanService.Start(ctx, cmd); err != nil {
		return nil, fmt.Errorf("scan service rejected %s: %w", cmd, err)
	}
	progressUpdater(100, "Scan service accepted "+cmd.String())

	return map[string]any{"bundle": cmd.Bundle()}, nil
}

// Cleanup performs cleanup after job execution.
func (t *ScanTask) Cleanup(job *jobs.Job) error {
	return nil
}
