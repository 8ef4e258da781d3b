package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/contre95/scanrelay/src/features/config"
	"github.com/contre95/scanrelay/src/features/metrics"
	"github.com/google/uuid"
)

var ErrJobNotFound = errors.New("job not found")

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Finished reports whether the status is terminal.
func (s JobStatus) Finished() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

type Job struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Name       string             `json:"name"`
	Status     JobStatus          `json:"status"`
	Progress   int                `json:"progress"`
	Message    string             `json:"message"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
	Logger     *slog.Logger       `json:"-"`
	LogPath    string             `json:"log_path,omitempty"`
	cancelFunc context.CancelFunc
	cancelled  bool
}

type JobProgress struct {
	JobID    string
	Progress int
	Message  string
	// Stats, when set, is merged into the job metadata instead of updating progress.
	Stats map[string]any
}

type TaskHandler interface {
	Execute(ctx context.Context, job *Job, progressChan chan<- JobProgress) error
	Cancel(jobID string) error
}

// Task defines the specific logic for a job type.
type Task interface {
	MetadataKeys() []string
	Execute(ctx context.Context, job *Job, progressUpdater func(int, string)) (map[string]any, error)
	Cleanup(job *Job) error
}

// BaseTaskHandler provides a base implementation for TaskHandler.
type BaseTaskHandler struct {
	Task Task
}

// NewBaseTaskHandler creates a new BaseTaskHandler.
func NewBaseTaskHandler(task Task) *BaseTaskHandler {
	return &BaseTaskHandler{Task: task}
}

// Execute runs the job using the provided task.
func (h *BaseTaskHandler) Execute(ctx context.Context, job *Job, progressChan chan<- JobProgress) error {
	job.Logger.Info("Starting job", "name", job.Name)

	// Cleanup runs even when metadata is incomplete so tasks can release what they hold.
	defer func() {
		if err := h.Task.Cleanup(job); err != nil {
			job.Logger.Error("Error during job cleanup", "error", err)
		}
	}()

	for _, key := range h.Task.MetadataKeys() {
		if _, ok := job.Metadata[key]; !ok {
			err := fmt.Errorf("missing %s in job metadata", key)
			job.Logger.Error("Error: " + err.Error())
			return err
		}
	}

	progressUpdater := func(percentage int, status string) {
		progressChan <- JobProgress{
			JobID:    job.ID,
			Progress: percentage,
			Message:  status,
		}
		job.Logger.Info("Progress", "percentage", percentage, "status", status)
	}

	stats, err := h.Task.Execute(ctx, job, progressUpdater)
	if stats != nil {
		progressChan <- JobProgress{JobID: job.ID, Stats: stats}
	}
	if err != nil {
		job.Logger.Error("Error during job execution", "error", err)
		return err
	}

	job.Logger.Info("Job finished successfully", "name", job.Name)
	return nil
}

// Cancel stops a running job.
// The actual cancellation is handled by the context in the job service,
// this method is for any specific cleanup required by the handler.
func (h *BaseTaskHandler) Cancel(jobID string) error {
	return nil
}

// JobService defines the interface for job management that other services will use
type JobService interface {
	StartJob(jobType string, name string, metadata map[string]any) (string, error)
	UpdateJobProgress(jobID string, progress int, message string)
	GetJob(jobID string) (Job, bool)
	CancelJob(jobID string) error
	GetJobs() []Job
}

// Service runs jobs in the background. At most one job of a given type
// runs at a time; further jobs of that type wait as pending and start
// oldest first.
type Service struct {
	jobs     map[string]*Job
	handlers map[string]TaskHandler
	onFinish []func(Job)
	mu       sync.RWMutex
	config   ConfigProvider
	ctx      context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup
}

// ConfigProvider supplies the jobs configuration; it is read on every use so
// reloads take effect for the next job.
type ConfigProvider interface {
	JobsConfig() config.Jobs
}

func NewService(cfg ConfigProvider) *Service {
	ctx, stop := context.WithCancel(context.Background())
	return &Service{
		jobs:     make(map[string]*Job),
		handlers: make(map[string]TaskHandler),
		config:   cfg,
		ctx:      ctx,
		stop:     stop,
	}
}

func (s *Service) RegisterHandler(jobType string, handler TaskHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[jobType] = handler
}

// OnFinish registers fn to be called with a snapshot of every job that
// reaches a terminal status, including pending jobs cancelled before they ran.
func (s *Service) OnFinish(fn func(Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = append(s.onFinish, fn)
}

func (s *Service) StartJob(jobType string, name string, metadata map[string]any) (string, error) {
	if s.ctx.Err() != nil {
		return "", errors.New("job service is stopped")
	}

	now := time.Now()
	job := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Name:      name,
		Status:    JobStatusPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  metadata,
	}

	if cfg := s.config.JobsConfig(); cfg.Log {
		logDir := cfg.LogPath
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		logName := fmt.Sprintf("%s-%s.log", now.Format("2006-01-02"), job.ID)
		logPath := filepath.Join(logDir, logName)
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return "", fmt.Errorf("failed to open log file: %w", err)
		}
		job.Logger = slog.New(slog.NewTextHandler(logFile, nil))
		job.LogPath = logPath
	} else {
		job.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	if !s.isJobTypeRunning(jobType) {
		job.Status = JobStatusRunning
		s.launch(job)
	}
	s.mu.Unlock()

	return job.ID, nil
}

// launch starts job in the background. Callers hold s.mu.
func (s *Service) launch(job *Job) {
	metrics.JobStarted(job.Type)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.executeJob(job)
	}()
}

func (s *Service) executeJob(job *Job) {
	s.mu.RLock()
	handler, exists := s.handlers[job.Type]
	s.mu.RUnlock()
	if !exists {
		s.finishJob(job, JobStatusFailed, "No handler registered")
		return
	}

	progressChan := make(chan JobProgress, 10)
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	s.mu.Lock()
	job.cancelFunc = cancel
	s.mu.Unlock()
	s.updateJobStatus(job.ID, JobStatusRunning, "Starting...")

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for progress := range progressChan {
			if progress.Stats != nil {
				s.mergeStats(progress.JobID, progress.Stats)
				continue
			}
			s.UpdateJobProgress(progress.JobID, progress.Progress, progress.Message)
		}
	}()
	err := handler.Execute(ctx, job, progressChan)
	close(progressChan)
	<-progressDone

	s.mu.RLock()
	cancelled := job.cancelled
	s.mu.RUnlock()

	switch {
	case cancelled || errors.Is(err, context.Canceled):
		s.finishJob(job, JobStatusCancelled, "Job cancelled")
	case err != nil:
		s.finishJob(job, JobStatusFailed, err.Error())
	default:
		s.finishJob(job, JobStatusCompleted, "Job completed successfully")
	}
}

// finishJob records the final status, notifies and starts the next pending job of the same type.
func (s *Service) finishJob(job *Job, status JobStatus, message string) {
	s.mu.Lock()
	job.Status = status
	job.Message = message
	job.UpdatedAt = time.Now()
	switch status {
	case JobStatusCompleted:
		job.Progress = 100
	case JobStatusFailed:
		job.Error = message
	}
	s.mu.Unlock()

	metrics.JobFinished(job.Type, string(status))
	s.notifyFinished(job)
	s.startNextPendingJob(job.Type)
}

// notifyFinished runs the finish hooks and the webhook for a terminal job.
func (s *Service) notifyFinished(job *Job) {
	s.mu.RLock()
	hooks := slices.Clone(s.onFinish)
	snap := snapshot(job)
	s.mu.RUnlock()

	for _, fn := range hooks {
		fn(snap)
	}
	s.executeWebhook(job)
}

func (s *Service) mergeStats(jobID string, stats map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, exists := s.jobs[jobID]; exists {
		if job.Metadata == nil {
			job.Metadata = make(map[string]any)
		}
		maps.Copy(job.Metadata, stats)
	}
}

func (s *Service) updateJobStatus(jobID string, status JobStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, exists := s.jobs[jobID]; exists {
		if job.Status.Finished() {
			return
		}
		job.Status = status
		job.Message = message
		job.UpdatedAt = time.Now()
	}
}

func (s *Service) UpdateJobProgress(jobID string, progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, exists := s.jobs[jobID]; exists {
		if job.Status.Finished() {
			return
		}
		job.Progress = progress
		job.Message = message
		job.UpdatedAt = time.Now()
	}
}

func (s *Service) CancelJob(jobID string) error {
	s.mu.Lock()
	job, exists := s.jobs[jobID]
	if !exists {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	if job.Status.Finished() {
		s.mu.Unlock()
		return fmt.Errorf("job %s already %s", jobID, job.Status)
	}

	job.cancelled = true
	job.Message = "Job cancelled"
	job.UpdatedAt = time.Now()

	if job.Status == JobStatusPending {
		// Never launched: finish it here, nothing else will.
		job.Status = JobStatusCancelled
		s.mu.Unlock()
		metrics.JobSkipped(job.Type, string(JobStatusCancelled))
		s.notifyFinished(job)
		return nil
	}

	if job.cancelFunc != nil {
		job.cancelFunc()
	}
	handler, hasHandler := s.handlers[job.Type]
	s.mu.Unlock()

	if hasHandler {
		return handler.Cancel(jobID)
	}
	return nil
}

// GetJob returns a snapshot of the job.
func (s *Service) GetJob(jobID string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return Job{}, false
	}
	return snapshot(job), true
}

// GetJobs returns snapshots of all jobs, newest first.
func (s *Service) GetJobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, snapshot(job))
	}
	slices.SortFunc(jobs, func(a, b Job) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return jobs
}

func snapshot(job *Job) Job {
	cpy := *job
	cpy.Metadata = maps.Clone(job.Metadata)
	cpy.cancelFunc = nil
	return cpy
}

func (s *Service) isJobTypeRunning(jobType string) bool {
	for _, job := range s.jobs {
		if job.Type == jobType && job.Status == JobStatusRunning {
			return true
		}
	}
	return false
}

func (s *Service) startNextPendingJob(jobType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	var nextJob *Job
	for _, job := range s.jobs {
		if job.Type == jobType && job.Status == JobStatusPending {
			if nextJob == nil || job.CreatedAt.Before(nextJob.CreatedAt) {
				nextJob = job
			}
		}
	}
	if nextJob != nil {
		nextJob.Status = JobStatusRunning
		s.launch(nextJob)
	}
}

// CleanupOldJobs forgets finished jobs that have not changed for maxAge.
func (s *Service) CleanupOldJobs(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) >= maxAge && job.Status.Finished() {
			if job.LogPath != "" {
				os.Remove(job.LogPath)
			}
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Stop cancels running jobs and waits for them to return.
func (s *Service) Stop() {
	s.stop()
	s.wg.Wait()
}

// executeWebhook executes the configured webhook command for job completion
func (s *Service) executeWebhook(job *Job) {
	webhooks := s.config.JobsConfig().Webhooks
	if !webhooks.Enabled {
		return
	}

	if !slices.Contains(webhooks.JobTypes, job.Type) && !slices.Contains(webhooks.JobTypes, "*") {
		return
	}

	s.mu.RLock()
	data := struct {
		Name     string
		Type     string
		Status   string
		Message  string
		Param    string
		Duration string
	}{
		Name:     job.Name,
		Type:     job.Type,
		Status:   string(job.Status),
		Message:  job.Message,
		Duration: time.Since(job.CreatedAt).Round(time.Second).String(),
	}
	if param, ok := job.Metadata["param"].(string); ok {
		data.Param = param
	}
	s.mu.RUnlock()

	tmpl, err := template.New("webhook").Parse(webhooks.Command)
	if err != nil {
		job.Logger.Error("Failed to parse webhook template", "error", err)
		return
	}

	var command strings.Builder
	if err := tmpl.Execute(&command, data); err != nil {
		job.Logger.Error("Failed to execute webhook template", "error", err)
		return
	}

	go s.executeWebhookCommand(command.String(), job)
}

// executeWebhookCommand executes the webhook command safely
func (s *Service) executeWebhookCommand(command string, job *Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		job.Logger.Error("Webhook execution failed", "command", command, "error", err)
	} else {
		job.Logger.Info("Webhook executed successfully", "command", command)
	}
}
