package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/contre95/scanrelay/src/features/config"
	"github.com/contre95/scanrelay/src/features/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingTask waits on release (or ctx) before returning.
type blockingTask struct {
	release chan struct{}
	err     error
	mu      sync.Mutex
	started []string
}

func newBlockingTask() *blockingTask {
	return &blockingTask{release: make(chan struct{})}
}

func (t *blockingTask) MetadataKeys() []string { return []string{"param"} }

func (t *blockingTask) Execute(ctx context.Context, job *Job, progress func(int, string)) (map[string]any, error) {
	t.mu.Lock()
	t.started = append(t.started, job.Metadata["param"].(string))
	t.mu.Unlock()

	progress(50, "halfway")
	select {
	case <-t.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return map[string]any{"done": true}, t.err
}

func (t *blockingTask) Cleanup(job *Job) error { return nil }

func (t *blockingTask) startedParams() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.started...)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(config.NewManager(&config.Config{}))
	t.Cleanup(s.Stop)
	return s
}

func waitStatus(t *testing.T, s *Service, id string, status JobStatus) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		job, _ = s.GetJob(id)
		return job.Status == status
	}, 2*time.Second, 5*time.Millisecond, "job %s never reached %s", id, status)
	return job
}

func TestService_CompletesJobAndMergesStats(t *testing.T) {
	s := newTestService(t)
	task := newBlockingTask()
	s.RegisterHandler("scan_file", NewBaseTaskHandler(task))
	close(task.release)

	id, err := s.StartJob("scan_file", "Scan", map[string]any{"param": "/a"})
	require.NoError(t, err)

	job := waitStatus(t, s, id, JobStatusCompleted)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, true, job.Metadata["done"])
}

func TestService_SerializesJobsOfSameType(t *testing.T) {
	s := newTestService(t)
	task := newBlockingTask()
	s.RegisterHandler("scan_volume", NewBaseTaskHandler(task))

	first, err := s.StartJob("scan_volume", "Scan internal", map[string]any{"param": "internal"})
	require.NoError(t, err)
	second, err := s.StartJob("scan_volume", "Scan external", map[string]any{"param": "external"})
	require.NoError(t, err)

	waitStatus(t, s, first, JobStatusRunning)
	job, _ := s.GetJob(second)
	assert.Equal(t, JobStatusPending, job.Status)

	close(task.release)
	waitStatus(t, s, first, JobStatusCompleted)
	waitStatus(t, s, second, JobStatusCompleted)
	assert.Equal(t, []string{"internal", "external"}, task.startedParams())
}

func TestService_FailedTask(t *testing.T) {
	s := newTestService(t)
	task := newBlockingTask()
	task.err = errors.New("scanner unreachable")
	close(task.release)
	s.RegisterHandler("update_database", NewBaseTaskHandler(task))

	id, err := s.StartJob("update_database", "Update", map[string]any{"param": "/storage/usb1"})
	require.NoError(t, err)

	job := waitStatus(t, s, id, JobStatusFailed)
	assert.Equal(t, "scanner unreachable", job.Error)
}

func TestService_MissingMetadataFails(t *testing.T) {
	s := newTestService(t)
	s.RegisterHandler("scan_file", NewBaseTaskHandler(newBlockingTask()))

	id, err := s.StartJob("scan_file", "Scan", map[string]any{})
	require.NoError(t, err)

	job := waitStatus(t, s, id, JobStatusFailed)
	assert.Contains(t, job.Message, "missing param")
}

func TestService_NoHandlerFails(t *testing.T) {
	s := newTestService(t)

	id, err := s.StartJob("nope", "Nothing", nil)
	require.NoError(t, err)
	waitStatus(t, s, id, JobStatusFailed)
}

func TestService_CancelRunningAndPending(t *testing.T) {
	s := newTestService(t)
	task := newBlockingTask()
	s.RegisterHandler("scan_file", NewBaseTaskHandler(task))

	var mu sync.Mutex
	finished := map[string]JobStatus{}
	s.OnFinish(func(job Job) {
		mu.Lock()
		finished[job.ID] = job.Status
		mu.Unlock()
	})

	running, _ := s.StartJob("scan_file", "A", map[string]any{"param": "/a"})
	pending, _ := s.StartJob("scan_file", "B", map[string]any{"param": "/b"})
	waitStatus(t, s, running, JobStatusRunning)

	require.NoError(t, s.CancelJob(pending))
	waitStatus(t, s, pending, JobStatusCancelled)

	require.NoError(t, s.CancelJob(running))
	waitStatus(t, s, running, JobStatusCancelled)

	assert.ErrorIs(t, s.CancelJob("missing"), ErrJobNotFound)
	assert.Error(t, s.CancelJob(running))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return finished[running] == JobStatusCancelled && finished[pending] == JobStatusCancelled
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"/a"}, task.startedParams())
}

func TestService_CleanupOldJobs(t *testing.T) {
	s := newTestService(t)
	task := newBlockingTask()
	close(task.release)
	s.RegisterHandler("scan_file", NewBaseTaskHandler(task))

	id, _ := s.StartJob("scan_file", "Scan", map[string]any{"param": "/a"})
	waitStatus(t, s, id, JobStatusCompleted)

	assert.Equal(t, 0, s.CleanupOldJobs(time.Hour))
	assert.Equal(t, 1, s.CleanupOldJobs(0))
	_, exists := s.GetJob(id)
	assert.False(t, exists)
}

func TestService_StopRejectsNewJobs(t *testing.T) {
	s := NewService(config.NewManager(&config.Config{}))
	s.Stop()
	_, err := s.StartJob("scan_file", "Scan", nil)
	assert.Error(t, err)
}

func TestService_CancelPendingCountsAsFinished(t *testing.T) {
	s := newTestService(t)
	task := newBlockingTask()
	s.RegisterHandler("scan_volume_path", NewBaseTaskHandler(task))

	running, _ := s.StartJob("scan_volume_path", "A", map[string]any{"param": "/a"})
	pending, _ := s.StartJob("scan_volume_path", "B", map[string]any{"param": "/b"})
	waitStatus(t, s, running, JobStatusRunning)

	cancelled := metrics.JobsFinished.WithLabelValues("scan_volume_path", string(JobStatusCancelled))
	before := testutil.ToFloat64(cancelled)
	gauge := testutil.ToFloat64(metrics.JobsRunning)

	require.NoError(t, s.CancelJob(pending))
	assert.Equal(t, before+1, testutil.ToFloat64(cancelled))
	assert.Equal(t, gauge, testutil.ToFloat64(metrics.JobsRunning))

	close(task.release)
	waitStatus(t, s, running, JobStatusCompleted)
}

func TestService_ReadsConfigOnEveryJob(t *testing.T) {
	cfg := config.NewManager(&config.Config{})
	s := NewService(cfg)
	t.Cleanup(s.Stop)

	task := newBlockingTask()
	close(task.release)
	s.RegisterHandler("scan_file", NewBaseTaskHandler(task))

	first, err := s.StartJob("scan_file", "Before", map[string]any{"param": "/a"})
	require.NoError(t, err)
	job := waitStatus(t, s, first, JobStatusCompleted)
	assert.Empty(t, job.LogPath)

	logDir := t.TempDir()
	cfg.Update(&config.Config{Jobs: config.Jobs{Log: true, LogPath: logDir}})

	second, err := s.StartJob("scan_file", "After", map[string]any{"param": "/b"})
	require.NoError(t, err)
	job = waitStatus(t, s, second, JobStatusCompleted)
	assert.Equal(t, logDir, filepath.Dir(job.LogPath))
	assert.FileExists(t, job.LogPath)
}
