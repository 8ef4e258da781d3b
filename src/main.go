package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contre95/scanrelay/src/features/config"
	"github.com/contre95/scanrelay/src/features/hosting"
	"github.com/contre95/scanrelay/src/features/jobs"
	"github.com/contre95/scanrelay/src/features/logging"
	"github.com/contre95/scanrelay/src/features/receiver"
	"github.com/contre95/scanrelay/src/features/scanner"
	"github.com/contre95/scanrelay/src/infra/queue"
	"github.com/contre95/scanrelay/src/infra/scanservice"
	"github.com/contre95/scanrelay/src/infra/watcher"
	"github.com/contre95/scanrelay/src/scanning"
)

const (
	jobRetention    = 24 * time.Hour
	cleanupInterval = time.Hour
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// serve wires every feature together and blocks until ctx is cancelled.
func serve(ctx context.Context, cfgManager *config.Manager) error {
	slog.SetDefault(logging.SetupLogger(cfgManager))

	scanService, err := scanservice.New(cfgManager.Get().Scanner)
	if err != nil {
		return fmt.Errorf("failed to create scan service: %w", err)
	}
	slog.Info("Scan service ready", "mode", cfgManager.Get().Scanner.Mode)

	// Create the job service, one job type per command kind
	jobService := jobs.NewService(cfgManager)
	defer jobService.Stop()

	scanTask := scanner.NewScanTask(scanService)
	for _, jobType := range scanning.JobTypes() {
		jobService.RegisterHandler(jobType, jobs.NewBaseTaskHandler(scanTask))
	}

	// Create the scanner and receiver services
	scannerService := scanner.NewService(jobService, queue.NewInMemoryQueue())
	jobService.OnFinish(scannerService.HandleJobFinished)
	receiverService := receiver.NewService(cfgManager, scannerService)

	if cfgManager.Get().HotReload {
		changes := make(chan config.FileEvent, 1)
		configWatcher, err := watcher.NewWatcher(changes, watcher.DefaultDebounce)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		if err := configWatcher.Start(ctx, cfgManager.Path()); err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
		defer configWatcher.Stop()
		go cfgManager.Follow(ctx, changes)
	}

	go cleanupJobs(ctx, jobService)

	// Create and start the Telegram bot if enabled
	if cfgManager.Get().Telegram.Enabled {
		telegramBot, err := hosting.NewTelegramBot(cfgManager, receiverService, scannerService, jobService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			defer telegramBot.Stop()
			slog.Info("Telegram bot started")
		}
	}

	server := hosting.NewServer(cfgManager, receiverService, scannerService, jobService)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	slog.Info("Server gracefully shut down.")
	return nil
}

func cleanupJobs(ctx context.Context, jobService *jobs.Service) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := jobService.CleanupOldJobs(jobRetention); removed > 0 {
				slog.Debug("Removed old jobs", "count", removed)
			}
		}
	}
}
