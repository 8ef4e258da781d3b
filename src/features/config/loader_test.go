package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const validConfig = `
externalStorageRoot: /storage/emulated/0
server:
  port: 3636
scanner:
  mode: exec
  command: "echo {{.Key}}={{.Param}}"
  timeout: 5s
`

func TestLoad_CreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, "/storage/emulated/0", manager.ExternalStorageRoot())
	assert.Equal(t, "log", manager.Get().Scanner.Mode)
	assert.Equal(t, path, manager.Path())

	// The written default must load back cleanly.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, manager.Get().Scanner, again.Get().Scanner)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), validConfig)

	manager, err := Load(path)
	require.NoError(t, err)

	cfg := manager.Get()
	assert.Equal(t, "exec", cfg.Scanner.Mode)
	assert.Equal(t, 5*time.Second, cfg.Scanner.Timeout)
	assert.Equal(t, uint32(3636), cfg.Server.Port)
}

func TestLoad_EnvOverridesStorageRoot(t *testing.T) {
	t.Setenv("SCANRELAY_STORAGE_ROOT", "/sdcard")
	path := writeConfig(t, t.TempDir(), validConfig)

	manager, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/sdcard", manager.ExternalStorageRoot())
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"missing root": `
server: {port: 1}
scanner: {mode: log}
`,
		"unknown scanner mode": `
externalStorageRoot: /s
server: {port: 1}
scanner: {mode: carrier-pigeon}
`,
		"exec without command": `
externalStorageRoot: /s
server: {port: 1}
scanner: {mode: exec}
`,
		"http without url": `
externalStorageRoot: /s
server: {port: 1}
scanner: {mode: http}
`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), body))
			assert.Error(t, err)
		})
	}
}

func TestManager_ReloadKeepsConfigOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, validConfig)
	manager, err := Load(path)
	require.NoError(t, err)

	writeConfig(t, dir, "externalStorageRoot: [")
	assert.Error(t, manager.Reload())
	assert.Equal(t, "/storage/emulated/0", manager.ExternalStorageRoot())
}

func TestManager_FollowReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, validConfig)
	manager, err := Load(path)
	require.NoError(t, err)

	writeConfig(t, dir, `
externalStorageRoot: /mnt/media
server: {port: 3636}
scanner: {mode: log}
`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan FileEvent)
	done := make(chan struct{})
	go func() {
		manager.Follow(ctx, changes)
		close(done)
	}()

	changes <- FileEvent{Path: filepath.Join(dir, "other.yaml"), EventType: FileModified}
	changes <- FileEvent{Path: path, EventType: FileModified}
	close(changes)
	<-done

	assert.Equal(t, "/mnt/media", manager.ExternalStorageRoot())
}

func TestManager_RedactsToken(t *testing.T) {
	cfg := createDefaultConfig()
	cfg.Telegram.Token = "secret-token"
	manager := NewManager(cfg)

	assert.NotContains(t, manager.GetJSON(), "secret-token")
	assert.NotContains(t, manager.GetYAML(), "secret-token")
	assert.Equal(t, "secret-token", manager.Get().Telegram.Token)
}
