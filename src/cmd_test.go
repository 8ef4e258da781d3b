package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/contre95/scanrelay/src/scanning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchCommand_PrintsCommands(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"dispatch",
		"--action", "android.intent.action.MEDIA_SCANNER_SCAN_FILE",
		"--data", "file:///sdcard/music/a.mp3",
		"--root", "/sdcard",
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())

	var got struct {
		Event    scanning.Event     `json:"event"`
		Commands []scanning.Command `json:"commands"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, scanning.ScanFileRequested, got.Event.Kind)
	assert.Equal(t, []scanning.Command{{Kind: scanning.ScanFilePath, Param: "/sdcard/music/a.mp3"}}, got.Commands)
}
