package receiver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/contre95/scanrelay/src/scanning"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = scanning.StaticRoot("/storage/emulated/0")

type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []scanning.Command
	err       error
}

func (f *fakeSubmitter) Submit(cmd scanning.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.submitted = append(f.submitted, cmd)
	return "job-" + cmd.Param, nil
}

func TestReceive_SubmitsEveryCommand(t *testing.T) {
	submitter := &fakeSubmitter{}
	service := NewService(root, submitter)

	commands := service.Receive(context.Background(), scanning.Event{Kind: scanning.BootCompleted})

	want := []scanning.Command{
		{Kind: scanning.ScanVolume, Param: scanning.InternalVolume},
		{Kind: scanning.ScanVolume, Param: scanning.ExternalVolume},
	}
	assert.Equal(t, want, commands)
	assert.Equal(t, want, submitter.submitted)
}

func TestReceive_HandoffErrorsAreSwallowed(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("scanner busy")}
	service := NewService(root, submitter)

	event := scanning.Event{Kind: scanning.VolumeMounted, Path: "/storage/usb1", Scheme: scanning.FileScheme}
	commands := service.Receive(context.Background(), event)

	assert.Equal(t, []scanning.Command{{Kind: scanning.ScanMountedVolumePath, Param: "/storage/usb1"}}, commands)
	assert.Empty(t, submitter.submitted)
}

func TestReceive_DroppedEventSubmitsNothing(t *testing.T) {
	submitter := &fakeSubmitter{}
	service := NewService(root, submitter)

	event := scanning.Event{Kind: scanning.ScanFileRequested, Path: "/sdcard2/a.mp3", Scheme: scanning.FileScheme}
	assert.Empty(t, service.Receive(context.Background(), event))
	assert.Empty(t, submitter.submitted)
}

func TestPreview_DoesNotSubmit(t *testing.T) {
	submitter := &fakeSubmitter{}
	service := NewService(root, submitter)

	event := scanning.Event{Kind: scanning.ScanFileRequested, Path: "/storage/emulated/0/a.mp3", Scheme: scanning.FileScheme}
	assert.Equal(t, []scanning.Command{{Kind: scanning.ScanFilePath, Param: "/storage/emulated/0/a.mp3"}}, service.Preview(event))
	assert.Empty(t, submitter.submitted)
}

func newTestApp(submitter Submitter) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, NewService(root, submitter))
	return app
}

func post(t *testing.T, app *fiber.App, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func TestHandler_Receive(t *testing.T) {
	submitter := &fakeSubmitter{}
	app := newTestApp(submitter)

	status, body := post(t, app, "/broadcasts", BroadcastRequest{Action: "unmounted", Data: "file:///storage/usb1"})
	assert.Equal(t, fiber.StatusAccepted, status)
	assert.JSONEq(t, `[{"kind":"update_database","param":"/storage/usb1"}]`, string(body["commands"]))
	assert.Len(t, submitter.submitted, 1)
}

func TestHandler_Preview(t *testing.T) {
	submitter := &fakeSubmitter{}
	app := newTestApp(submitter)

	status, body := post(t, app, "/broadcasts/preview", BroadcastRequest{Action: "android.intent.action.MEDIA_UNMOUNTED", Data: "http://example.com/x"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body["commands"]))
	assert.Empty(t, submitter.submitted)
}

func TestHandler_RequiresAction(t *testing.T) {
	app := newTestApp(&fakeSubmitter{})

	status, body := post(t, app, "/broadcasts", map[string]string{"data": "file:///storage/usb1"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "error")
}
