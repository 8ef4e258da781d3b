package config

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_Formats(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app, NewManager(createDefaultConfig()))

	resp, err := app.Test(httptest.NewRequest("GET", "/config?fmt=json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"ExternalStorageRoot":"/storage/emulated/0"`)

	resp, err = app.Test(httptest.NewRequest("GET", "/config", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "externalStorageRoot: /storage/emulated/0")

	resp, err = app.Test(httptest.NewRequest("GET", "/config?fmt=toml", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReloadConfig_WithoutFileFails(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app, NewManager(createDefaultConfig()))

	resp, err := app.Test(httptest.NewRequest("POST", "/config/reload", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
