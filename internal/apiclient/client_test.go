package apiclient

import (
	"context"
	"net/http/httptest"
	"testing"

	"vibermm/internal/dashboard"
	"vibermm/internal/devices"
	"vibermm/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, app *fiber.App) *Client {
	t.Helper()
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", zap.NewNop())
}

func TestClientRoundTrips(t *testing.T) {
	app := fiber.New()
	api := app.Group("/api")
	api.Get("/devices", func(c *fiber.Ctx) error {
		return c.JSON([]models.Device{{ID: "device-1", Name: "DESKTOP-001"}})
	})
	api.Patch("/devices/:id", func(c *fiber.Ctx) error {
		var p devices.Patch
		if err := c.BodyParser(&p); err != nil {
			return err
		}
		return c.JSON(models.Device{ID: c.Params("id"), Name: *p.Name})
	})
	api.Get("/dashboard/summary", func(c *fiber.Ctx) error {
		return c.JSON(devices.Summary{Devices: 5, Alerts: 3, Uptime: 60, Stats: dashboard.ChartData{Labels: []string{"Online"}}})
	})
	api.Post("/rules", func(c *fiber.Ctx) error {
		var r models.AutomationRule
		if err := c.BodyParser(&r); err != nil {
			return err
		}
		if r.ID != "" {
			return fiber.NewError(fiber.StatusBadRequest, "id must be empty")
		}
		r.ID = "rule-new"
		return c.Status(fiber.StatusCreated).JSON(r)
	})

	client := newTestClient(t, app)
	ctx := context.Background()

	list, err := client.GetDevices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "DESKTOP-001", list[0].Name)

	name := "DESKTOP-RENAMED"
	d, err := client.UpdateDevice(ctx, "device-1", devices.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "device-1", d.ID)
	assert.Equal(t, name, d.Name)

	sum, err := client.GetDashboardData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Devices)
	assert.Equal(t, 60.0, sum.Uptime)

	r, err := client.CreateRule(ctx, models.AutomationRule{ID: "client-side", Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "rule-new", r.ID)
}

func TestClientAPIError(t *testing.T) {
	app := fiber.New()
	app.Get("/api/alerts", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	})

	client := newTestClient(t, app)

	_, err := client.GetAlerts(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "API error: 503 Service Unavailable")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.StatusCode)

	_, err = client.GetRules(context.Background())
	assert.EqualError(t, err, "API error: 404 Not Found")
}
