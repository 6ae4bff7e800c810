// Package apiclient is a REST client for the console API, used by tools
// that talk to a running console instead of its database.
package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vibermm/internal/devices"
	"vibermm/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	StatusText string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d %s", e.StatusCode, e.StatusText)
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New returns a client for the API rooted at baseURL, e.g.
// http://localhost:3000/api.
func New(baseURL string, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: client, logger: logger}
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().SetContext(ctx).SetResult(result)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("API call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), StatusText: http.StatusText(resp.StatusCode())}
	}
	return nil
}

func (c *Client) GetDevices(ctx context.Context) ([]models.Device, error) {
	var out []models.Device
	if err := c.do(ctx, http.MethodGet, "/devices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateDevice(ctx context.Context, id string, p devices.Patch) (models.Device, error) {
	var out models.Device
	if err := c.do(ctx, http.MethodPatch, "/devices/"+id, p, &out); err != nil {
		return models.Device{}, err
	}
	return out, nil
}

func (c *Client) GetMetrics(ctx context.Context, deviceID string) (models.DeviceMetrics, error) {
	var out models.DeviceMetrics
	if err := c.do(ctx, http.MethodGet, "/devices/"+deviceID+"/metrics", nil, &out); err != nil {
		return models.DeviceMetrics{}, err
	}
	return out, nil
}

func (c *Client) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	var out []models.Alert
	if err := c.do(ctx, http.MethodGet, "/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDashboardData(ctx context.Context) (devices.Summary, error) {
	var out devices.Summary
	if err := c.do(ctx, http.MethodGet, "/dashboard/summary", nil, &out); err != nil {
		return devices.Summary{}, err
	}
	return out, nil
}

func (c *Client) GetAssets(ctx context.Context) ([]models.Asset, error) {
	var out []models.Asset
	if err := c.do(ctx, http.MethodGet, "/assets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRules(ctx context.Context) ([]models.AutomationRule, error) {
	var out []models.AutomationRule
	if err := c.do(ctx, http.MethodGet, "/rules", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRule posts r without an id; the server assigns one.
func (c *Client) CreateRule(ctx context.Context, r models.AutomationRule) (models.AutomationRule, error) {
	r.ID = ""
	var out models.AutomationRule
	if err := c.do(ctx, http.MethodPost, "/rules", r, &out); err != nil {
		return models.AutomationRule{}, err
	}
	return out, nil
}
