package web

import (
	"errors"
	"time"

	"vibermm/internal/alerts"
	"vibermm/internal/assets"
	"vibermm/internal/auth"
	"vibermm/internal/companies"
	"vibermm/internal/dashboard"
	"vibermm/internal/datasource"
	"vibermm/internal/devices"
	"vibermm/internal/patch"
	"vibermm/internal/rules"
	"vibermm/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var notFoundErrs = []error{
	devices.ErrNotFound,
	alerts.ErrNotFound,
	alerts.ErrPolicyNotFound,
	assets.ErrNotFound,
	companies.ErrNotFound,
	dashboard.ErrNotFound,
	dashboard.ErrUnknownPreset,
	dashboard.ErrUnknownTemplate,
	datasource.ErrNotFound,
	patch.ErrNotFound,
}

var invalidErrs = []error{
	devices.ErrInvalid,
	alerts.ErrInvalidPolicy,
	assets.ErrInvalidAction,
	assets.ErrInvalidTable,
	companies.ErrInvalid,
	dashboard.ErrInvalidType,
	dashboard.ErrInvalidBreakpoint,
	dashboard.ErrUnknownTheme,
	datasource.ErrInvalidType,
	datasource.ErrNameMissing,
	datasource.ErrNoEndpoint,
	patch.ErrInvalid,
	rules.ErrInvalid,
}

func statusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	if errors.Is(err, auth.ErrNotSignedIn) {
		return fiber.StatusUnauthorized
	}
	for _, target := range notFoundErrs {
		if errors.Is(err, target) {
			return fiber.StatusNotFound
		}
	}
	for _, target := range invalidErrs {
		if errors.Is(err, target) {
			return fiber.StatusBadRequest
		}
	}
	return fiber.StatusInternalServerError
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

// requestLogger logs one line per request and records it in the HTTP
// metrics. Handler errors are rendered here so the logged status is final.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		telemetry.ObserveRequest(c.Method(), route, status, started)
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(started)),
		)
		return nil
	}
}

// requirePermission lets the request through only for a signed-in user
// holding perm.
func (h *Handlers) requirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := h.Auth.Current(c.UserContext())
		if !ok {
			return auth.ErrNotSignedIn
		}
		if !u.Can(perm) {
			return fiber.NewError(fiber.StatusForbidden, "missing permission "+perm)
		}
		return c.Next()
	}
}
