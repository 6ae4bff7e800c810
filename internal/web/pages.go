package web

import (
	"github.com/gofiber/fiber/v2"
)

// Console pages. The dashboard grid itself is driven through the API; the
// pages give an at-a-glance view without any client code.

func (h *Handlers) overviewPage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	summary, err := h.Devices.Summary(ctx)
	if err != nil {
		return err
	}
	_, patchStats, err := h.Patch.Status(ctx)
	if err != nil {
		return err
	}
	user, signedIn := h.Auth.Current(ctx)

	return c.Render("index", fiber.Map{
		"Title":      "Dashboard",
		"Summary":    summary,
		"Online":     summary.Stats.Datasets[0].Data[0],
		"Patch":      patchStats,
		"Widgets":    h.Board.Widgets(),
		"Breakpoint": h.Board.Breakpoint(),
		"Notices":    h.Notices.List(),
		"User":       user,
		"SignedIn":   signedIn,
	}, "layout")
}

func (h *Handlers) alertsPage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	active, err := h.Alerts.Active(ctx)
	if err != nil {
		return err
	}
	history, err := h.Alerts.History(ctx)
	if err != nil {
		return err
	}
	policies, err := h.Alerts.Policies(ctx)
	if err != nil {
		return err
	}
	user, signedIn := h.Auth.Current(ctx)

	return c.Render("alerts", fiber.Map{
		"Title":    "Alerts",
		"Active":   active,
		"History":  history,
		"Policies": policies,
		"Notices":  h.Notices.List(),
		"User":     user,
		"SignedIn": signedIn,
	}, "layout")
}
