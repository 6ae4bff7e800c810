package web

import (
	"vibermm/internal/dashboard"
	"vibermm/internal/notify"

	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) summary(c *fiber.Ctx) error {
	s, err := h.Devices.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(s)
}

func (h *Handlers) listWidgets(c *fiber.Ctx) error {
	return c.JSON(h.Board.Widgets())
}

func (h *Handlers) addWidget(c *fiber.Ctx) error {
	var in struct {
		Type  dashboard.WidgetType `json:"type"`
		Title string               `json:"title"`
		Data  dashboard.ChartData  `json:"data"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	w, err := h.Board.AddWidget(in.Type, in.Title, in.Data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

func (h *Handlers) removeWidget(c *fiber.Ctx) error {
	if err := h.Board.RemoveWidget(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) updateWidgetSettings(c *fiber.Ctx) error {
	var in dashboard.WidgetSettings
	if err := parseBody(c, &in); err != nil {
		return err
	}
	w, err := h.Board.UpdateWidgetSettings(c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(w)
}

// widgetData serves the chart data of a widget: the bound data source's
// when one is set, otherwise the widget's own data.
func (h *Handlers) widgetData(c *fiber.Ctx) error {
	w, err := h.Board.Widget(c.Params("id"))
	if err != nil {
		return err
	}
	if w.Settings.DataSourceID == "" {
		return c.JSON(w.Data)
	}
	data, err := h.DataSources.Resolve(c.UserContext(), w.Settings.DataSourceID)
	if err != nil {
		return err
	}
	return c.JSON(data)
}

func (h *Handlers) updateLayout(c *fiber.Ctx) error {
	var items []dashboard.LayoutItem
	if err := parseBody(c, &items); err != nil {
		return err
	}
	h.Board.UpdateWidgetLayout(items)
	return c.JSON(h.Board.Widgets())
}

func (h *Handlers) layoutChange(c *fiber.Ctx) error {
	var in struct {
		Breakpoint dashboard.Breakpoint   `json:"breakpoint"`
		Layout     []dashboard.LayoutItem `json:"layout"`
		Dragging   bool                   `json:"dragging"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.Breakpoint == "" {
		in.Breakpoint = h.Board.Breakpoint()
	}
	scheduled, err := h.Board.ApplyLayoutChange(in.Breakpoint, in.Layout, in.Dragging)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"scheduled": scheduled})
}

// changeBreakpoint takes either a breakpoint name or a container width.
func (h *Handlers) changeBreakpoint(c *fiber.Ctx) error {
	var in struct {
		Breakpoint dashboard.Breakpoint `json:"breakpoint"`
		Width      int                  `json:"width"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.Breakpoint == "" {
		in.Breakpoint = dashboard.BreakpointForWidth(in.Width)
	}
	items, err := h.Board.ChangeBreakpoint(in.Breakpoint)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"breakpoint": in.Breakpoint, "layout": items})
}

func (h *Handlers) layouts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"breakpoint": h.Board.Breakpoint(),
		"layouts":    h.Board.Layouts(),
	})
}

func (h *Handlers) saveLayout(c *fiber.Ctx) error {
	if err := h.Board.SaveLayout(c.UserContext()); err != nil {
		h.Notices.Push("Failed to save layout", notify.Error)
		return err
	}
	h.Notices.Push("Layout saved", notify.Success)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) loadLayout(c *fiber.Ctx) error {
	if !h.Board.LoadLayout(c.UserContext()) {
		h.Notices.Push("No saved layout found", notify.Info)
		return fiber.NewError(fiber.StatusNotFound, "no saved layout")
	}
	h.Notices.Push("Layout loaded", notify.Success)
	return c.JSON(h.Board.Widgets())
}

func (h *Handlers) applyPreset(c *fiber.Ctx) error {
	items, err := h.Board.ApplyPreset(c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *Handlers) templates(c *fiber.Ctx) error {
	return c.JSON(dashboard.Templates())
}

func (h *Handlers) applyTemplate(c *fiber.Ctx) error {
	widgets, err := h.Board.ApplyTemplate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	h.Notices.Push("Template applied", notify.Success)
	return c.JSON(widgets)
}

func (h *Handlers) themes(c *fiber.Ctx) error {
	return c.JSON(dashboard.Themes())
}
