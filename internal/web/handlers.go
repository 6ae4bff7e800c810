package web

import (
	"fmt"

	"vibermm/internal/alerts"
	"vibermm/internal/assets"
	"vibermm/internal/auth"
	"vibermm/internal/datasource"
	"vibermm/internal/devices"
	"vibermm/internal/models"
	"vibermm/internal/notify"

	"github.com/gofiber/fiber/v2"
)

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

// ---------- DEVICES ----------

func (h *Handlers) listDevices(c *fiber.Ctx) error {
	list, err := h.Devices.List(c.UserContext(), devices.Filter{
		Search: c.Query("search"),
		OSType: c.Query("os"),
		OSName: c.Query("osName"),
		Type:   c.Query("type"),
		Status: c.Query("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handlers) getDevice(c *fiber.Ctx) error {
	d, err := h.Devices.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (h *Handlers) addDevice(c *fiber.Ctx) error {
	var in models.Device
	if err := parseBody(c, &in); err != nil {
		return err
	}
	d, err := h.Devices.Add(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Notices.Push(fmt.Sprintf("Device %s added", d.Name), notify.Success)
	return c.Status(fiber.StatusCreated).JSON(d)
}

func (h *Handlers) updateDevice(c *fiber.Ctx) error {
	var p devices.Patch
	if err := parseBody(c, &p); err != nil {
		return err
	}
	d, err := h.Devices.Update(c.UserContext(), c.Params("id"), p)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (h *Handlers) deleteDevices(c *fiber.Ctx) error {
	var in struct {
		IDs []string `json:"ids"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	n, err := h.Devices.DeleteMany(c.UserContext(), in.IDs)
	if err != nil {
		h.Notices.Push("Failed to delete devices", notify.Error)
		return err
	}
	msg := devices.DeletedMessage(n)
	h.Notices.Push(msg, notify.Success)
	return c.JSON(fiber.Map{"deleted": n, "message": msg})
}

func (h *Handlers) deviceMetrics(c *fiber.Ctx) error {
	m, err := h.Devices.Metrics(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(m)
}

// ---------- ALERTS ----------

func (h *Handlers) listAlerts(c *fiber.Ctx) error {
	list, err := h.Alerts.Alerts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handlers) alertEvents(c *fiber.Ctx) error {
	var (
		list []models.AlertEvent
		err  error
	)
	switch view := c.Query("view", "active"); view {
	case "active":
		list, err = h.Alerts.Active(c.UserContext())
	case "history":
		list, err = h.Alerts.History(c.UserContext())
	default:
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown view %q", view))
	}
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// acknowledgeEvent records the signed-in user as acknowledger unless the
// body names one.
func (h *Handlers) acknowledgeEvent(c *fiber.Ctx) error {
	var in struct {
		By string `json:"by"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	if in.By == "" {
		if u, ok := h.Auth.Current(c.UserContext()); ok {
			in.By = u.DisplayName
		}
	}

	ev, err := h.Alerts.Acknowledge(c.UserContext(), c.Params("id"), in.By)
	if err != nil {
		return err
	}
	h.Notices.Push("Alert acknowledged", notify.Success)
	return c.JSON(ev)
}

func (h *Handlers) listPolicies(c *fiber.Ctx) error {
	list, err := h.Alerts.Policies(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handlers) policyForm(c *fiber.Ctx) error {
	return c.JSON(alerts.NewPolicyForm())
}

func (h *Handlers) addPolicy(c *fiber.Ctx) error {
	var in models.AlertPolicy
	if err := parseBody(c, &in); err != nil {
		return err
	}
	p, err := h.Alerts.AddPolicy(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Notices.Push(fmt.Sprintf("Policy %s created", p.Name), notify.Success)
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handlers) deletePolicy(c *fiber.Ctx) error {
	if err := h.Alerts.DeletePolicy(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ---------- ASSETS ----------

func (h *Handlers) assetFilter(c *fiber.Ctx) assets.Filter {
	return assets.Filter{Search: c.Query("search"), OSName: c.Query("os")}
}

func (h *Handlers) listAssets(c *fiber.Ctx) error {
	list, err := h.Assets.List(c.UserContext(), h.assetFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handlers) getAsset(c *fiber.Ctx) error {
	a, err := h.Assets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (h *Handlers) exportAssets(c *fiber.Ctx) error {
	b, err := h.Assets.Export(c.UserContext(), h.assetFilter(c))
	if err != nil {
		h.Notices.Push("Asset export failed", notify.Error)
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="assets.xlsx"`)
	return c.Send(b)
}

func (h *Handlers) assetTable(c *fiber.Ctx) error {
	return c.JSON(h.Assets.Table(c.UserContext()))
}

func (h *Handlers) saveAssetTable(c *fiber.Ctx) error {
	var in assets.Table
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.Assets.SaveTable(c.UserContext(), in); err != nil {
		return err
	}
	return c.JSON(h.Assets.Table(c.UserContext()))
}

func (h *Handlers) assetAction(c *fiber.Ctx) error {
	action := c.Params("action")
	ev, err := h.Assets.RunAction(c.UserContext(), c.Params("id"), action)
	if err != nil {
		return err
	}
	h.Notices.Push(fmt.Sprintf("%s requested", action), notify.Info)
	return c.Status(fiber.StatusAccepted).JSON(ev)
}

// ---------- RULES ----------

func (h *Handlers) listRules(c *fiber.Ctx) error {
	list, err := h.Rules.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handlers) createRule(c *fiber.Ctx) error {
	var in models.AutomationRule
	if err := parseBody(c, &in); err != nil {
		return err
	}
	r, err := h.Rules.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Notices.Push(fmt.Sprintf("Rule %s created", r.Name), notify.Success)
	return c.Status(fiber.StatusCreated).JSON(r)
}

// ---------- DATA SOURCES ----------

func (h *Handlers) listDataSources(c *fiber.Ctx) error {
	return c.JSON(h.DataSources.List())
}

func (h *Handlers) getDataSource(c *fiber.Ctx) error {
	ds, err := h.DataSources.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(ds)
}

func (h *Handlers) addDataSource(c *fiber.Ctx) error {
	var in datasource.DataSource
	if err := parseBody(c, &in); err != nil {
		return err
	}
	ds, err := h.DataSources.Add(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ds)
}

func (h *Handlers) updateDataSource(c *fiber.Ctx) error {
	var in datasource.Update
	if err := parseBody(c, &in); err != nil {
		return err
	}
	ds, err := h.DataSources.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(ds)
}

func (h *Handlers) removeDataSource(c *fiber.Ctx) error {
	if err := h.DataSources.Remove(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) testDataSource(c *fiber.Ctx) error {
	var cfg datasource.Config
	if err := parseBody(c, &cfg); err != nil {
		return err
	}
	ok, err := h.DataSources.TestConnection(c.UserContext(), cfg)
	if err != nil {
		return err
	}
	if ok {
		h.Notices.Push("Connection successful", notify.Success)
	} else {
		h.Notices.Push("Connection failed", notify.Error)
	}
	return c.JSON(fiber.Map{"success": ok})
}

func (h *Handlers) dataSourceData(c *fiber.Ctx) error {
	data, err := h.DataSources.Resolve(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(data)
}

// ---------- AUTH ----------

func (h *Handlers) login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, ok, err := h.Auth.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}
	return c.JSON(u)
}

func (h *Handlers) logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) me(c *fiber.Ctx) error {
	u, ok := h.Auth.Current(c.UserContext())
	if !ok {
		return auth.ErrNotSignedIn
	}
	return c.JSON(u)
}

func (h *Handlers) updateMe(c *fiber.Ctx) error {
	var in auth.ProfileUpdate
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, err := h.Auth.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Notices.Push("Profile updated", notify.Success)
	return c.JSON(u)
}

func (h *Handlers) notifications(c *fiber.Ctx) error {
	return c.JSON(h.Notices.List())
}
