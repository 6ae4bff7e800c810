package web

import (
	"fmt"

	"vibermm/internal/companies"
	"vibermm/internal/models"
	"vibermm/internal/notify"

	"github.com/gofiber/fiber/v2"
)

// ---------- COMPANIES ----------

func (h *Handlers) listCompanies(c *fiber.Ctx) error {
	list, err := h.Companies.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handlers) companyForm(c *fiber.Ctx) error {
	return c.JSON(companies.NewForm())
}

func (h *Handlers) getCompany(c *fiber.Ctx) error {
	co, err := h.Companies.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(co)
}

func (h *Handlers) addCompany(c *fiber.Ctx) error {
	in := companies.NewForm()
	if err := parseBody(c, &in); err != nil {
		return err
	}
	co, err := h.Companies.Add(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.Notices.Push(fmt.Sprintf("Company %s added", co.Name), notify.Success)
	return c.Status(fiber.StatusCreated).JSON(co)
}

func (h *Handlers) updateCompany(c *fiber.Ctx) error {
	var in models.Company
	if err := parseBody(c, &in); err != nil {
		return err
	}
	co, err := h.Companies.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(co)
}

func (h *Handlers) deleteCompany(c *fiber.Ctx) error {
	if err := h.Companies.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	h.Notices.Push("Company deleted", notify.Success)
	return c.SendStatus(fiber.StatusNoContent)
}

// ---------- PATCH ----------

func (h *Handlers) patchStatus(c *fiber.Ctx) error {
	list, stats, err := h.Patch.Status(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"devices": list, "stats": stats})
}

func (h *Handlers) refreshPatchStatus(c *fiber.Ctx) error {
	list, stats, err := h.Patch.Refresh(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"devices": list, "stats": stats})
}

func (h *Handlers) listProfiles(c *fiber.Ctx) error {
	list, err := h.Patch.Profiles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handlers) addProfile(c *fiber.Ctx) error {
	var in models.PatchProfile
	if err := parseBody(c, &in); err != nil {
		return err
	}
	p, err := h.Patch.AddProfile(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handlers) updateProfile(c *fiber.Ctx) error {
	var in models.PatchProfile
	if err := parseBody(c, &in); err != nil {
		return err
	}
	p, err := h.Patch.UpdateProfile(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handlers) deleteProfile(c *fiber.Ctx) error {
	if err := h.Patch.DeleteProfile(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) listDeploymentRules(c *fiber.Ctx) error {
	list, err := h.Patch.Rules(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handlers) addDeploymentRule(c *fiber.Ctx) error {
	var in models.DeploymentRule
	if err := parseBody(c, &in); err != nil {
		return err
	}
	r, err := h.Patch.AddRule(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *Handlers) updateDeploymentRule(c *fiber.Ctx) error {
	var in models.DeploymentRule
	if err := parseBody(c, &in); err != nil {
		return err
	}
	r, err := h.Patch.UpdateRule(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

func (h *Handlers) deleteDeploymentRule(c *fiber.Ctx) error {
	if err := h.Patch.DeleteRule(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) deployPatches(c *fiber.Ctx) error {
	var in struct {
		DeviceIDs []string `json:"deviceIds"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	ev, err := h.Patch.Deploy(c.UserContext(), in.DeviceIDs)
	if err != nil {
		return err
	}
	h.Notices.Push(fmt.Sprintf("Patch deployment started on %d device(s)", len(in.DeviceIDs)), notify.Success)
	return c.Status(fiber.StatusAccepted).JSON(ev)
}
