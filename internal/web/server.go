// Package web serves the console REST API under /api, the server-rendered
// console pages and the Prometheus endpoint.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"vibermm/internal/alerts"
	"vibermm/internal/assets"
	"vibermm/internal/auth"
	"vibermm/internal/companies"
	"vibermm/internal/dashboard"
	"vibermm/internal/datasource"
	"vibermm/internal/devices"
	"vibermm/internal/notify"
	"vibermm/internal/patch"
	"vibermm/internal/rules"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Services are the console services the handlers call into.
type Services struct {
	Devices     *devices.Service
	Alerts      *alerts.Service
	Assets      *assets.Service
	Companies   *companies.Service
	Patch       *patch.Service
	Rules       *rules.Service
	Auth        *auth.Service
	DataSources *datasource.Service
	Board       *dashboard.Board
	Notices     *notify.Center
}

type Handlers struct {
	Services
	log *zap.Logger
}

func newEngine() *html.Engine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("pct", func(v float64) string { return fmt.Sprintf("%.1f%%", v) })
	engine.AddFunc("stamp", func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") })
	return engine
}

// NewApp builds the fiber application with every route registered.
func NewApp(svc Services, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:                 newEngine(),
		ErrorHandler:          errorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Content-Type, Authorization, X-API-Key",
		MaxAge:       3600,
	}))

	SetupRoutes(app, &Handlers{Services: svc, log: log})
	return app
}

func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/", h.overviewPage)
	app.Get("/alerts", h.alertsPage)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// ---------- DEVICES ----------
	api.Get("/devices", h.listDevices)
	api.Post("/devices", h.addDevice)
	api.Delete("/devices", h.deleteDevices)
	api.Get("/devices/:id", h.getDevice)
	api.Patch("/devices/:id", h.updateDevice)
	api.Get("/devices/:id/metrics", h.deviceMetrics)

	// ---------- ALERTS ----------
	api.Get("/alerts", h.listAlerts)
	api.Get("/alerts/events", h.alertEvents)
	api.Post("/alerts/events/:id/ack", h.acknowledgeEvent)
	api.Get("/alerts/policies", h.listPolicies)
	api.Get("/alerts/policies/form", h.policyForm)
	api.Post("/alerts/policies", h.addPolicy)
	api.Delete("/alerts/policies/:id", h.deletePolicy)

	// ---------- DASHBOARD ----------
	api.Get("/dashboard/summary", h.summary)
	api.Get("/dashboard/widgets", h.listWidgets)
	api.Post("/dashboard/widgets", h.addWidget)
	api.Delete("/dashboard/widgets/:id", h.removeWidget)
	api.Patch("/dashboard/widgets/:id/settings", h.updateWidgetSettings)
	api.Get("/dashboard/widgets/:id/data", h.widgetData)
	api.Put("/dashboard/layout", h.updateLayout)
	api.Post("/dashboard/layout/change", h.layoutChange)
	api.Post("/dashboard/layout/save", h.saveLayout)
	api.Post("/dashboard/layout/load", h.loadLayout)
	api.Post("/dashboard/breakpoint", h.changeBreakpoint)
	api.Get("/dashboard/layouts", h.layouts)
	api.Post("/dashboard/presets/:name", h.applyPreset)
	api.Get("/dashboard/templates", h.templates)
	api.Post("/dashboard/templates/:id", h.applyTemplate)
	api.Get("/dashboard/themes", h.themes)

	// ---------- ASSETS ----------
	api.Get("/assets", h.listAssets)
	api.Get("/assets/export", h.exportAssets)
	api.Get("/assets/table", h.assetTable)
	api.Put("/assets/table", h.requirePermission(auth.PermEditAssets), h.saveAssetTable)
	api.Get("/assets/:id", h.getAsset)
	api.Post("/assets/:id/actions/:action", h.requirePermission(auth.PermEditAssets), h.assetAction)

	// ---------- RULES ----------
	api.Get("/rules", h.listRules)
	api.Post("/rules", h.createRule)

	// ---------- COMPANIES ----------
	api.Get("/companies", h.listCompanies)
	api.Get("/companies/form", h.companyForm)
	api.Post("/companies", h.addCompany)
	api.Get("/companies/:id", h.getCompany)
	api.Put("/companies/:id", h.updateCompany)
	api.Delete("/companies/:id", h.deleteCompany)

	// ---------- PATCH ----------
	api.Get("/patch/status", h.patchStatus)
	api.Post("/patch/status/refresh", h.refreshPatchStatus)
	api.Get("/patch/profiles", h.listProfiles)
	api.Post("/patch/profiles", h.addProfile)
	api.Put("/patch/profiles/:id", h.updateProfile)
	api.Delete("/patch/profiles/:id", h.deleteProfile)
	api.Get("/patch/rules", h.listDeploymentRules)
	api.Post("/patch/rules", h.addDeploymentRule)
	api.Put("/patch/rules/:id", h.updateDeploymentRule)
	api.Delete("/patch/rules/:id", h.deleteDeploymentRule)
	api.Post("/patch/deploy", h.deployPatches)

	// ---------- DATA SOURCES ----------
	api.Get("/datasources", h.listDataSources)
	api.Post("/datasources", h.addDataSource)
	api.Post("/datasources/test", h.testDataSource)
	api.Get("/datasources/:id", h.getDataSource)
	api.Put("/datasources/:id", h.updateDataSource)
	api.Delete("/datasources/:id", h.removeDataSource)
	api.Get("/datasources/:id/data", h.dataSourceData)

	// ---------- AUTH ----------
	api.Post("/auth/login", h.login)
	api.Post("/auth/logout", h.logout)
	api.Get("/auth/me", h.me)
	api.Patch("/auth/me", h.updateMe)

	api.Get("/notifications", h.notifications)
}
