package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartlaw/crm-backend/internal/analytics"
	"github.com/smartlaw/crm-backend/internal/backup"
	"github.com/smartlaw/crm-backend/internal/cases"
	"github.com/smartlaw/crm-backend/internal/lawyers"
	"github.com/smartlaw/crm-backend/internal/sponsors"
	"github.com/smartlaw/crm-backend/internal/state"
)

// New builds the Fiber app with every route registered. Kept separate from
// main so tests can run the full app in memory.
func New(st *state.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
	})

	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	api := app.Group("/api")

	// Aggregate + backup
	backupH := backup.NewHandler(st)
	api.Get("/data", backupH.Data)
	api.Get("/export", backupH.Export)
	api.Post("/import", backupH.Import)
	api.Post("/reset", backupH.Reset)

	// Analytics
	analyticsH := analytics.NewHandler(st)
	api.Get("/stats", analyticsH.Stats)
	api.Get("/analytics/marketing", analyticsH.Marketing)
	api.Get("/analytics/reports", analyticsH.Reports)
	api.Get("/analytics/tasks", analyticsH.Tasks)

	// Cases
	caseH := cases.NewHandler(st)
	api.Get("/cases", caseH.List)
	api.Post("/cases", caseH.Create)
	api.Put("/cases/:id", caseH.Update)
	api.Delete("/cases/:id", caseH.Delete)

	// Lawyers
	lawyerH := lawyers.NewHandler(st)
	api.Get("/lawyers", lawyerH.List)
	api.Post("/lawyers", lawyerH.Create)
	api.Put("/lawyers/:id", lawyerH.Update)
	api.Delete("/lawyers/:id", lawyerH.Delete)

	// Sponsors + reorders
	sponsorH := sponsors.NewHandler(st)
	api.Get("/sponsors", sponsorH.List)
	api.Post("/sponsors", sponsorH.Create)
	api.Put("/sponsors/:id", sponsorH.Update)
	api.Delete("/sponsors/:id", sponsorH.Delete)
	api.Post("/sponsors/:id/reorder", sponsorH.Reorder)
	api.Get("/reorders", sponsorH.Reorders)

	return app
}
