package analytics

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartlaw/crm-backend/internal/dataservice"
	"github.com/smartlaw/crm-backend/internal/state"
)

type Handler struct {
	st *state.Manager
}

func NewHandler(st *state.Manager) *Handler {
	return &Handler{st: st}
}

// Stats returns the KPI view of the current aggregate.
func (h *Handler) Stats(c *fiber.Ctx) error {
	return c.JSON(dataservice.CalculateStats(h.st.Snapshot()))
}

// Marketing returns per-sponsor analytics rows. Optional query params:
// sponsor_id filters to one sponsor; start/end bound the window and default
// to the last 30 days.
func (h *Handler) Marketing(c *fiber.Ctx) error {
	now := time.Now()
	start := c.Query("start", now.AddDate(0, 0, -30).Format("2006-01-02"))
	end := c.Query("end", now.Format("2006-01-02"))
	sponsorID := strings.TrimSpace(c.Query("sponsor_id"))

	for _, q := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date, use YYYY-MM-DD")
		}
	}

	rows := BuildMarketingStats(h.st.Snapshot(), start, end)
	if sponsorID != "" {
		filtered := rows[:0]
		for _, row := range rows {
			if row.SponsorID == sponsorID {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	return c.JSON(fiber.Map{"items": rows})
}

// Reports returns the dashboard report views derived from current data.
func (h *Handler) Reports(c *fiber.Ctx) error {
	return c.JSON(BuildReport(h.st.Snapshot()))
}

// Tasks returns the generated review reminders.
func (h *Handler) Tasks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": GenerateTasks(time.Now())})
}
