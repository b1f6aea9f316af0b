package sponsors

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartlaw/crm-backend/internal/dataservice"
	"github.com/smartlaw/crm-backend/internal/state"
	"github.com/smartlaw/crm-backend/pkg/models"
	"github.com/smartlaw/crm-backend/pkg/validation"
)

// ===== DTOs =====

type UpsertSponsorRequest struct {
	Name             string `json:"name" validate:"required,max=120"`
	PackageSize      int    `json:"packageSize" validate:"gte=0"`
	Used             int    `json:"used" validate:"gte=0"`
	Replies          int    `json:"replies" validate:"gte=0"`
	LastReply        string `json:"lastReply" validate:"omitempty,datestr"`
	Notes            string `json:"notes" validate:"max=2000"`
	SubscriptionDate string `json:"subscriptionDate" validate:"omitempty,datestr"`
}

type ReorderRequest struct {
	Delta         int     `json:"delta" validate:"required,gt=0"`
	Note          string  `json:"note" validate:"max=500"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	InvoiceNumber string  `json:"invoiceNumber" validate:"max=40"`
}

// SponsorListItem adds the display-only capacity columns.
type SponsorListItem struct {
	models.Sponsor
	Remaining int  `json:"remaining"`
	Low       bool `json:"low"`
	Exhausted bool `json:"exhausted"`
}

type Handler struct {
	st *state.Manager
}

func NewHandler(st *state.Manager) *Handler {
	return &Handler{st: st}
}

// List returns all sponsors with remaining capacity and the low/exhausted
// warning flags the dashboard surfaces.
func (h *Handler) List(c *fiber.Ctx) error {
	data := h.st.Snapshot()

	items := make([]SponsorListItem, 0, len(data.Sponsors))
	for _, s := range data.Sponsors {
		remaining := s.Remaining()
		items = append(items, SponsorListItem{
			Sponsor:   s,
			Remaining: remaining,
			Low:       remaining > 0 && remaining <= 5,
			Exhausted: remaining == 0,
		})
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var in UpsertSponsorRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	sp := sponsorFromRequest(in)
	sp.ID = dataservice.NewID()

	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		d.Sponsors = append(d.Sponsors, sp)
		return d
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"sponsor": sp,
		"stats":   dataservice.CalculateStats(data),
	})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var in UpsertSponsorRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	sp := sponsorFromRequest(in)
	sp.ID = id

	found := false
	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		for i := range d.Sponsors {
			if d.Sponsors[i].ID == id {
				d.Sponsors[i] = sp
				found = true
				break
			}
		}
		return d
	})
	if !found {
		return fiber.ErrNotFound
	}

	return c.JSON(fiber.Map{
		"sponsor": sp,
		"stats":   dataservice.CalculateStats(data),
	})
}

// Delete removes a sponsor. Cases referencing it keep their sponsorId and
// resolve to the unspecified placeholder (no cascade), and its reorder log
// entries stay.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	found := false
	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		kept := make([]models.Sponsor, 0, len(d.Sponsors))
		for _, sp := range d.Sponsors {
			if sp.ID != id {
				kept = append(kept, sp)
			} else {
				found = true
			}
		}
		d.Sponsors = kept
		return d
	})
	if !found {
		return fiber.ErrNotFound
	}

	return c.JSON(fiber.Map{
		"deleted": id,
		"stats":   dataservice.CalculateStats(data),
	})
}

// Reorder tops up a sponsor's package: capacity grows by delta and an
// append-only log entry records the purchase. Nothing ever mutates or
// removes a reorder afterwards.
func (h *Handler) Reorder(c *fiber.Ctx) error {
	id := c.Params("id")

	var in ReorderRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = "Package renewal"
	}
	entry := models.Reorder{
		ID:            dataservice.NewID(),
		SponsorID:     id,
		Delta:         in.Delta,
		Note:          note,
		At:            time.Now().Format("2006-01-02"),
		Amount:        in.Amount,
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
	}

	// The existence check lives inside the reducer so a concurrent delete
	// cannot slip a log entry in for a sponsor that is already gone.
	var updated models.Sponsor
	found := false
	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		for i := range d.Sponsors {
			if d.Sponsors[i].ID == id {
				d.Sponsors[i].PackageSize += in.Delta
				updated = d.Sponsors[i]
				found = true
				break
			}
		}
		if found {
			d.Reorders = append(d.Reorders, entry)
		}
		return d
	})
	if !found {
		return fiber.ErrNotFound
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"sponsor": updated,
		"reorder": entry,
		"stats":   dataservice.CalculateStats(data),
	})
}

// Reorders lists the top-up history, optionally for one sponsor.
func (h *Handler) Reorders(c *fiber.Ctx) error {
	data := h.st.Snapshot()
	sponsorID := strings.TrimSpace(c.Query("sponsor_id"))

	items := data.Reorders
	if sponsorID != "" {
		items = make([]models.Reorder, 0, len(data.Reorders))
		for _, r := range data.Reorders {
			if r.SponsorID == sponsorID {
				items = append(items, r)
			}
		}
	}
	return c.JSON(fiber.Map{"items": items})
}

func sponsorFromRequest(in UpsertSponsorRequest) models.Sponsor {
	return models.Sponsor{
		Name:             strings.TrimSpace(in.Name),
		PackageSize:      in.PackageSize,
		Used:             in.Used,
		Replies:          in.Replies,
		LastReply:        in.LastReply,
		Notes:            strings.TrimSpace(in.Notes),
		SubscriptionDate: in.SubscriptionDate,
	}
}

