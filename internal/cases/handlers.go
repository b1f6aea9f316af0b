package cases

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartlaw/crm-backend/internal/dataservice"
	"github.com/smartlaw/crm-backend/internal/state"
	"github.com/smartlaw/crm-backend/pkg/models"
	"github.com/smartlaw/crm-backend/pkg/sanitize"
	"github.com/smartlaw/crm-backend/pkg/validation"
)

// ===== DTOs =====

type UpsertCaseRequest struct {
	Title       string  `json:"title" validate:"required,max=120"`
	SponsorID   *string `json:"sponsorId"`
	LawyerID    *string `json:"lawyerId"`
	Type        string  `json:"type" validate:"max=40"`
	Status      string  `json:"status" validate:"max=40"`
	IsFree      bool    `json:"isFree"`
	CreatedAt   string  `json:"createdAt" validate:"omitempty,datestr"`
	Description string  `json:"description" validate:"max=2000"`
}

// CaseListItem carries the case plus display-resolved reference names, so
// the client never has to join (or crash on) dangling ids.
type CaseListItem struct {
	models.Case
	SponsorName string `json:"sponsorName"`
	LawyerName  string `json:"lawyerName"`
	Preview     string `json:"preview"`
}

type Handler struct {
	st *state.Manager
}

func NewHandler(st *state.Manager) *Handler {
	return &Handler{st: st}
}

// List returns all cases with sponsor/lawyer names resolved. Missing or
// dangling references show up as the unspecified placeholder.
func (h *Handler) List(c *fiber.Ctx) error {
	data := h.st.Snapshot()

	items := make([]CaseListItem, 0, len(data.Cases))
	for _, cs := range data.Cases {
		items = append(items, CaseListItem{
			Case:        cs,
			SponsorName: dataservice.SponsorName(data, cs.SponsorID),
			LawyerName:  dataservice.LawyerName(data, cs.LawyerID),
			Preview:     sanitize.Summary(cs.Description, 240),
		})
	}
	return c.JSON(fiber.Map{"items": items})
}

// Create adds a case. A sponsor assignment consumes one unit of that
// sponsor's package.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in UpsertCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	cs := caseFromRequest(in)
	cs.ID = dataservice.NewID()
	if cs.CreatedAt == "" {
		cs.CreatedAt = time.Now().Format("2006-01-02")
	}

	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		d = dataservice.ApplySponsorUsage(d, nil, cs.SponsorID)
		d.Cases = append(d.Cases, cs)
		return d
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"case":  cs,
		"stats": dataservice.CalculateStats(data),
	})
}

// Update replaces a case in place (identity by id). The usage linkage runs
// only on a true sponsor reassignment; an unchanged sponsor is a no-op.
func (h *Handler) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var in UpsertCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	next := caseFromRequest(in)
	next.ID = id

	// The previous revision must be read under the same lock that applies
	// the usage linkage, or two racing writes against one case could both
	// charge the change against the same stale sponsor.
	found := false
	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		prev, ok := findCase(d, id)
		if !ok {
			return d
		}
		found = true
		if next.CreatedAt == "" {
			next.CreatedAt = prev.CreatedAt
		}
		d = dataservice.ApplySponsorUsage(d, prev.SponsorID, next.SponsorID)
		for i := range d.Cases {
			if d.Cases[i].ID == id {
				d.Cases[i] = next
				break
			}
		}
		return d
	})
	if !found {
		return fiber.ErrNotFound
	}

	return c.JSON(fiber.Map{
		"case":  next,
		"stats": dataservice.CalculateStats(data),
	})
}

// Delete removes a case and releases its sponsor's package unit.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	found := false
	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		prev, ok := findCase(d, id)
		if !ok {
			return d
		}
		found = true
		d = dataservice.ApplySponsorUsage(d, prev.SponsorID, nil)
		kept := make([]models.Case, 0, len(d.Cases))
		for _, cs := range d.Cases {
			if cs.ID != id {
				kept = append(kept, cs)
			}
		}
		d.Cases = kept
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

func caseFromRequest(in UpsertCaseRequest) models.Case {
	return models.Case{
		Title:       strings.TrimSpace(in.Title),
		SponsorID:   normalizeRef(in.SponsorID),
		LawyerID:    normalizeRef(in.LawyerID),
		Type:        strings.TrimSpace(in.Type),
		Status:      strings.TrimSpace(in.Status),
		IsFree:      in.IsFree,
		CreatedAt:   strings.TrimSpace(in.CreatedAt),
		Description: strings.TrimSpace(in.Description),
	}
}

// normalizeRef folds empty-string references into nil so "cleared" and
// "absent" behave the same.
func normalizeRef(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func findCase(data models.AppData, id string) (models.Case, bool) {
	for _, cs := range data.Cases {
		if cs.ID == id {
			return cs, true
		}
	}
	return models.Case{}, false
}
