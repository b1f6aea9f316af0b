package lawyers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/smartlaw/crm-backend/internal/dataservice"
	"github.com/smartlaw/crm-backend/internal/state"
	"github.com/smartlaw/crm-backend/pkg/models"
	"github.com/smartlaw/crm-backend/pkg/validation"
)

// ===== DTOs =====

type UpsertLawyerRequest struct {
	Name                string `json:"name" validate:"required,max=120"`
	Phone               string `json:"phone" validate:"max=20"`
	Specialty           string `json:"specialty" validate:"max=40"`
	Status              string `json:"status" validate:"required,oneof=active suspended"`
	Notes               string `json:"notes" validate:"max=2000"`
	JoinDate            string `json:"joinDate" validate:"omitempty,datestr"`
	MaxCases            int    `json:"maxCases" validate:"gte=0"`
	CurrentCases        int    `json:"currentCases" validate:"gte=0"`
	IsSubscribed        bool   `json:"isSubscribed"`
	SubscriptionEndDate string `json:"subscriptionEndDate" validate:"omitempty,datestr"`
	SubscriptionType    string `json:"subscriptionType" validate:"omitempty,oneof=monthly yearly free"`
}

type Handler struct {
	st *state.Manager
}

func NewHandler(st *state.Manager) *Handler {
	return &Handler{st: st}
}

func (h *Handler) List(c *fiber.Ctx) error {
	data := h.st.Snapshot()
	return c.JSON(fiber.Map{"items": data.Lawyers})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var in UpsertLawyerRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	lw := lawyerFromRequest(in)
	lw.ID = dataservice.NewID()

	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		d.Lawyers = append(d.Lawyers, lw)
		return d
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"lawyer": lw,
		"stats":  dataservice.CalculateStats(data),
	})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var in UpsertLawyerRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	lw := lawyerFromRequest(in)
	lw.ID = id

	found := false
	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		for i := range d.Lawyers {
			if d.Lawyers[i].ID == id {
				d.Lawyers[i] = lw
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
		"lawyer": lw,
		"stats":  dataservice.CalculateStats(data),
	})
}

// Delete removes a lawyer. Cases that reference the lawyer keep their id
// and resolve to the unspecified placeholder from then on; no cascade.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	found := false
	data := h.st.Update(c.Context(), func(d models.AppData) models.AppData {
		kept := make([]models.Lawyer, 0, len(d.Lawyers))
		for _, lw := range d.Lawyers {
			if lw.ID != id {
				kept = append(kept, lw)
			} else {
				found = true
			}
		}
		d.Lawyers = kept
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

func lawyerFromRequest(in UpsertLawyerRequest) models.Lawyer {
	return models.Lawyer{
		Name:                strings.TrimSpace(in.Name),
		Phone:               strings.TrimSpace(in.Phone),
		Specialty:           strings.TrimSpace(in.Specialty),
		Status:              models.LawyerStatus(in.Status),
		Notes:               strings.TrimSpace(in.Notes),
		JoinDate:            in.JoinDate,
		MaxCases:            in.MaxCases,
		CurrentCases:        in.CurrentCases,
		IsSubscribed:        in.IsSubscribed,
		SubscriptionEndDate: in.SubscriptionEndDate,
		SubscriptionType:    models.SubscriptionType(in.SubscriptionType),
	}
}
