// Package backup exposes export, import, and reset of the whole aggregate.
// Import and reset are the only operations that replace state wholesale;
// neither ever merges.
package backup

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartlaw/crm-backend/internal/dataservice"
	"github.com/smartlaw/crm-backend/internal/state"
	"github.com/smartlaw/crm-backend/pkg/models"
)

type Handler struct {
	st *state.Manager
}

func NewHandler(st *state.Manager) *Handler {
	return &Handler{st: st}
}

// Data returns the whole aggregate plus the KPI view, the full-state
// refresh hook for clients.
func (h *Handler) Data(c *fiber.Ctx) error {
	data := h.st.Snapshot()
	return c.JSON(fiber.Map{
		"data":  data,
		"stats": dataservice.CalculateStats(data),
	})
}

// Export offers the aggregate as a date-named JSON download. With
// ?redact=true, emails and phone numbers in free text are masked so the
// file can leave the firm.
func (h *Handler) Export(c *fiber.Ctx) error {
	data := h.st.Snapshot()

	var (
		raw []byte
		err error
	)
	if c.QueryBool("redact") {
		raw, err = dataservice.ExportDataRedacted(data)
	} else {
		raw, err = dataservice.ExportData(data)
	}
	if err != nil {
		return fiber.ErrInternalServerError
	}

	filename := fmt.Sprintf("smartlaw-crm-%s.json", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// Import replaces the aggregate with the posted JSON document. A malformed
// payload or one missing the required collections is rejected with a
// validation error and the existing state is left untouched.
func (h *Handler) Import(c *fiber.Ctx) error {
	imported, err := dataservice.ImportData(c.Body())
	if err != nil {
		var ve *dataservice.ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{
				Message: "Validation failed",
				Errors:  map[string][]string{"data": {ve.Reason}},
			})
		}
		return fiber.ErrInternalServerError
	}

	data := h.st.Replace(c.Context(), imported)
	return c.JSON(fiber.Map{
		"data":  data,
		"stats": dataservice.CalculateStats(data),
	})
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// Reset wipes everything back to the seed dataset. The confirm flag is the
// explicit confirmation step for this destructive action; without it no
// state changes.
func (h *Handler) Reset(c *fiber.Ctx) error {
	var in resetRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if !in.Confirm {
		return fiber.NewError(fiber.StatusBadRequest, "reset requires confirm: true")
	}

	data := h.st.Replace(c.Context(), dataservice.InitialData())
	return c.JSON(fiber.Map{
		"data":  data,
		"stats": dataservice.CalculateStats(data),
	})
}
