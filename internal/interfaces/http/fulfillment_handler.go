package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-ledger/internal/application/dto"
	"github.com/jhoicas/hospital-ledger/internal/application/fulfillment"
)

// FulfillmentHandler maneja las peticiones HTTP de dispensación de farmacia.
type FulfillmentHandler struct {
	uc *fulfillment.UseCase
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(uc *fulfillment.UseCase) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc}
}

// Fulfill dispensa un lote de líneas contra el stock y factura el monto a
// cargo del paciente. Todo-o-nada: si una línea queda corta, nada se dispensa.
// POST /api/pharmacy/fulfillments
func (h *FulfillmentHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.FulfillRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]fulfillment.FulfillLine, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = fulfillment.FulfillLine{SKUID: l.SKUID, Quantity: l.Quantity}
	}
	record, err := h.uc.Fulfill(c.Context(), fulfillment.FulfillInput{
		OrderRef:         in.OrderRef,
		PatientRef:       in.PatientRef,
		Lines:            lines,
		InsuranceCovered: in.InsuranceCovered,
		DispensedBy:      in.DispensedBy,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToFulfillmentResponse(record))
}

// GetFulfillment obtiene un registro de dispensación.
// GET /api/pharmacy/fulfillments/:id
func (h *FulfillmentHandler) GetFulfillment(c *fiber.Ctx) error {
	record, err := h.uc.GetFulfillment(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToFulfillmentResponse(record))
}
