package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-ledger/internal/application/billing"
	"github.com/jhoicas/hospital-ledger/internal/application/dto"
)

// BillingHandler maneja las peticiones HTTP del libro de facturación.
type BillingHandler struct {
	billUC    *billing.CreateBillUseCase
	paymentUC *billing.PaymentUseCase
}

// NewBillingHandler construye el handler.
func NewBillingHandler(billUC *billing.CreateBillUseCase, paymentUC *billing.PaymentUseCase) *BillingHandler {
	return &BillingHandler{billUC: billUC, paymentUC: paymentUC}
}

// CreateBill crea una factura con sus montos derivados calculados.
// POST /api/billing/bills
func (h *BillingHandler) CreateBill(c *fiber.Ctx) error {
	var in dto.CreateBillRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	bill, err := h.billUC.CreateBill(c.Context(), billing.CreateBillInput{
		PatientRef:         in.PatientRef,
		Type:               in.Type,
		LineItems:          dto.ToLineItems(in.LineItems),
		DiscountPercentage: in.DiscountPercentage,
		DiscountAmount:     in.DiscountAmount,
		TaxPercentage:      in.TaxPercentage,
		DueDate:            in.DueDate,
		Notes:              in.Notes,
		CreatedBy:          in.CreatedBy,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBillResponse(bill))
}

// GetBill obtiene una factura por ID interno o de negocio.
// GET /api/billing/bills/:id
func (h *BillingHandler) GetBill(c *fiber.Ctx) error {
	bill, err := h.billUC.GetBill(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToBillResponse(bill))
}

// UpdateBillLines reemplaza líneas, descuento e impuesto de una factura sin
// pagos y recalcula los derivados.
// PUT /api/billing/bills/:id/lines
func (h *BillingHandler) UpdateBillLines(c *fiber.Ctx) error {
	var in dto.UpdateBillLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	bill, err := h.billUC.UpdateBillLines(c.Context(), c.Params("id"), billing.UpdateLinesInput{
		LineItems:          dto.ToLineItems(in.LineItems),
		DiscountPercentage: in.DiscountPercentage,
		DiscountAmount:     in.DiscountAmount,
		TaxPercentage:      in.TaxPercentage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToBillResponse(bill))
}

// ApplyPayment aplica un pago contra una factura; rechaza estricto si excede
// el saldo pendiente. Devuelve el pago y la factura recalculada.
// POST /api/billing/payments
func (h *BillingHandler) ApplyPayment(c *fiber.Ctx) error {
	var in dto.ApplyPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.paymentUC.ApplyPayment(c.Context(), billing.ApplyPaymentInput{
		BillID:     in.BillID,
		Amount:     in.Amount,
		Method:     in.Method,
		ReceivedBy: in.ReceivedBy,
		Notes:      in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment": dto.ToPaymentResponse(result.Payment),
		"bill":    dto.ToBillResponse(result.Bill),
	})
}

// RefundPayment revierte un pago exitoso.
// POST /api/billing/payments/:id/refund
func (h *BillingHandler) RefundPayment(c *fiber.Ctx) error {
	result, err := h.paymentUC.RefundPayment(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"payment": dto.ToPaymentResponse(result.Payment),
		"bill":    dto.ToBillResponse(result.Bill),
	})
}

// GetPayment obtiene un pago por ID interno o de negocio.
// GET /api/billing/payments/:id
func (h *BillingHandler) GetPayment(c *fiber.Ctx) error {
	payment, err := h.paymentUC.GetPayment(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPaymentResponse(payment))
}

// ListPayments lista los pagos de una factura.
// GET /api/billing/bills/:id/payments
func (h *BillingHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.paymentUC.ListPayments(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		out[i] = dto.ToPaymentResponse(&payments[i])
	}
	return c.JSON(out)
}
