package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-ledger/internal/application/dto"
	"github.com/jhoicas/hospital-ledger/internal/domain"
)

// respondError traduce un error de dominio a la respuesta HTTP. Los rechazos
// de negocio con snapshot (stock insuficiente, pago que excede el saldo)
// llevan el estado observado en Detail para que el caller reconcilie sin
// releer el recurso.
func respondError(c *fiber.Ctx, err error) error {
	var insufficientErr *domain.InsufficientStockError
	if errors.As(err, &insufficientErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: insufficientErr.Error(),
			Detail: fiber.Map{
				"sku_id":    insufficientErr.SKUID,
				"sku_code":  insufficientErr.SKUCode,
				"available": insufficientErr.Available,
				"requested": insufficientErr.Requested,
			},
		})
	}
	var exceedsErr *domain.ExceedsOutstandingError
	if errors.As(err, &exceedsErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "EXCEEDS_OUTSTANDING",
			Message: exceedsErr.Error(),
			Detail: fiber.Map{
				"bill_id":     exceedsErr.BillID,
				"outstanding": exceedsErr.Outstanding,
				"requested":   exceedsErr.Requested,
			},
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrBillNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	case errors.Is(err, domain.ErrSKUNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "SKU no encontrado"})
	case errors.Is(err, domain.ErrPaymentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pago no encontrado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrBillImmutable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BILL_IMMUTABLE", Message: "la factura ya tiene pagos aplicados"})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrency):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CONCURRENCY", Message: "conflicto de concurrencia, reintente"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.Set(fiber.HeaderRetryAfter, "5")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "almacén no disponible"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
