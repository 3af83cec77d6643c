package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-ledger/internal/application/dto"
	"github.com/jhoicas/hospital-ledger/internal/application/stock"
)

// StockHandler maneja las peticiones HTTP del libro de stock.
type StockHandler struct {
	ledgerUC *stock.LedgerUseCase
	alertUC  *stock.AlertUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledgerUC *stock.LedgerUseCase, alertUC *stock.AlertUseCase) *StockHandler {
	return &StockHandler{ledgerUC: ledgerUC, alertUC: alertUC}
}

// CreateSKU registra un SKU; la cantidad inicial queda asentada como compra.
// POST /api/stock/skus
func (h *StockHandler) CreateSKU(c *fiber.Ctx) error {
	var in dto.CreateSKURequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sku, err := h.ledgerUC.CreateSKU(c.Context(), stock.CreateSKUInput{
		Code:         in.Code,
		Name:         in.Name,
		GenericName:  in.GenericName,
		Category:     in.Category,
		Unit:         in.Unit,
		InitialQty:   in.InitialQty,
		ReorderLevel: in.ReorderLevel,
		MinimumStock: in.MinimumStock,
		UnitCost:     in.UnitCost,
		SellingPrice: in.SellingPrice,
		ExpiryDate:   in.ExpiryDate,
		BatchNumber:  in.BatchNumber,
		SupplierRef:  in.SupplierRef,
		PerformedBy:  in.PerformedBy,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSKUResponse(sku))
}

// GetSKU obtiene un SKU por ID interno o código.
// GET /api/stock/skus/:id
func (h *StockHandler) GetSKU(c *fiber.Ctx) error {
	sku, err := h.ledgerUC.GetSKU(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToSKUResponse(sku))
}

// ListSKUs lista los SKUs activos.
// GET /api/stock/skus
func (h *StockHandler) ListSKUs(c *fiber.Ctx) error {
	skus, err := h.ledgerUC.ListSKUs(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.SKUResponse, len(skus))
	for i, s := range skus {
		out[i] = dto.ToSKUResponse(s)
	}
	return c.JSON(out)
}

// Commit asienta una transacción de stock (compra, dispensación, ajuste...).
// POST /api/stock/transactions
func (h *StockHandler) Commit(c *fiber.Ctx) error {
	var in dto.CommitTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tx, err := h.ledgerUC.Commit(c.Context(), stock.CommitInput{
		SKUID:       in.SKUID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Outbound:    in.Outbound,
		UnitCost:    in.UnitCost,
		ReferenceID: in.ReferenceID,
		PerformedBy: in.PerformedBy,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToStockTransactionResponse(tx))
}

// ListTransactions devuelve el historial de un SKU.
// GET /api/stock/skus/:id/transactions
func (h *StockHandler) ListTransactions(c *fiber.Ctx) error {
	txs, err := h.ledgerUC.ListTransactions(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockTransactionResponse, len(txs))
	for i := range txs {
		out[i] = dto.ToStockTransactionResponse(&txs[i])
	}
	return c.JSON(out)
}

// Reserve pre-chequea suficiencia sin mutar el stock.
// POST /api/stock/reservations
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.ledgerUC.Reserve(c.Context(), in.SKUID, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReservationResponse{
		SKUID:     res.SKUID,
		SKUCode:   res.SKUCode,
		Requested: res.Requested,
		Available: res.Available,
		CheckedAt: res.CheckedAt,
	})
}

// QueryAlerts recalcula las alertas de stock de todos los SKUs activos.
// GET /api/stock/alerts
func (h *StockHandler) QueryAlerts(c *fiber.Ctx) error {
	alerts, err := h.alertUC.QueryAlerts(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}
