package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// CreateSKURequest body para POST /api/stock/skus.
type CreateSKURequest struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	GenericName  string          `json:"generic_name,omitempty"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	InitialQty   int64           `json:"initial_qty"`
	ReorderLevel int64           `json:"reorder_level"`
	MinimumStock int64           `json:"minimum_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	SupplierRef  string          `json:"supplier_ref,omitempty"`
	PerformedBy  string          `json:"performed_by,omitempty"`
}

// CommitTransactionRequest body para POST /api/stock/transactions.
// quantity siempre positiva; outbound solo aplica a type=adjustment.
type CommitTransactionRequest struct {
	SKUID       string           `json:"sku_id"`
	Type        string           `json:"type"`
	Quantity    int64            `json:"quantity"`
	Outbound    bool             `json:"outbound,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceID string           `json:"reference_id,omitempty"`
	PerformedBy string           `json:"performed_by,omitempty"`
}

// ReserveRequest body para POST /api/stock/reservations (pre-chequeo).
type ReserveRequest struct {
	SKUID    string `json:"sku_id"`
	Quantity int64  `json:"quantity"`
}

// SKUResponse respuesta con el estado actual de un SKU.
type SKUResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	GenericName    string          `json:"generic_name,omitempty"`
	Category       string          `json:"category"`
	Unit           string          `json:"unit"`
	QuantityOnHand int64           `json:"quantity_on_hand"`
	ReorderLevel   int64           `json:"reorder_level"`
	MinimumStock   int64           `json:"minimum_stock"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	SupplierRef    string          `json:"supplier_ref,omitempty"`
	Active         bool            `json:"active"`
}

// StockTransactionResponse una entrada del libro de stock.
type StockTransactionResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	SKUID         string          `json:"sku_id"`
	Type          string          `json:"type"`
	Quantity      int64           `json:"quantity"`
	SignedQty     int64           `json:"signed_quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	PerformedBy   string          `json:"performed_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ReservationResponse resultado de un pre-chequeo de suficiencia.
type ReservationResponse struct {
	SKUID     string    `json:"sku_id"`
	SKUCode   string    `json:"sku_code"`
	Requested int64     `json:"requested"`
	Available int64     `json:"available"`
	CheckedAt time.Time `json:"checked_at"`
}

// ToSKUResponse mapea la entidad a la respuesta HTTP.
func ToSKUResponse(s *entity.StockKeepingUnit) SKUResponse {
	return SKUResponse{
		ID:             s.ID,
		Code:           s.Code,
		Name:           s.Name,
		GenericName:    s.GenericName,
		Category:       s.Category,
		Unit:           s.Unit,
		QuantityOnHand: s.QuantityOnHand,
		ReorderLevel:   s.ReorderLevel,
		MinimumStock:   s.MinimumStock,
		UnitCost:       s.UnitCost,
		SellingPrice:   s.SellingPrice,
		ExpiryDate:     s.ExpiryDate,
		BatchNumber:    s.BatchNumber,
		SupplierRef:    s.SupplierRef,
		Active:         s.Active,
	}
}

// ToStockTransactionResponse mapea la entidad a la respuesta HTTP.
func ToStockTransactionResponse(t *entity.StockTransaction) StockTransactionResponse {
	return StockTransactionResponse{
		ID:            t.ID,
		TransactionID: t.TransactionID,
		SKUID:         t.SKUID,
		Type:          t.Type,
		Quantity:      t.Quantity,
		SignedQty:     t.SignedQuantity(),
		UnitCost:      t.UnitCost,
		TotalCost:     t.TotalCost,
		ReferenceID:   t.ReferenceID,
		PerformedBy:   t.PerformedBy,
		CreatedAt:     t.CreatedAt,
	}
}
