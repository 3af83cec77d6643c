package entity

import "time"

// Clases de alerta de stock.
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
	AlertExpiring   = "expiring"
	AlertExpired    = "expired"
)

// Severidades de alerta.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert es una alerta derivada del estado actual del libro de stock.
// Nunca se persiste como fuente de verdad: se recalcula en cada consulta.
type Alert struct {
	SKUID          string     `json:"sku_id"`
	SKUCode        string     `json:"sku_code"`
	SKUName        string     `json:"sku_name"`
	Kind           string     `json:"kind"`
	Severity       string     `json:"severity"`
	QuantityOnHand int64      `json:"quantity_on_hand"`
	ReorderLevel   int64      `json:"reorder_level"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
}
