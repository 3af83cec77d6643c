package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un fulfillment (dispensación).
const (
	FulfillmentStatusPending   = "pending"
	FulfillmentStatusPartial   = "partial"
	FulfillmentStatusCompleted = "completed"
	FulfillmentStatusCancelled = "cancelled"
)

// DispensedLine es una línea dispensada de un fulfillment.
type DispensedLine struct {
	SKUID     string          `json:"sku_id"`
	SKUCode   string          `json:"sku_code"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// FulfillmentRecord representa la dispensación de varias líneas de stock contra
// una orden o receta. Invariantes: TotalAmount = Σ(unitPrice×quantity);
// PatientPayable = max(0, TotalAmount − InsuranceCovered).
type FulfillmentRecord struct {
	ID               string
	FulfillmentID    string // FUL{YYYYMMDD}{0000}, único
	OrderRef         string // referencia opaca a la orden / receta
	PatientRef       string
	Lines            []DispensedLine
	TotalAmount      decimal.Decimal
	InsuranceCovered decimal.Decimal
	PatientPayable   decimal.Decimal
	Status           string
	BillID           string // factura de farmacia generada por el payable
	DispensedBy      string
	CreatedAt        time.Time
}
