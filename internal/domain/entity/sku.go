package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de SKU de farmacia (forma farmacéutica).
const (
	SKUCategoryTablet    = "tablet"
	SKUCategoryCapsule   = "capsule"
	SKUCategorySyrup     = "syrup"
	SKUCategoryInjection = "injection"
	SKUCategoryOintment  = "ointment"
	SKUCategoryDrops     = "drops"
	SKUCategoryInhaler   = "inhaler"
	SKUCategoryOther     = "other"
)

// StockKeepingUnit representa un SKU del inventario de farmacia.
// QuantityOnHand es el único campo mutable de cantidad y solo se modifica
// aplicando una StockTransaction; nunca puede quedar negativo.
// UnitCost es costo promedio ponderado, recalculado en cada compra.
type StockKeepingUnit struct {
	ID             string
	Code           string // único, ej. DRG-AMOX-500
	Name           string
	GenericName    string
	Category       string
	Unit           string // tableta, ml, vial...
	QuantityOnHand int64
	ReorderLevel   int64
	MinimumStock   int64
	UnitCost       decimal.Decimal
	SellingPrice   decimal.Decimal
	ExpiryDate     *time.Time
	BatchNumber    string
	SupplierRef    string // referencia opaca al proveedor (colaborador externo)
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
