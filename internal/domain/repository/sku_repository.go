package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// SKURepository persistencia de SKUs del inventario de farmacia.
type SKURepository interface {
	Create(ctx context.Context, sku *entity.StockKeepingUnit) error
	GetByID(ctx context.Context, id string) (*entity.StockKeepingUnit, error)
	GetByCode(ctx context.Context, code string) (*entity.StockKeepingUnit, error)
	// GetByIDForUpdate bloquea la fila del SKU (SELECT FOR UPDATE) dentro de la
	// transacción actual; es la unidad de serialización por SKU.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.StockKeepingUnit, error)
	ListActive(ctx context.Context) ([]*entity.StockKeepingUnit, error)
	// UpdateStock actualiza cantidad y costo promedio del agregado; solo debe
	// invocarse con la fila bloqueada y junto al insert de la transacción.
	UpdateStock(ctx context.Context, id string, quantityOnHand int64, unitCost decimal.Decimal, updatedAt time.Time) error
}
