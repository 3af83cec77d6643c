package repository

import (
	"context"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// StockTransactionRepository persistencia del log inmutable de transacciones.
// Solo inserta y lee: no existe Update ni Delete por diseño del ledger.
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	ListBySKU(ctx context.Context, skuID string) ([]entity.StockTransaction, error)
}
