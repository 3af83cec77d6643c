package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/hospital-ledger/internal/domain"
	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no hay UPDATE ni DELETE.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create persiste una transacción de stock.
func (r *StockTransactionRepo) Create(ctx context.Context, tx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, transaction_id, sku_id, type, quantity,
			outbound, unit_cost, total_cost, reference_id, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, tx.TransactionID, tx.SKUID, tx.Type, tx.Quantity,
		tx.Outbound, tx.UnitCost, tx.TotalCost,
		nullIfEmpty(tx.ReferenceID), nullIfEmpty(tx.PerformedBy), tx.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction_id ya existe: %v", domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

// ListBySKU devuelve todas las transacciones de un SKU en orden de creación.
func (r *StockTransactionRepo) ListBySKU(ctx context.Context, skuID string) ([]entity.StockTransaction, error) {
	query := `
		SELECT id, transaction_id, sku_id, type, quantity, outbound, unit_cost,
			total_cost, reference_id, performed_by, created_at
		FROM stock_transactions WHERE sku_id = $1 ORDER BY created_at, transaction_id`
	rows, err := r.q.Query(ctx, query, skuID)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()

	var txs []entity.StockTransaction
	for rows.Next() {
		var t entity.StockTransaction
		var referenceID, performedBy *string
		if err := rows.Scan(
			&t.ID, &t.TransactionID, &t.SKUID, &t.Type, &t.Quantity, &t.Outbound,
			&t.UnitCost, &t.TotalCost, &referenceID, &performedBy, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		if referenceID != nil {
			t.ReferenceID = *referenceID
		}
		if performedBy != nil {
			t.PerformedBy = *performedBy
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
