package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/hospital-ledger/internal/application/billing"
	"github.com/jhoicas/hospital-ledger/internal/application/fulfillment"
	"github.com/jhoicas/hospital-ledger/internal/application/stock"
	"github.com/jhoicas/hospital-ledger/internal/domain"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

// Ensure TxRunner implementa los runners de stock, facturación y fulfillment.
var _ stock.TxRunner = (*TxRunner)(nil)
var _ billing.TxRunner = (*TxRunner)(nil)
var _ fulfillment.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es la
// primitiva de atomicidad del ledger: bloqueo de fila (SELECT FOR UPDATE) más
// Commit/Rollback. Un timeout del caller aborta la tx completa, dejando el
// ledger como si la operación nunca hubiera empezado.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrency, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrency, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run inicia una transacción con los repos del libro de stock.
func (r *TxRunner) Run(ctx context.Context, fn func(
	skuRepo repository.SKURepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewSKURepository(q), NewStockTransactionRepository(q))
	})
}

// RunBilling inicia una transacción con los repos de facturación y pagos.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	billRepo repository.BillRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewBillRepository(q), NewPaymentRepository(q))
	})
}

// RunFulfillment inicia una transacción con todos los repos que toca una
// dispensación (stock, facturación y fulfillment).
func (r *TxRunner) RunFulfillment(ctx context.Context, fn func(
	skuRepo repository.SKURepository,
	txRepo repository.StockTransactionRepository,
	billRepo repository.BillRepository,
	fulfillmentRepo repository.FulfillmentRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(
			NewSKURepository(q),
			NewStockTransactionRepository(q),
			NewBillRepository(q),
			NewFulfillmentRepository(q),
		)
	})
}
