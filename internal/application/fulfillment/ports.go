package fulfillment

import (
	"context"

	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

// TxRunner ejecuta el lote de dispensación completo dentro de una transacción:
// decrementos de stock, factura de farmacia y registro de fulfillment. Si el
// runner no puede garantizar atomicidad real entre SKUs, el coordinador
// compensa los decrementos ya aplicados antes de dejar salir el error.
type TxRunner interface {
	RunFulfillment(ctx context.Context, fn func(
		skuRepo repository.SKURepository,
		txRepo repository.StockTransactionRepository,
		billRepo repository.BillRepository,
		fulfillmentRepo repository.FulfillmentRepository,
	) error) error
}
