package stock

import (
	"context"

	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la re-validación de suficiencia,
// el append de la transacción y la actualización del agregado SKU sean una
// sola unidad atómica (nunca dos round-trips separados de check-then-act).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		skuRepo repository.SKURepository,
		txRepo repository.StockTransactionRepository,
	) error) error
}

// AlertCache memoiza el snapshot de alertas por un TTL corto. La evaluación
// sigue siendo pura y bajo demanda; la caché solo evita recalcular en ráfagas.
type AlertCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
}
