package billing

import (
	"context"

	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de
// facturación atados a esa tx. El bloqueo de la fila de la factura dentro de
// la tx serializa los pagos concurrentes contra la misma factura, de modo que
// el chequeo de saldo pendiente siempre ve un valor consistente.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		billRepo repository.BillRepository,
		paymentRepo repository.PaymentRepository,
	) error) error
}
