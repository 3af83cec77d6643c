package repository

import (
	"context"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// BillRepository persistencia de facturas.
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id string) (*entity.Bill, error)
	GetByBillID(ctx context.Context, billID string) (*entity.Bill, error)
	// GetByIDForUpdate bloquea la fila de la factura; es la unidad de
	// serialización por factura (pagos concurrentes se serializan aquí).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Bill, error)
	Update(ctx context.Context, bill *entity.Bill) error
}

// PaymentRepository persistencia de pagos.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*entity.Payment, error)
	ListByBill(ctx context.Context, billID string) ([]entity.Payment, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
