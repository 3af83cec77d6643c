package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/application/events"
	"github.com/jhoicas/hospital-ledger/internal/application/sequence"
	"github.com/jhoicas/hospital-ledger/internal/domain"
	dombilling "github.com/jhoicas/hospital-ledger/internal/domain/billing"
	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
	"github.com/jhoicas/hospital-ledger/pkg/logger"
)

// PaymentUseCase valida y aplica pagos contra facturas. Aceptar el pago y
// recalcular la factura es una sola unidad atómica por factura: la fila se
// bloquea, así el chequeo contra el saldo pendiente nunca ve un valor viejo.
// Es la única vía por la que PaidAmount puede crecer.
type PaymentUseCase struct {
	txRunner    TxRunner
	billRepo    repository.BillRepository    // solo lecturas
	paymentRepo repository.PaymentRepository // solo lecturas
	seq         *sequence.Generator
	events      events.Publisher
	log         *logger.Logger
	now         func() time.Time
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(txRunner TxRunner, billRepo repository.BillRepository, paymentRepo repository.PaymentRepository, seq *sequence.Generator, pub events.Publisher, log *logger.Logger) *PaymentUseCase {
	return &PaymentUseCase{txRunner: txRunner, billRepo: billRepo, paymentRepo: paymentRepo, seq: seq, events: pub, log: log, now: time.Now}
}

// WithClock fija el reloj (tests).
func (uc *PaymentUseCase) WithClock(now func() time.Time) *PaymentUseCase {
	uc.now = now
	return uc
}

// ApplyPaymentInput entrada para aplicar un pago.
type ApplyPaymentInput struct {
	BillID     string // ID interno o ID de negocio BILL...
	Amount     decimal.Decimal
	Method     string
	ReceivedBy string
	Notes      string
}

// ApplyPaymentResult devuelve ambos registros, como exige el contrato.
type ApplyPaymentResult struct {
	Payment *entity.Payment
	Bill    *entity.Bill
}

// ApplyPayment aplica un pago: valida monto y método, bloquea la factura,
// rechaza estricto si excede el saldo (sin recorte ni aceptación parcial),
// crea el pago en success, incrementa PaidAmount y recalcula. Si la factura
// queda pagada, emite bill.paid tras el commit (fire-and-forget).
func (uc *PaymentUseCase) ApplyPayment(ctx context.Context, in ApplyPaymentInput) (*ApplyPaymentResult, error) {
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !entity.ValidPayMethod(in.Method) {
		return nil, domain.ErrInvalidInput
	}

	var result *ApplyPaymentResult
	var err error
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		var payID string
		payID, err = uc.seq.Next(ctx, sequence.PrefixPayment)
		if err != nil {
			return nil, err
		}
		result, err = uc.applyOnce(ctx, in, payID)
		if err == nil || !sequence.IsRetryable(err) {
			break
		}
		uc.log.Warn().Str("payment_id", payID).Msg("consecutivo de pago en conflicto, reintentando")
	}
	if err != nil {
		return nil, err
	}

	if result.Bill.PaymentStatus == entity.PaymentStatusPaid {
		uc.events.Publish(entity.EventBillPaid, result.Bill.BillID)
	}
	return result, nil
}

func (uc *PaymentUseCase) applyOnce(ctx context.Context, in ApplyPaymentInput, payID string) (*ApplyPaymentResult, error) {
	now := uc.now()
	var result *ApplyPaymentResult

	err := uc.txRunner.RunBilling(ctx, func(
		billRepo repository.BillRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		bill, err := resolveForUpdate(ctx, billRepo, in.BillID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(bill.OutstandingAmount) {
			return &domain.ExceedsOutstandingError{
				BillID:      bill.BillID,
				Outstanding: bill.OutstandingAmount,
				Requested:   in.Amount,
			}
		}

		payment := &entity.Payment{
			ID:         uuid.New().String(),
			PaymentID:  payID,
			BillID:     bill.ID,
			PatientRef: bill.PatientRef,
			Amount:     in.Amount,
			Method:     in.Method,
			Status:     entity.PayStatusSuccess,
			ReceivedBy: in.ReceivedBy,
			Notes:      in.Notes,
			PaidAt:     now,
			CreatedAt:  now,
		}
		if err := paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		bill.PaidAmount = bill.PaidAmount.Add(in.Amount)
		bill.UpdatedAt = now
		*bill = dombilling.Recompute(*bill)
		if err := billRepo.Update(ctx, bill); err != nil {
			return err
		}

		result = &ApplyPaymentResult{Payment: payment, Bill: bill}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RefundPayment revierte un pago exitoso: lo marca refunded, descuenta el
// monto de PaidAmount y recalcula. Una factura que vuelve a saldo pagado cero
// por reembolsos queda en estado refunded.
func (uc *PaymentUseCase) RefundPayment(ctx context.Context, paymentID string) (*ApplyPaymentResult, error) {
	now := uc.now()
	var result *ApplyPaymentResult

	err := uc.txRunner.RunBilling(ctx, func(
		billRepo repository.BillRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		payment, err := paymentRepo.GetByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			payment, err = paymentRepo.GetByID(ctx, paymentID)
			if err != nil {
				return err
			}
		}
		if payment == nil {
			return domain.ErrPaymentNotFound
		}
		if payment.Status != entity.PayStatusSuccess {
			return domain.ErrConflict
		}

		bill, err := billRepo.GetByIDForUpdate(ctx, payment.BillID)
		if err != nil {
			return err
		}
		if bill == nil {
			return domain.ErrBillNotFound
		}

		if err := paymentRepo.UpdateStatus(ctx, payment.ID, entity.PayStatusRefunded); err != nil {
			return err
		}
		payment.Status = entity.PayStatusRefunded

		bill.PaidAmount = bill.PaidAmount.Sub(payment.Amount)
		if bill.PaidAmount.LessThan(decimal.Zero) {
			bill.PaidAmount = decimal.Zero
		}
		bill.UpdatedAt = now
		*bill = dombilling.Recompute(*bill)
		if bill.PaidAmount.LessThanOrEqual(dombilling.PaidTolerance) {
			bill.PaymentStatus = entity.PaymentStatusRefunded
		}
		if err := billRepo.Update(ctx, bill); err != nil {
			return err
		}

		result = &ApplyPaymentResult{Payment: payment, Bill: bill}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetPayment devuelve un pago por su ID interno o su ID de negocio.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	payment, err := uc.paymentRepo.GetByPaymentID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		payment, err = uc.paymentRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	if payment == nil {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// ListPayments devuelve los pagos de una factura (por ID interno o de negocio).
func (uc *PaymentUseCase) ListPayments(ctx context.Context, billID string) ([]entity.Payment, error) {
	bill, err := uc.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		bill, err = uc.billRepo.GetByBillID(ctx, billID)
		if err != nil {
			return nil, err
		}
	}
	if bill == nil {
		return nil, domain.ErrBillNotFound
	}
	return uc.paymentRepo.ListByBill(ctx, bill.ID)
}

// resolveForUpdate bloquea la factura buscando por ID interno y, si no existe,
// por ID de negocio.
func resolveForUpdate(ctx context.Context, billRepo repository.BillRepository, id string) (*entity.Bill, error) {
	bill, err := billRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		byBusiness, err := billRepo.GetByBillID(ctx, id)
		if err != nil {
			return nil, err
		}
		if byBusiness == nil {
			return nil, domain.ErrBillNotFound
		}
		bill, err = billRepo.GetByIDForUpdate(ctx, byBusiness.ID)
		if err != nil {
			return nil, err
		}
		if bill == nil {
			return nil, domain.ErrBillNotFound
		}
	}
	return bill, nil
}
