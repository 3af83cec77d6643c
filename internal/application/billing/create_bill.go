package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/application/sequence"
	"github.com/jhoicas/hospital-ledger/internal/domain"
	dombilling "github.com/jhoicas/hospital-ledger/internal/domain/billing"
	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
	"github.com/jhoicas/hospital-ledger/pkg/logger"
)

const maxIDRetries = 3

// Vencimiento por defecto de una factura nueva.
const defaultDueDays = 30

var hundred = decimal.NewFromInt(100)

// CreateBillUseCase crea facturas y aplica ediciones de líneas pre-pago.
// Todos los montos derivados salen de billing.Recompute; este caso de uso
// nunca los calcula a mano.
type CreateBillUseCase struct {
	txRunner TxRunner
	billRepo repository.BillRepository
	seq      *sequence.Generator
	log      *logger.Logger
	now      func() time.Time
}

// NewCreateBillUseCase construye el caso de uso.
func NewCreateBillUseCase(txRunner TxRunner, billRepo repository.BillRepository, seq *sequence.Generator, log *logger.Logger) *CreateBillUseCase {
	return &CreateBillUseCase{txRunner: txRunner, billRepo: billRepo, seq: seq, log: log, now: time.Now}
}

// WithClock fija el reloj (tests).
func (uc *CreateBillUseCase) WithClock(now func() time.Time) *CreateBillUseCase {
	uc.now = now
	return uc
}

// CreateBillInput entrada para crear una factura.
type CreateBillInput struct {
	PatientRef         string
	Type               string
	LineItems          []entity.BillLineItem
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxPercentage      decimal.Decimal
	DueDate            *time.Time
	Notes              string
	CreatedBy          string
}

func validateLines(lines []entity.BillLineItem) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, l := range lines {
		if l.Name == "" || l.UnitPrice.LessThan(decimal.Zero) || !l.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

func validatePercents(discountPct, discountAmt, taxPct decimal.Decimal) error {
	if discountPct.LessThan(decimal.Zero) || discountPct.GreaterThan(hundred) {
		return domain.ErrInvalidInput
	}
	if taxPct.LessThan(decimal.Zero) || taxPct.GreaterThan(hundred) {
		return domain.ErrInvalidInput
	}
	if discountAmt.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	return nil
}

// CreateBill valida las líneas, reserva el consecutivo BILL y persiste la
// factura ya recalculada. Reintenta ante colisión del consecutivo.
func (uc *CreateBillUseCase) CreateBill(ctx context.Context, in CreateBillInput) (*entity.Bill, error) {
	if in.PatientRef == "" || !entity.ValidBillType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	if err := validateLines(in.LineItems); err != nil {
		return nil, err
	}
	if err := validatePercents(in.DiscountPercentage, in.DiscountAmount, in.TaxPercentage); err != nil {
		return nil, err
	}

	now := uc.now()
	dueDate := now.AddDate(0, 0, defaultDueDays)
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}

	var err error
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		var billID string
		billID, err = uc.seq.Next(ctx, sequence.PrefixBill)
		if err != nil {
			return nil, err
		}

		bill := entity.Bill{
			ID:                 uuid.New().String(),
			BillID:             billID,
			PatientRef:         in.PatientRef,
			Type:               in.Type,
			LineItems:          in.LineItems,
			DiscountPercentage: in.DiscountPercentage,
			DiscountAmount:     in.DiscountAmount,
			TaxPercentage:      in.TaxPercentage,
			PaidAmount:         decimal.Zero,
			DueDate:            dueDate,
			Notes:              in.Notes,
			CreatedBy:          in.CreatedBy,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		bill = dombilling.Recompute(bill)

		if err = uc.billRepo.Create(ctx, &bill); err == nil {
			return &bill, nil
		}
		if !sequence.IsRetryable(err) {
			return nil, err
		}
		uc.log.Warn().Str("bill_id", billID).Msg("consecutivo de factura en conflicto, reintentando")
	}
	return nil, err
}

// UpdateLinesInput edición pre-pago de líneas, descuento e impuesto.
type UpdateLinesInput struct {
	LineItems          []entity.BillLineItem
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxPercentage      decimal.Decimal
}

// UpdateBillLines reemplaza líneas/descuento/impuesto y recalcula, todo con la
// fila bloqueada. Una factura con pagos aplicados ya es inmutable: se rechaza
// con ErrBillImmutable.
func (uc *CreateBillUseCase) UpdateBillLines(ctx context.Context, id string, in UpdateLinesInput) (*entity.Bill, error) {
	if err := validateLines(in.LineItems); err != nil {
		return nil, err
	}
	if err := validatePercents(in.DiscountPercentage, in.DiscountAmount, in.TaxPercentage); err != nil {
		return nil, err
	}

	var updated *entity.Bill
	err := uc.txRunner.RunBilling(ctx, func(
		billRepo repository.BillRepository,
		_ repository.PaymentRepository,
	) error {
		bill, err := billRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if bill == nil {
			return domain.ErrBillNotFound
		}
		if bill.PaidAmount.GreaterThan(decimal.Zero) {
			return domain.ErrBillImmutable
		}

		bill.LineItems = in.LineItems
		bill.DiscountPercentage = in.DiscountPercentage
		bill.DiscountAmount = in.DiscountAmount
		bill.TaxPercentage = in.TaxPercentage
		bill.UpdatedAt = uc.now()
		*bill = dombilling.Recompute(*bill)

		if err := billRepo.Update(ctx, bill); err != nil {
			return err
		}
		updated = bill
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetBill devuelve una factura por su ID interno o su ID de negocio.
func (uc *CreateBillUseCase) GetBill(ctx context.Context, id string) (*entity.Bill, error) {
	bill, err := uc.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		bill, err = uc.billRepo.GetByBillID(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	if bill == nil {
		return nil, domain.ErrBillNotFound
	}
	return bill, nil
}
