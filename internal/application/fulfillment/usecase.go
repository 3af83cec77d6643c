// Package fulfillment coordina la dispensación multi-línea contra el libro de
// stock y registra el monto a pagar en el libro de facturación.
package fulfillment

import (
	"context"
	"fmt"
	"sort"
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

const maxIDRetries = 3

// UseCase es el coordinador de fulfillment: valida suficiencia de todas las
// líneas, asienta los decrementos como un lote lógico y calcula el monto a
// cargo del paciente neto de seguro.
type UseCase struct {
	txRunner TxRunner
	skuRepo  repository.SKURepository
	fulRepo  repository.FulfillmentRepository // solo lecturas
	seq      *sequence.Generator
	events   events.Publisher
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el coordinador.
func NewUseCase(txRunner TxRunner, skuRepo repository.SKURepository, fulRepo repository.FulfillmentRepository, seq *sequence.Generator, pub events.Publisher, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, skuRepo: skuRepo, fulRepo: fulRepo, seq: seq, events: pub, log: log, now: time.Now}
}

// WithClock fija el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// FulfillLine una línea solicitada de la orden o receta.
type FulfillLine struct {
	SKUID    string
	Quantity int64
}

// FulfillInput entrada del coordinador.
type FulfillInput struct {
	OrderRef         string
	PatientRef       string
	Lines            []FulfillLine
	InsuranceCovered decimal.Decimal
	DispensedBy      string
}

// Fulfill dispensa las líneas contra el stock. La operación completa falla sin
// dispensar nada si algún SKU no resuelve o si alguna línea queda corta de
// stock (se reporta la primera, con disponible vs solicitado). Los bloqueos de
// fila se toman en orden ascendente de skuID para evitar deadlocks entre lotes
// concurrentes que se solapan. Al éxito emite fulfillment.completed.
func (uc *UseCase) Fulfill(ctx context.Context, in FulfillInput) (*entity.FulfillmentRecord, error) {
	if in.OrderRef == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if l.SKUID == "" || l.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.InsuranceCovered.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	// Resolución completa antes de tocar nada: un skuId sin resolver aborta todo.
	resolved := make(map[string]*entity.StockKeepingUnit, len(in.Lines))
	for _, l := range in.Lines {
		if _, ok := resolved[l.SKUID]; ok {
			continue
		}
		sku, err := uc.skuRepo.GetByID(ctx, l.SKUID)
		if err != nil {
			return nil, err
		}
		if sku == nil || !sku.Active {
			return nil, fmt.Errorf("%w: %s", domain.ErrSKUNotFound, l.SKUID)
		}
		resolved[l.SKUID] = sku
	}

	// Orden fijo de adquisición de bloqueos: skuID ascendente.
	ordered := make([]FulfillLine, len(in.Lines))
	copy(ordered, in.Lines)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].SKUID < ordered[j].SKUID })

	var record *entity.FulfillmentRecord
	var err error
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		var fulID, billID string
		if fulID, err = uc.seq.Next(ctx, sequence.PrefixFulfillment); err != nil {
			return nil, err
		}
		if billID, err = uc.seq.Next(ctx, sequence.PrefixBill); err != nil {
			return nil, err
		}
		record, err = uc.fulfillOnce(ctx, in, ordered, fulID, billID)
		if err == nil || !sequence.IsRetryable(err) {
			break
		}
		uc.log.Warn().Str("fulfillment_id", fulID).Msg("consecutivo de fulfillment en conflicto, reintentando")
	}
	if err != nil {
		return nil, err
	}

	uc.events.Publish(entity.EventFulfillmentCompleted, record.FulfillmentID)
	return record, nil
}

type appliedLine struct {
	sku      *entity.StockKeepingUnit
	quantity int64
	prevQty  int64
}

func (uc *UseCase) fulfillOnce(
	ctx context.Context,
	in FulfillInput,
	ordered []FulfillLine,
	fulID, billID string,
) (*entity.FulfillmentRecord, error) {
	now := uc.now()
	var record *entity.FulfillmentRecord

	err := uc.txRunner.RunFulfillment(ctx, func(
		skuRepo repository.SKURepository,
		txRepo repository.StockTransactionRepository,
		billRepo repository.BillRepository,
		fulfillmentRepo repository.FulfillmentRepository,
	) error {
		// Fase 1: bloquear y validar todas las líneas antes de decrementar nada.
		locked := make(map[string]*entity.StockKeepingUnit, len(ordered))
		needed := make(map[string]int64, len(ordered))
		for _, l := range ordered {
			needed[l.SKUID] += l.Quantity
		}
		for _, l := range ordered {
			if _, ok := locked[l.SKUID]; ok {
				continue
			}
			sku, err := skuRepo.GetByIDForUpdate(ctx, l.SKUID)
			if err != nil {
				return err
			}
			if sku == nil {
				return fmt.Errorf("%w: %s", domain.ErrSKUNotFound, l.SKUID)
			}
			if sku.QuantityOnHand < needed[l.SKUID] {
				return &domain.InsufficientStockError{
					SKUID:     sku.ID,
					SKUCode:   sku.Code,
					Available: sku.QuantityOnHand,
					Requested: needed[l.SKUID],
				}
			}
			locked[l.SKUID] = sku
		}

		// Fase 2: decrementos como lote lógico, con compensación ante fallo a medias.
		var applied []appliedLine
		for i, l := range ordered {
			sku := locked[l.SKUID]
			prevQty := sku.QuantityOnHand
			tx := &entity.StockTransaction{
				ID:            uuid.New().String(),
				TransactionID: fmt.Sprintf("%s-%02d", fulID, i+1),
				SKUID:         sku.ID,
				Type:          entity.TxTypeDispense,
				Quantity:      l.Quantity,
				UnitCost:      sku.UnitCost,
				TotalCost:     sku.UnitCost.Mul(decimal.NewFromInt(-l.Quantity)).Round(2),
				ReferenceID:   fulID,
				PerformedBy:   in.DispensedBy,
				CreatedAt:     now,
			}
			if err := txRepo.Create(ctx, tx); err != nil {
				uc.compensate(ctx, skuRepo, txRepo, applied, fulID, in.DispensedBy, now)
				return err
			}
			sku.QuantityOnHand -= l.Quantity
			if err := skuRepo.UpdateStock(ctx, sku.ID, sku.QuantityOnHand, sku.UnitCost, now); err != nil {
				sku.QuantityOnHand = prevQty
				uc.compensate(ctx, skuRepo, txRepo, applied, fulID, in.DispensedBy, now)
				return err
			}
			applied = append(applied, appliedLine{sku: sku, quantity: l.Quantity, prevQty: prevQty})
		}

		// Totales a precio de venta, en el orden original de la solicitud.
		// Los precios salen de las filas bloqueadas, no del snapshot de
		// resolución: un cambio de precio entre resolver y bloquear no puede
		// facturar un precio viejo.
		lines := make([]entity.DispensedLine, 0, len(in.Lines))
		billLines := make([]entity.BillLineItem, 0, len(in.Lines))
		total := decimal.Zero
		for _, l := range in.Lines {
			sku := locked[l.SKUID]
			qty := decimal.NewFromInt(l.Quantity)
			total = total.Add(sku.SellingPrice.Mul(qty))
			lines = append(lines, entity.DispensedLine{
				SKUID:     sku.ID,
				SKUCode:   sku.Code,
				Name:      sku.Name,
				Quantity:  l.Quantity,
				UnitPrice: sku.SellingPrice,
			})
			billLines = append(billLines, entity.BillLineItem{
				Name:      sku.Name,
				UnitPrice: sku.SellingPrice,
				Quantity:  qty,
			})
		}
		total = total.Round(2)

		payable := total.Sub(in.InsuranceCovered)
		if payable.LessThan(decimal.Zero) {
			payable = decimal.Zero
		}

		// La cobertura del seguro entra como descuento absoluto (porcentaje en
		// cero), así el total de la factura de farmacia es el payable del paciente.
		bill := entity.Bill{
			ID:         uuid.New().String(),
			BillID:     billID,
			PatientRef: in.PatientRef,
			Type:       entity.BillTypePharmacy,

			LineItems:      billLines,
			DiscountAmount: in.InsuranceCovered,
			PaidAmount:     decimal.Zero,
			DueDate:        now.AddDate(0, 0, 30),
			Notes:          "dispensación " + fulID,
			CreatedBy:      in.DispensedBy,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		bill = dombilling.Recompute(bill)
		if err := billRepo.Create(ctx, &bill); err != nil {
			uc.compensate(ctx, skuRepo, txRepo, applied, fulID, in.DispensedBy, now)
			return err
		}

		record = &entity.FulfillmentRecord{
			ID:               uuid.New().String(),
			FulfillmentID:    fulID,
			OrderRef:         in.OrderRef,
			PatientRef:       in.PatientRef,
			Lines:            lines,
			TotalAmount:      total,
			InsuranceCovered: in.InsuranceCovered,
			PatientPayable:   payable,
			Status:           entity.FulfillmentStatusCompleted,
			BillID:           bill.BillID,
			DispensedBy:      in.DispensedBy,
			CreatedAt:        now,
		}
		if err := fulfillmentRepo.Create(ctx, record); err != nil {
			uc.compensate(ctx, skuRepo, txRepo, applied, fulID, in.DispensedBy, now)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetFulfillment devuelve un registro por su ID interno o su ID de negocio.
func (uc *UseCase) GetFulfillment(ctx context.Context, id string) (*entity.FulfillmentRecord, error) {
	record, err := uc.fulRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record, err = uc.fulRepo.GetByFulfillmentID(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// compensate revierte decrementos ya aplicados con transacciones de tipo
// return antes de que el error salga del coordinador. Con un runner
// transaccional real el rollback hace esto redundante; con un runner sin
// atomicidad entre SKUs es lo que preserva la conservación del ledger.
func (uc *UseCase) compensate(
	ctx context.Context,
	skuRepo repository.SKURepository,
	txRepo repository.StockTransactionRepository,
	applied []appliedLine,
	fulID, performedBy string,
	now time.Time,
) {
	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]
		rev := &entity.StockTransaction{
			ID:            uuid.New().String(),
			TransactionID: fmt.Sprintf("%s-R%02d", fulID, i+1),
			SKUID:         a.sku.ID,
			Type:          entity.TxTypeReturn,
			Quantity:      a.quantity,
			UnitCost:      a.sku.UnitCost,
			TotalCost:     a.sku.UnitCost.Mul(decimal.NewFromInt(a.quantity)).Round(2),
			ReferenceID:   fulID,
			PerformedBy:   performedBy,
			CreatedAt:     now,
		}
		if err := txRepo.Create(ctx, rev); err != nil {
			uc.log.Error().Err(err).Str("sku_id", a.sku.ID).Msg("compensación: no se pudo asentar el return")
		}
		a.sku.QuantityOnHand = a.prevQty
		if err := skuRepo.UpdateStock(ctx, a.sku.ID, a.prevQty, a.sku.UnitCost, now); err != nil {
			uc.log.Error().Err(err).Str("sku_id", a.sku.ID).Msg("compensación: no se pudo restaurar el stock")
		}
	}
}
