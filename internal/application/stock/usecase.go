package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/application/sequence"
	"github.com/jhoicas/hospital-ledger/internal/domain"
	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
	domstock "github.com/jhoicas/hospital-ledger/internal/domain/stock"
	"github.com/jhoicas/hospital-ledger/pkg/logger"
)

// Presupuesto de reintentos ante colisión de consecutivo (23505).
const maxIDRetries = 3

// LedgerUseCase es el libro de stock: toda mutación de cantidad pasa por
// Commit, que bloquea la fila del SKU, re-valida suficiencia para tipos que
// restan y deja una StockTransaction inmutable, todo en una transacción.
type LedgerUseCase struct {
	txRunner TxRunner
	skuRepo  repository.SKURepository
	txRepo   repository.StockTransactionRepository // solo lecturas; las escrituras van por el runner
	seq      *sequence.Generator
	log      *logger.Logger
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, skuRepo repository.SKURepository, txRepo repository.StockTransactionRepository, seq *sequence.Generator, log *logger.Logger) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, skuRepo: skuRepo, txRepo: txRepo, seq: seq, log: log, now: time.Now}
}

// WithClock fija el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// CreateSKUInput entrada para registrar un SKU nuevo.
type CreateSKUInput struct {
	Code         string
	Name         string
	GenericName  string
	Category     string
	Unit         string
	InitialQty   int64
	ReorderLevel int64
	MinimumStock int64
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	ExpiryDate   *time.Time
	BatchNumber  string
	SupplierRef  string
	PerformedBy  string
}

// CreateSKU registra un SKU; si trae cantidad inicial, la asienta como una
// compra para que el fold de transacciones reproduzca el stock desde el día cero.
func (uc *LedgerUseCase) CreateSKU(ctx context.Context, in CreateSKUInput) (*entity.StockKeepingUnit, error) {
	if in.Code == "" || in.Name == "" || !validCategory(in.Category) {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialQty < 0 || in.ReorderLevel < 0 || in.MinimumStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost.LessThan(decimal.Zero) || in.SellingPrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	sku := &entity.StockKeepingUnit{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Name:         in.Name,
		GenericName:  in.GenericName,
		Category:     in.Category,
		Unit:         in.Unit,
		ReorderLevel: in.ReorderLevel,
		MinimumStock: in.MinimumStock,
		UnitCost:     in.UnitCost,
		SellingPrice: in.SellingPrice,
		ExpiryDate:   in.ExpiryDate,
		BatchNumber:  in.BatchNumber,
		SupplierRef:  in.SupplierRef,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.skuRepo.Create(ctx, sku); err != nil {
		return nil, err
	}

	if in.InitialQty > 0 {
		cost := in.UnitCost
		if _, err := uc.Commit(ctx, CommitInput{
			SKUID:       sku.ID,
			Type:        entity.TxTypePurchase,
			Quantity:    in.InitialQty,
			UnitCost:    &cost,
			PerformedBy: in.PerformedBy,
			ReferenceID: "initial-stock",
		}); err != nil {
			return nil, err
		}
		sku.QuantityOnHand = in.InitialQty
	}
	return sku, nil
}

// Reservation es el resultado de un pre-chequeo de suficiencia. No muta nada:
// la garantía real la da la re-validación dentro de Commit.
type Reservation struct {
	SKUID     string
	SKUCode   string
	Requested int64
	Available int64
	CheckedAt time.Time
}

// Reserve verifica, sin mutar, que el SKU tenga stock suficiente.
func (uc *LedgerUseCase) Reserve(ctx context.Context, skuID string, quantity int64) (*Reservation, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	sku, err := uc.skuRepo.GetByID(ctx, skuID)
	if err != nil {
		return nil, err
	}
	if sku == nil || !sku.Active {
		return nil, domain.ErrSKUNotFound
	}
	if sku.QuantityOnHand < quantity {
		return nil, &domain.InsufficientStockError{
			SKUID:     sku.ID,
			SKUCode:   sku.Code,
			Available: sku.QuantityOnHand,
			Requested: quantity,
		}
	}
	return &Reservation{
		SKUID:     sku.ID,
		SKUCode:   sku.Code,
		Requested: quantity,
		Available: sku.QuantityOnHand,
		CheckedAt: uc.now(),
	}, nil
}

// CommitInput entrada para asentar una transacción de stock.
// Quantity siempre positiva; para adjustment, Outbound marca la dirección.
// UnitCost es obligatorio en purchase (recalcula el costo promedio ponderado).
type CommitInput struct {
	SKUID       string
	Type        string
	Quantity    int64
	Outbound    bool
	UnitCost    *decimal.Decimal
	PerformedBy string
	ReferenceID string
}

// Commit asienta la transacción y actualiza el agregado en una unidad atómica:
// bloquea la fila del SKU, re-valida suficiencia si el tipo resta, inserta la
// entrada inmutable y escribe la nueva cantidad. Dos decrementos concurrentes
// sobre el mismo SKU jamás pueden exceder juntos el stock disponible.
func (uc *LedgerUseCase) Commit(ctx context.Context, in CommitInput) (*entity.StockTransaction, error) {
	if !entity.ValidTxType(in.Type) || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Type == entity.TxTypePurchase && (in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero)) {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.StockTransaction
	var err error
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		var txnID string
		txnID, err = uc.seq.Next(ctx, sequence.PrefixTransaction)
		if err != nil {
			return nil, err
		}
		result, err = uc.commitOnce(ctx, in, txnID)
		if err == nil || !sequence.IsRetryable(err) {
			return result, err
		}
		uc.log.Warn().Str("transaction_id", txnID).Msg("consecutivo de transacción en conflicto, reintentando")
	}
	return nil, err
}

func (uc *LedgerUseCase) commitOnce(ctx context.Context, in CommitInput, txnID string) (*entity.StockTransaction, error) {
	now := uc.now()
	var created *entity.StockTransaction

	err := uc.txRunner.Run(ctx, func(
		skuRepo repository.SKURepository,
		txRepo repository.StockTransactionRepository,
	) error {
		sku, err := skuRepo.GetByIDForUpdate(ctx, in.SKUID)
		if err != nil {
			return err
		}
		if sku == nil {
			return domain.ErrSKUNotFound
		}

		tx := &entity.StockTransaction{
			ID:            uuid.New().String(),
			TransactionID: txnID,
			SKUID:         sku.ID,
			Type:          in.Type,
			Quantity:      in.Quantity,
			Outbound:      in.Type == entity.TxTypeAdjustment && in.Outbound,
			ReferenceID:   in.ReferenceID,
			PerformedBy:   in.PerformedBy,
			CreatedAt:     now,
		}

		delta := tx.SignedQuantity()
		if delta < 0 && sku.QuantityOnHand+delta < 0 {
			return &domain.InsufficientStockError{
				SKUID:     sku.ID,
				SKUCode:   sku.Code,
				Available: sku.QuantityOnHand,
				Requested: -delta,
			}
		}

		unitCost := sku.UnitCost
		if in.Type == entity.TxTypePurchase {
			unitCost = *in.UnitCost
			sku.UnitCost = domstock.WeightedAverageCost(sku.QuantityOnHand, sku.UnitCost, in.Quantity, unitCost)
		}
		tx.UnitCost = unitCost
		tx.TotalCost = unitCost.Mul(decimal.NewFromInt(delta)).Round(2)

		if err := txRepo.Create(ctx, tx); err != nil {
			return err
		}
		if err := skuRepo.UpdateStock(ctx, sku.ID, sku.QuantityOnHand+delta, sku.UnitCost, now); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetSKU devuelve un SKU por su ID interno o su código.
func (uc *LedgerUseCase) GetSKU(ctx context.Context, idOrCode string) (*entity.StockKeepingUnit, error) {
	sku, err := uc.skuRepo.GetByID(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		sku, err = uc.skuRepo.GetByCode(ctx, idOrCode)
		if err != nil {
			return nil, err
		}
	}
	if sku == nil {
		return nil, domain.ErrSKUNotFound
	}
	return sku, nil
}

// ListSKUs devuelve los SKUs activos.
func (uc *LedgerUseCase) ListSKUs(ctx context.Context) ([]*entity.StockKeepingUnit, error) {
	return uc.skuRepo.ListActive(ctx)
}

// ListTransactions devuelve el historial inmutable de un SKU.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, idOrCode string) ([]entity.StockTransaction, error) {
	sku, err := uc.GetSKU(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	return uc.txRepo.ListBySKU(ctx, sku.ID)
}

func validCategory(c string) bool {
	switch c {
	case entity.SKUCategoryTablet, entity.SKUCategoryCapsule, entity.SKUCategorySyrup,
		entity.SKUCategoryInjection, entity.SKUCategoryOintment, entity.SKUCategoryDrops,
		entity.SKUCategoryInhaler, entity.SKUCategoryOther:
		return true
	}
	return false
}
