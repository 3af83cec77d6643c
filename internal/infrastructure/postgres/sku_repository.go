package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/domain"
	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

var _ repository.SKURepository = (*SKURepo)(nil)

// SKURepo implementación de SKURepository sobre PostgreSQL (usable con pool o tx).
type SKURepo struct {
	q Querier
}

// NewSKURepository construye el adaptador. Pasar pool o tx (Querier).
func NewSKURepository(q Querier) *SKURepo {
	return &SKURepo{q: q}
}

const skuColumns = `id, code, name, generic_name, category, unit, quantity_on_hand,
	reorder_level, minimum_stock, unit_cost, selling_price, expiry_date,
	batch_number, supplier_ref, active, created_at, updated_at`

// Create persiste un SKU nuevo.
func (r *SKURepo) Create(ctx context.Context, sku *entity.StockKeepingUnit) error {
	query := `
		INSERT INTO skus (id, code, name, generic_name, category, unit, quantity_on_hand,
			reorder_level, minimum_stock, unit_cost, selling_price, expiry_date,
			batch_number, supplier_ref, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		sku.ID, sku.Code, sku.Name, nullIfEmpty(sku.GenericName), sku.Category, sku.Unit,
		sku.QuantityOnHand, sku.ReorderLevel, sku.MinimumStock, sku.UnitCost, sku.SellingPrice,
		sku.ExpiryDate, nullIfEmpty(sku.BatchNumber), nullIfEmpty(sku.SupplierRef),
		sku.Active, sku.CreatedAt, sku.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código de SKU ya existe: %v", domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert sku: %w", err)
	}
	return nil
}

func (r *SKURepo) scanOne(row pgx.Row) (*entity.StockKeepingUnit, error) {
	var s entity.StockKeepingUnit
	var genericName, batchNumber, supplierRef *string
	err := row.Scan(
		&s.ID, &s.Code, &s.Name, &genericName, &s.Category, &s.Unit, &s.QuantityOnHand,
		&s.ReorderLevel, &s.MinimumStock, &s.UnitCost, &s.SellingPrice, &s.ExpiryDate,
		&batchNumber, &supplierRef, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if genericName != nil {
		s.GenericName = *genericName
	}
	if batchNumber != nil {
		s.BatchNumber = *batchNumber
	}
	if supplierRef != nil {
		s.SupplierRef = *supplierRef
	}
	return &s, nil
}

// GetByID obtiene un SKU por ID. Un id sin forma de UUID devuelve (nil, nil):
// la columna es UUID y un código de SKU jamás matchea.
func (r *SKURepo) GetByID(ctx context.Context, id string) (*entity.StockKeepingUnit, error) {
	if !isUUID(id) {
		return nil, nil
	}
	sku, err := r.scanOne(r.q.QueryRow(ctx, `SELECT `+skuColumns+` FROM skus WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get sku: %w", err)
	}
	return sku, nil
}

// GetByCode obtiene un SKU por su código único.
func (r *SKURepo) GetByCode(ctx context.Context, code string) (*entity.StockKeepingUnit, error) {
	sku, err := r.scanOne(r.q.QueryRow(ctx, `SELECT `+skuColumns+` FROM skus WHERE code = $1`, code))
	if err != nil {
		return nil, fmt.Errorf("get sku by code: %w", err)
	}
	return sku, nil
}

// GetByIDForUpdate obtiene el SKU y bloquea la fila (SELECT FOR UPDATE).
// Es la unidad de serialización por SKU: dos decrementos concurrentes sobre la
// misma fila quedan en cola aquí.
func (r *SKURepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.StockKeepingUnit, error) {
	if !isUUID(id) {
		return nil, nil
	}
	sku, err := r.scanOne(r.q.QueryRow(ctx, `SELECT `+skuColumns+` FROM skus WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("get sku for update: %w", err)
	}
	return sku, nil
}

// ListActive lista los SKUs activos (para la evaluación de alertas).
func (r *SKURepo) ListActive(ctx context.Context) ([]*entity.StockKeepingUnit, error) {
	rows, err := r.q.Query(ctx, `SELECT `+skuColumns+` FROM skus WHERE active ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	defer rows.Close()

	var skus []*entity.StockKeepingUnit
	for rows.Next() {
		sku, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sku: %w", err)
		}
		skus = append(skus, sku)
	}
	return skus, rows.Err()
}

// UpdateStock escribe cantidad y costo promedio del agregado. Solo debe
// invocarse con la fila bloqueada; el CHECK quantity_on_hand >= 0 de la tabla
// es la última línea de defensa del invariante.
func (r *SKURepo) UpdateStock(ctx context.Context, id string, quantityOnHand int64, unitCost decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE skus SET quantity_on_hand = $2, unit_cost = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, quantityOnHand, unitCost, updatedAt)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSKUNotFound
	}
	return nil
}
