package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hospital-ledger/internal/domain"
	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

var _ repository.BillRepository = (*BillRepo)(nil)

// BillRepo implementación de BillRepository sobre PostgreSQL.
// Las líneas de la factura se guardan como JSONB: siempre se leen y escriben
// junto con la factura, nunca se consultan por separado.
type BillRepo struct {
	q Querier
}

// NewBillRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillRepository(q Querier) *BillRepo {
	return &BillRepo{q: q}
}

const billColumns = `id, bill_id, patient_ref, type, line_items, subtotal,
	discount_percentage, discount_amount, tax_percentage, tax_amount,
	total_amount, paid_amount, outstanding_amount, payment_status,
	due_date, notes, created_by, created_at, updated_at`

// Create persiste una factura nueva.
func (r *BillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	lines, err := json.Marshal(bill.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err = r.q.Exec(ctx, query,
		bill.ID, bill.BillID, bill.PatientRef, bill.Type, lines, bill.Subtotal,
		bill.DiscountPercentage, bill.DiscountAmount, bill.TaxPercentage, bill.TaxAmount,
		bill.TotalAmount, bill.PaidAmount, bill.OutstandingAmount, bill.PaymentStatus,
		bill.DueDate, nullIfEmpty(bill.Notes), nullIfEmpty(bill.CreatedBy),
		bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bill_id ya existe: %v", domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

// GetByID busca por ID interno. Devuelve (nil, nil) si no existe o si id no
// tiene forma de UUID (la columna es UUID; un ID de negocio nunca matchea).
func (r *BillRepo) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByBillID busca por ID de negocio (BILL...). Devuelve (nil, nil) si no existe.
func (r *BillRepo) GetByBillID(ctx context.Context, billID string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, billID))
}

// GetByIDForUpdate bloquea la fila de la factura dentro de la tx actual.
func (r *BillRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Bill, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// Update reescribe la factura completa (líneas y derivados incluidos).
func (r *BillRepo) Update(ctx context.Context, bill *entity.Bill) error {
	lines, err := json.Marshal(bill.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	query := `
		UPDATE bills SET
			line_items = $2, subtotal = $3, discount_percentage = $4,
			discount_amount = $5, tax_percentage = $6, tax_amount = $7,
			total_amount = $8, paid_amount = $9, outstanding_amount = $10,
			payment_status = $11, due_date = $12, notes = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		bill.ID, lines, bill.Subtotal, bill.DiscountPercentage,
		bill.DiscountAmount, bill.TaxPercentage, bill.TaxAmount,
		bill.TotalAmount, bill.PaidAmount, bill.OutstandingAmount,
		bill.PaymentStatus, bill.DueDate, nullIfEmpty(bill.Notes), bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}
	return nil
}

func (r *BillRepo) scanOne(row pgx.Row) (*entity.Bill, error) {
	var b entity.Bill
	var lines []byte
	var notes, createdBy *string
	err := row.Scan(
		&b.ID, &b.BillID, &b.PatientRef, &b.Type, &lines, &b.Subtotal,
		&b.DiscountPercentage, &b.DiscountAmount, &b.TaxPercentage, &b.TaxAmount,
		&b.TotalAmount, &b.PaidAmount, &b.OutstandingAmount, &b.PaymentStatus,
		&b.DueDate, &notes, &createdBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bill: %w", err)
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &b.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshal line items: %w", err)
		}
	}
	if notes != nil {
		b.Notes = *notes
	}
	if createdBy != nil {
		b.CreatedBy = *createdBy
	}
	return &b, nil
}
