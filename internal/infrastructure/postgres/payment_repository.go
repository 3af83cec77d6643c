package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hospital-ledger/internal/domain"
	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository sobre PostgreSQL.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, payment_id, bill_id, patient_ref, amount, method,
	status, received_by, notes, paid_at, created_at`

// Create persiste un pago nuevo.
func (r *PaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		payment.ID, payment.PaymentID, payment.BillID, payment.PatientRef,
		payment.Amount, payment.Method, payment.Status,
		nullIfEmpty(payment.ReceivedBy), nullIfEmpty(payment.Notes),
		payment.PaidAt, payment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payment_id ya existe: %v", domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID busca por ID interno. Devuelve (nil, nil) si no existe o si id no
// tiene forma de UUID (la columna es UUID; un PAY... nunca matchea).
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByPaymentID busca por ID de negocio (PAY...). Devuelve (nil, nil) si no existe.
func (r *PaymentRepo) GetByPaymentID(ctx context.Context, paymentID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, paymentID))
}

// ListByBill devuelve los pagos de una factura en orden cronológico.
func (r *PaymentRepo) ListByBill(ctx context.Context, billID string) ([]entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE bill_id = $1 ORDER BY created_at, payment_id`
	rows, err := r.q.Query(ctx, query, billID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []entity.Payment
	for rows.Next() {
		var p entity.Payment
		var receivedBy, notes *string
		if err := rows.Scan(
			&p.ID, &p.PaymentID, &p.BillID, &p.PatientRef, &p.Amount, &p.Method,
			&p.Status, &receivedBy, &notes, &p.PaidAt, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if receivedBy != nil {
			p.ReceivedBy = *receivedBy
		}
		if notes != nil {
			p.Notes = *notes
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// UpdateStatus cambia el estado de un pago (p. ej. success → refunded).
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE payments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepo) scanOne(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	var receivedBy, notes *string
	err := row.Scan(
		&p.ID, &p.PaymentID, &p.BillID, &p.PatientRef, &p.Amount, &p.Method,
		&p.Status, &receivedBy, &notes, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	if receivedBy != nil {
		p.ReceivedBy = *receivedBy
	}
	if notes != nil {
		p.Notes = *notes
	}
	return &p, nil
}
