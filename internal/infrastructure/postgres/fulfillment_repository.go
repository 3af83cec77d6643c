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

var _ repository.FulfillmentRepository = (*FulfillmentRepo)(nil)

// FulfillmentRepo implementación de FulfillmentRepository sobre PostgreSQL.
// Las líneas dispensadas se guardan como JSONB junto al registro.
type FulfillmentRepo struct {
	q Querier
}

// NewFulfillmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFulfillmentRepository(q Querier) *FulfillmentRepo {
	return &FulfillmentRepo{q: q}
}

const fulfillmentColumns = `id, fulfillment_id, order_ref, patient_ref, lines,
	total_amount, insurance_covered, patient_payable, status, bill_id,
	dispensed_by, created_at`

// Create persiste un registro de dispensación.
func (r *FulfillmentRepo) Create(ctx context.Context, record *entity.FulfillmentRecord) error {
	lines, err := json.Marshal(record.Lines)
	if err != nil {
		return fmt.Errorf("marshal dispensed lines: %w", err)
	}
	query := `
		INSERT INTO fulfillments (` + fulfillmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.q.Exec(ctx, query,
		record.ID, record.FulfillmentID, nullIfEmpty(record.OrderRef), record.PatientRef,
		lines, record.TotalAmount, record.InsuranceCovered, record.PatientPayable,
		record.Status, nullIfEmpty(record.BillID), nullIfEmpty(record.DispensedBy),
		record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: fulfillment_id ya existe: %v", domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert fulfillment: %w", err)
	}
	return nil
}

// GetByID busca por ID interno. Devuelve (nil, nil) si no existe o si id no
// tiene forma de UUID (la columna es UUID; un FUL... nunca matchea).
func (r *FulfillmentRepo) GetByID(ctx context.Context, id string) (*entity.FulfillmentRecord, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + fulfillmentColumns + ` FROM fulfillments WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByFulfillmentID busca por ID de negocio (FUL...). Devuelve (nil, nil) si no existe.
func (r *FulfillmentRepo) GetByFulfillmentID(ctx context.Context, fulfillmentID string) (*entity.FulfillmentRecord, error) {
	query := `SELECT ` + fulfillmentColumns + ` FROM fulfillments WHERE fulfillment_id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, fulfillmentID))
}

func (r *FulfillmentRepo) scanOne(row pgx.Row) (*entity.FulfillmentRecord, error) {
	var f entity.FulfillmentRecord
	var lines []byte
	var orderRef, billID, dispensedBy *string
	err := row.Scan(
		&f.ID, &f.FulfillmentID, &orderRef, &f.PatientRef, &lines,
		&f.TotalAmount, &f.InsuranceCovered, &f.PatientPayable,
		&f.Status, &billID, &dispensedBy, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan fulfillment: %w", err)
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &f.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal dispensed lines: %w", err)
		}
	}
	if orderRef != nil {
		f.OrderRef = *orderRef
	}
	if billID != nil {
		f.BillID = *billID
	}
	if dispensedBy != nil {
		f.DispensedBy = *dispensedBy
	}
	return &f, nil
}
