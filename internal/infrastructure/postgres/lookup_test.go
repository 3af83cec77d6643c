package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Querier fake que se comporta como pgx frente a columnas UUID: un parámetro
// sin forma de UUID no devuelve cero filas, revienta la codificación.
// ──────────────────────────────────────────────────────────────────────────────

type uuidStrictQuerier struct {
	queries int
}

type errRow struct{ err error }

func (r errRow) Scan(_ ...any) error { return r.err }

func (q *uuidStrictQuerier) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *uuidStrictQuerier) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, nil
}

func (q *uuidStrictQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.queries++
	if len(args) == 1 {
		if s, ok := args[0].(string); ok && !isUUID(s) {
			return errRow{err: fmt.Errorf("unable to encode %q into binary format for uuid (OID 2950): cannot find encode plan", s)}
		}
	}
	return errRow{err: pgx.ErrNoRows}
}

// ──────────────────────────────────────────────────────────────────────────────
// Búsquedas por ID interno con un ID de negocio: (nil, nil), sin tocar la BD
// ──────────────────────────────────────────────────────────────────────────────

// El contrato "ID interno o de negocio" de los casos de uso depende de que el
// lookup por id devuelva "no existe" ante un BILL.../PAY.../FUL.../código, para
// poder caer al lookup por la columna de negocio.
func TestGetByID_IDDeNegocioCortocircuitaANoExiste(t *testing.T) {
	q := &uuidStrictQuerier{}

	bill, err := NewBillRepository(q).GetByID(context.Background(), "BILL202608280001")
	require.NoError(t, err)
	assert.Nil(t, bill)

	billLocked, err := NewBillRepository(q).GetByIDForUpdate(context.Background(), "BILL202608280001")
	require.NoError(t, err)
	assert.Nil(t, billLocked)

	payment, err := NewPaymentRepository(q).GetByID(context.Background(), "PAY202608280001")
	require.NoError(t, err)
	assert.Nil(t, payment)

	record, err := NewFulfillmentRepository(q).GetByID(context.Background(), "FUL202608280001")
	require.NoError(t, err)
	assert.Nil(t, record)

	sku, err := NewSKURepository(q).GetByID(context.Background(), "DRG-AMOX-500")
	require.NoError(t, err)
	assert.Nil(t, sku)

	skuLocked, err := NewSKURepository(q).GetByIDForUpdate(context.Background(), "DRG-AMOX-500")
	require.NoError(t, err)
	assert.Nil(t, skuLocked)

	assert.Equal(t, 0, q.queries, "un ID sin forma de UUID jamás llega a la BD")
}

// Un UUID real sí consulta, y cero filas sigue siendo (nil, nil).
func TestGetByID_UUIDConsultaLaBD(t *testing.T) {
	q := &uuidStrictQuerier{}
	const internalID = "a3c5e7f0-1b2d-4c6e-8f90-123456789abc"

	bill, err := NewBillRepository(q).GetByID(context.Background(), internalID)
	require.NoError(t, err)
	assert.Nil(t, bill)

	sku, err := NewSKURepository(q).GetByID(context.Background(), internalID)
	require.NoError(t, err)
	assert.Nil(t, sku)

	assert.Equal(t, 2, q.queries)
}
