package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// Tabla y columna donde vive cada prefijo de ID de negocio. Las columnas
// llevan restricción UNIQUE: ella es el árbitro final de los conflictos de
// secuencia, no esta consulta.
var sequenceSources = map[string]struct {
	table  string
	column string
}{
	"BILL": {"bills", "bill_id"},
	"PAY":  {"payments", "payment_id"},
	"TXN":  {"stock_transactions", "transaction_id"},
	"FUL":  {"fulfillments", "fulfillment_id"},
}

// SequenceRepo resuelve el máximo ID de negocio por prefijo y día consultando
// la tabla correspondiente.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// MaxForPrefix devuelve el mayor ID con el prefijo de día dado (ej.
// "BILL20260828") o cadena vacía si no existe ninguno.
func (r *SequenceRepo) MaxForPrefix(ctx context.Context, prefix, dayScope string) (string, error) {
	src, ok := sequenceSources[prefix]
	if !ok {
		return "", fmt.Errorf("prefijo de secuencia desconocido: %q", prefix)
	}
	// table y column salen del mapa fijo de arriba, nunca de entrada externa.
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s LIKE $1 || '%%' ORDER BY %s DESC LIMIT 1`,
		src.column, src.table, src.column, src.column,
	)
	var max string
	err := r.q.QueryRow(ctx, query, dayScope).Scan(&max)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("max %s for %s: %w", src.column, dayScope, err)
	}
	return max, nil
}
