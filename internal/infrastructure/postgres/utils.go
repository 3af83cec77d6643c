package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUUID informa si s tiene forma de UUID. Las columnas id son UUID: consultar
// WHERE id = $1 con un ID de negocio (BILL..., un código de SKU) no devuelve
// cero filas sino un error de codificación de pgx, así que las búsquedas por
// ID interno cortocircuitan a "no existe" y dejan que el caller caiga al
// lookup por ID de negocio.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isSerializationFailure detecta fallos de serialización o deadlock (40001/40P01),
// transitorios: el caller puede reintentar con backoff.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// nullIfEmpty convierte "" a NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
