package repository

import "context"

// SequenceRepository consulta el máximo ID de negocio existente para un
// prefijo y alcance de día (ej. "BILL20260828"). Devuelve cadena vacía si no
// existe ninguno. La restricción de unicidad de la columna es el detector de
// conflictos autoritativo; el generador reintenta sobre ella.
type SequenceRepository interface {
	MaxForPrefix(ctx context.Context, prefix, dayScope string) (string, error)
}
