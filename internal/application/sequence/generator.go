// Package sequence genera los IDs de negocio con forma {PREFIX}{YYYYMMDD}{0000}.
// El consecutivo arranca en 1 por día y se calcula desde el máximo observado en
// el almacén; la restricción de unicidad de la columna es el árbitro final ante
// generadores concurrentes (el caso de uso que inserta reintenta sobre 23505).
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/hospital-ledger/internal/domain"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
)

// Prefijos de secuencia usados por el ledger.
const (
	PrefixBill        = "BILL"
	PrefixPayment     = "PAY"
	PrefixTransaction = "TXN"
	PrefixFulfillment = "FUL"
)

const dayFormat = "20060102"
const seqDigits = 4

// Generator produce IDs de negocio consecutivos por prefijo y día.
type Generator struct {
	repo repository.SequenceRepository
	now  func() time.Time
}

// NewGenerator construye el generador.
func NewGenerator(repo repository.SequenceRepository) *Generator {
	return &Generator{repo: repo, now: time.Now}
}

// WithClock fija el reloj (tests).
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Next devuelve el siguiente ID para el prefijo dado en el alcance del día
// actual. Puede colisionar bajo concurrencia: el caller que inserta debe
// reintentar ante domain.ErrDuplicate releyendo con Next.
func (g *Generator) Next(ctx context.Context, prefix string) (string, error) {
	day := g.now().UTC().Format(dayFormat)
	last, err := g.repo.MaxForPrefix(ctx, prefix, prefix+day)
	if err != nil {
		// Una cancelación del caller no es una caída del almacén: se propaga
		// tal cual para que nadie la trate como outage.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("secuencia %s: %w", prefix, err)
		}
		return "", fmt.Errorf("%w: secuencia %s: %v", domain.ErrStoreUnavailable, prefix, err)
	}
	seq := 1
	if last != "" {
		seq = lastSequence(last) + 1
	}
	return fmt.Sprintf("%s%s%0*d", prefix, day, seqDigits, seq), nil
}

// DegradedID es un ID de contingencia basado en timestamp. Solo se usa cuando
// el almacén no responde y el caller lo pide explícitamente; nunca de forma
// silenciosa, por eso el flag viaja con el valor.
type DegradedID struct {
	ID       string
	Degraded bool
}

// NextDegraded genera un ID degradado {PREFIX}{YYYYMMDD}{unixnano} marcado como tal.
func (g *Generator) NextDegraded(prefix string) DegradedID {
	now := g.now().UTC()
	return DegradedID{
		ID:       fmt.Sprintf("%s%s%d", prefix, now.Format(dayFormat), now.UnixNano()),
		Degraded: true,
	}
}

// lastSequence extrae el consecutivo de los últimos 4 dígitos de un ID existente.
func lastSequence(id string) int {
	if len(id) < seqDigits {
		return 0
	}
	n, err := strconv.Atoi(id[len(id)-seqDigits:])
	if err != nil {
		return 0
	}
	return n
}

// IsRetryable indica si el error de inserción amerita regenerar el ID y
// reintentar (colisión del consecutivo detectada por la unicidad de columna).
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrDuplicate)
}
