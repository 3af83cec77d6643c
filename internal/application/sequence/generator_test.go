package sequence_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-ledger/internal/application/sequence"
	"github.com/jhoicas/hospital-ledger/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake de SequenceRepository
// ──────────────────────────────────────────────────────────────────────────────

type fakeSeqRepo struct {
	byScope map[string]string // dayScope → último ID
	err     error
}

func (f *fakeSeqRepo) MaxForPrefix(_ context.Context, _, dayScope string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.byScope[dayScope], nil
}

var seqTestNow = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func newGenerator(repo *fakeSeqRepo) *sequence.Generator {
	return sequence.NewGenerator(repo).WithClock(func() time.Time { return seqTestNow })
}

// ──────────────────────────────────────────────────────────────────────────────
// Next
// ──────────────────────────────────────────────────────────────────────────────

// Sin IDs previos, el consecutivo del día arranca en 0001.
func TestNext_PrimeroDelDia(t *testing.T) {
	gen := newGenerator(&fakeSeqRepo{byScope: map[string]string{}})

	id, err := gen.Next(context.Background(), sequence.PrefixBill)
	require.NoError(t, err)
	assert.Equal(t, "BILL202608280001", id)
}

// El siguiente ID siempre es máximo observado + 1.
func TestNext_Incrementa(t *testing.T) {
	gen := newGenerator(&fakeSeqRepo{byScope: map[string]string{
		"BILL20260828": "BILL202608280041",
	}})

	id, err := gen.Next(context.Background(), sequence.PrefixBill)
	require.NoError(t, err)
	assert.Equal(t, "BILL202608280042", id)
}

// Cada prefijo lleva su propio consecutivo independiente.
func TestNext_PrefijosIndependientes(t *testing.T) {
	gen := newGenerator(&fakeSeqRepo{byScope: map[string]string{
		"BILL20260828": "BILL202608280007",
	}})

	payID, err := gen.Next(context.Background(), sequence.PrefixPayment)
	require.NoError(t, err)
	assert.Equal(t, "PAY202608280001", payID,
		"el consecutivo de pagos no hereda el de facturas")
}

// Un fallo del almacén sale como ErrStoreUnavailable, nunca como ID silencioso.
func TestNext_AlmacenCaido(t *testing.T) {
	gen := newGenerator(&fakeSeqRepo{err: errors.New("connection refused")})

	_, err := gen.Next(context.Background(), sequence.PrefixBill)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

// Una cancelación del caller se propaga tal cual: no es una caída del almacén
// y nadie debe tratarla como tal.
func TestNext_CancelacionNoEsOutage(t *testing.T) {
	gen := newGenerator(&fakeSeqRepo{err: context.Canceled})

	_, err := gen.Next(context.Background(), sequence.PrefixBill)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)

	gen = newGenerator(&fakeSeqRepo{err: context.DeadlineExceeded})
	_, err = gen.Next(context.Background(), sequence.PrefixBill)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}

// ──────────────────────────────────────────────────────────────────────────────
// NextDegraded
// ──────────────────────────────────────────────────────────────────────────────

// El ID degradado viaja con su flag: el caller siempre sabe que no es un
// consecutivo normal.
func TestNextDegraded_MarcadoExplicito(t *testing.T) {
	gen := newGenerator(&fakeSeqRepo{})

	got := gen.NextDegraded(sequence.PrefixFulfillment)
	assert.True(t, got.Degraded)
	assert.True(t, strings.HasPrefix(got.ID, "FUL20260828"), "se obtuvo %s", got.ID)
	assert.Equal(t, fmt.Sprintf("FUL20260828%d", seqTestNow.UnixNano()), got.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// IsRetryable
// ──────────────────────────────────────────────────────────────────────────────

func TestIsRetryable(t *testing.T) {
	assert.True(t, sequence.IsRetryable(fmt.Errorf("insert: %w", domain.ErrDuplicate)),
		"colisión de consecutivo amerita reintento")
	assert.False(t, sequence.IsRetryable(domain.ErrStoreUnavailable))
	assert.False(t, sequence.IsRetryable(nil))
}
