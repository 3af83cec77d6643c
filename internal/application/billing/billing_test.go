package billing_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-ledger/internal/application/billing"
	"github.com/jhoicas/hospital-ledger/internal/application/sequence"
	"github.com/jhoicas/hospital-ledger/internal/domain"
	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
	"github.com/jhoicas/hospital-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El runner ejecuta el callback directo, sin rollback:
// suficiente para probar la lógica de los casos de uso.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu       sync.Mutex
	bills    map[string]*entity.Bill    // por ID interno
	payments map[string]*entity.Payment // por ID interno
}

func newMemStore() *memStore {
	return &memStore{
		bills:    make(map[string]*entity.Bill),
		payments: make(map[string]*entity.Payment),
	}
}

type memBillRepo struct{ s *memStore }

func (r *memBillRepo) Create(_ context.Context, bill *entity.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bills {
		if b.BillID == bill.BillID {
			return fmt.Errorf("%w: bill_id %s", domain.ErrDuplicate, bill.BillID)
		}
	}
	cp := *bill
	r.s.bills[bill.ID] = &cp
	return nil
}

func (r *memBillRepo) GetByID(_ context.Context, id string) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bills[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *memBillRepo) GetByBillID(_ context.Context, billID string) (*entity.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bills {
		if b.BillID == billID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBillRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Bill, error) {
	return r.GetByID(ctx, id)
}

func (r *memBillRepo) Update(_ context.Context, bill *entity.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bills[bill.ID]; !ok {
		return domain.ErrBillNotFound
	}
	cp := *bill
	r.s.bills[bill.ID] = &cp
	return nil
}

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payments {
		if existing.PaymentID == p.PaymentID {
			return fmt.Errorf("%w: payment_id %s", domain.ErrDuplicate, p.PaymentID)
		}
	}
	cp := *p
	r.s.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *memPaymentRepo) GetByPaymentID(_ context.Context, paymentID string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.PaymentID == paymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) ListByBill(_ context.Context, billID string) ([]entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.s.payments {
		if p.BillID == billID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	p.Status = status
	return nil
}

// memSeqRepo deriva el máximo consecutivo escaneando los IDs ya persistidos,
// igual que el adaptador real sobre la restricción UNIQUE.
type memSeqRepo struct{ s *memStore }

func (r *memSeqRepo) MaxForPrefix(_ context.Context, prefix, dayScope string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var max string
	consider := func(id string) {
		if strings.HasPrefix(id, dayScope) && id > max {
			max = id
		}
	}
	switch prefix {
	case sequence.PrefixBill:
		for _, b := range r.s.bills {
			consider(b.BillID)
		}
	case sequence.PrefixPayment:
		for _, p := range r.s.payments {
			consider(p.PaymentID)
		}
	}
	return max, nil
}

type memRunner struct {
	billRepo    repository.BillRepository
	paymentRepo repository.PaymentRepository
}

func (r *memRunner) RunBilling(_ context.Context, fn func(
	repository.BillRepository, repository.PaymentRepository) error) error {
	return fn(r.billRepo, r.paymentRepo)
}

type memPublisher struct {
	mu     sync.Mutex
	events []string // "tipo:entityID"
}

func (p *memPublisher) Publish(eventType, entityID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType+":"+entityID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado de los casos de uso
// ──────────────────────────────────────────────────────────────────────────────

var billingTestNow = time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)

type billingFixture struct {
	store    *memStore
	bills    *billing.CreateBillUseCase
	payments *billing.PaymentUseCase
	pub      *memPublisher
}

func newBillingFixture() *billingFixture {
	store := newMemStore()
	billRepo := &memBillRepo{s: store}
	paymentRepo := &memPaymentRepo{s: store}
	runner := &memRunner{billRepo: billRepo, paymentRepo: paymentRepo}
	seq := sequence.NewGenerator(&memSeqRepo{s: store}).
		WithClock(func() time.Time { return billingTestNow })
	pub := &memPublisher{}
	log := logger.Nop()

	clock := func() time.Time { return billingTestNow }
	return &billingFixture{
		store:    store,
		bills:    billing.NewCreateBillUseCase(runner, billRepo, seq, log).WithClock(clock),
		payments: billing.NewPaymentUseCase(runner, billRepo, paymentRepo, seq, pub, log).WithClock(clock),
		pub:      pub,
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func standardBillInput() billing.CreateBillInput {
	return billing.CreateBillInput{
		PatientRef: "PAT-001",
		Type:       entity.BillTypeConsultation,
		LineItems: []entity.BillLineItem{
			{Name: "Consulta especialista", UnitPrice: dec("50"), Quantity: dec("2")},
			{Name: "Radiografía de tórax", UnitPrice: dec("100"), Quantity: dec("1")},
		},
		DiscountPercentage: dec("10"),
		TaxPercentage:      dec("18"),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateBill
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBill_DerivaMontos(t *testing.T) {
	f := newBillingFixture()

	bill, err := f.bills.CreateBill(context.Background(), standardBillInput())
	require.NoError(t, err)

	assert.Equal(t, "BILL202608280001", bill.BillID)
	assert.True(t, dec("200").Equal(bill.Subtotal))
	assert.True(t, dec("20").Equal(bill.DiscountAmount))
	assert.True(t, dec("32.4").Equal(bill.TaxAmount))
	assert.True(t, dec("212.4").Equal(bill.TotalAmount))
	assert.True(t, dec("212.4").Equal(bill.OutstandingAmount))
	assert.Equal(t, entity.PaymentStatusUnpaid, bill.PaymentStatus)
	assert.Equal(t, billingTestNow.AddDate(0, 0, 30), bill.DueDate,
		"sin due_date explícito aplica el vencimiento por defecto")
}

func TestCreateBill_ConsecutivoPorDia(t *testing.T) {
	f := newBillingFixture()

	first, err := f.bills.CreateBill(context.Background(), standardBillInput())
	require.NoError(t, err)
	second, err := f.bills.CreateBill(context.Background(), standardBillInput())
	require.NoError(t, err)

	assert.Equal(t, "BILL202608280001", first.BillID)
	assert.Equal(t, "BILL202608280002", second.BillID)
}

func TestCreateBill_Validaciones(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	sinLineas := standardBillInput()
	sinLineas.LineItems = nil
	_, err := f.bills.CreateBill(ctx, sinLineas)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas no hay factura")

	tipoInvalido := standardBillInput()
	tipoInvalido.Type = "spa"
	_, err = f.bills.CreateBill(ctx, tipoInvalido)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	pctInvalido := standardBillInput()
	pctInvalido.DiscountPercentage = dec("101")
	_, err = f.bills.CreateBill(ctx, pctInvalido)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "descuento fuera de [0,100]")

	precioNegativo := standardBillInput()
	precioNegativo.LineItems[0].UnitPrice = dec("-5")
	_, err = f.bills.CreateBill(ctx, precioNegativo)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateBillLines
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateBillLines_RecalculaPrePago(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)

	updated, err := f.bills.UpdateBillLines(ctx, bill.ID, billing.UpdateLinesInput{
		LineItems: []entity.BillLineItem{
			{Name: "Consulta general", UnitPrice: dec("80"), Quantity: dec("1")},
		},
		TaxPercentage: dec("10"),
	})
	require.NoError(t, err)

	assert.True(t, dec("80").Equal(updated.Subtotal))
	assert.True(t, dec("88").Equal(updated.TotalAmount), "80 + 10%% de impuesto")
	assert.True(t, updated.DiscountAmount.IsZero())
}

func TestUpdateBillLines_InmutableConPagos(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)
	_, err = f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID,
		Amount: dec("50"),
		Method: entity.PayMethodCash,
	})
	require.NoError(t, err)

	_, err = f.bills.UpdateBillLines(ctx, bill.ID, billing.UpdateLinesInput{
		LineItems: []entity.BillLineItem{
			{Name: "Consulta general", UnitPrice: dec("80"), Quantity: dec("1")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrBillImmutable,
		"una factura con pagos aplicados no admite edición de líneas")
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyPayment
// ──────────────────────────────────────────────────────────────────────────────

// Pago parcial: la factura queda partial y el saldo baja exactamente el monto.
func TestApplyPayment_Parcial(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)

	result, err := f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID,
		Amount: dec("100"),
		Method: entity.PayMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, "PAY202608280001", result.Payment.PaymentID)
	assert.Equal(t, entity.PayStatusSuccess, result.Payment.Status)
	assert.True(t, dec("100").Equal(result.Bill.PaidAmount))
	assert.True(t, dec("112.4").Equal(result.Bill.OutstandingAmount))
	assert.Equal(t, entity.PaymentStatusPartial, result.Bill.PaymentStatus)
	assert.Empty(t, f.pub.events, "un pago parcial no emite bill.paid")
}

// Completar el saldo deja la factura en paid y emite el evento bill.paid.
func TestApplyPayment_CompletaYEmiteEvento(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)

	_, err = f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID, Amount: dec("100"), Method: entity.PayMethodCash,
	})
	require.NoError(t, err)
	result, err := f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID, Amount: dec("112.40"), Method: entity.PayMethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentStatusPaid, result.Bill.PaymentStatus)
	assert.True(t, result.Bill.OutstandingAmount.IsZero())
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, entity.EventBillPaid+":"+bill.BillID, f.pub.events[0])
}

// Rechazo estricto: un pago que excede el saldo no se acepta ni se recorta, y
// el error lleva el estado observado (saldo vs solicitado).
func TestApplyPayment_RechazoEstrictoConSnapshot(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)

	_, err = f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID, Amount: dec("300"), Method: entity.PayMethodCash,
	})
	require.Error(t, err)

	var exceeds *domain.ExceedsOutstandingError
	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, bill.BillID, exceeds.BillID)
	assert.True(t, dec("212.4").Equal(exceeds.Outstanding))
	assert.True(t, dec("300").Equal(exceeds.Requested))
	assert.ErrorIs(t, err, domain.ErrExceedsOutstanding)

	// La factura no cambió.
	after, err := f.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, after.PaidAmount.IsZero())
	assert.Equal(t, entity.PaymentStatusUnpaid, after.PaymentStatus)
}

// Acepta por ID de negocio además del interno.
func TestApplyPayment_PorIDDeNegocio(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)

	result, err := f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.BillID, Amount: dec("212.40"), Method: entity.PayMethodInsurance,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, result.Bill.PaymentStatus)
}

func TestApplyPayment_MontoInvalido(t *testing.T) {
	f := newBillingFixture()

	_, err := f.payments.ApplyPayment(context.Background(), billing.ApplyPaymentInput{
		BillID: "cualquiera", Amount: decimal.Zero, Method: entity.PayMethodCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.payments.ApplyPayment(context.Background(), billing.ApplyPaymentInput{
		BillID: "cualquiera", Amount: dec("10"), Method: "bitcoin",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// RefundPayment
// ──────────────────────────────────────────────────────────────────────────────

func TestRefundPayment_RevierteElLedger(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)
	paid, err := f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID, Amount: dec("212.40"), Method: entity.PayMethodCard,
	})
	require.NoError(t, err)
	require.Equal(t, entity.PaymentStatusPaid, paid.Bill.PaymentStatus)

	result, err := f.payments.RefundPayment(ctx, paid.Payment.PaymentID)
	require.NoError(t, err)

	assert.Equal(t, entity.PayStatusRefunded, result.Payment.Status)
	assert.True(t, result.Bill.PaidAmount.IsZero())
	assert.True(t, dec("212.4").Equal(result.Bill.OutstandingAmount))
	assert.Equal(t, entity.PaymentStatusRefunded, result.Bill.PaymentStatus,
		"saldo pagado en cero por reembolso queda refunded, no unpaid")
}

// Un reembolso parcial deja la factura en partial: aún hay pagos vivos.
func TestRefundPayment_ParcialVuelveAPartial(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)
	first, err := f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID, Amount: dec("100"), Method: entity.PayMethodCash,
	})
	require.NoError(t, err)
	_, err = f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID, Amount: dec("112.40"), Method: entity.PayMethodCash,
	})
	require.NoError(t, err)

	result, err := f.payments.RefundPayment(ctx, first.Payment.PaymentID)
	require.NoError(t, err)

	assert.True(t, dec("112.4").Equal(result.Bill.PaidAmount))
	assert.Equal(t, entity.PaymentStatusPartial, result.Bill.PaymentStatus)
}

// Solo pagos en success se reembolsan; repetir el reembolso es conflicto.
func TestRefundPayment_SoloUnaVez(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)
	paid, err := f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
		BillID: bill.ID, Amount: dec("50"), Method: entity.PayMethodCash,
	})
	require.NoError(t, err)

	_, err = f.payments.RefundPayment(ctx, paid.Payment.PaymentID)
	require.NoError(t, err)
	_, err = f.payments.RefundPayment(ctx, paid.Payment.PaymentID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRefundPayment_NoExiste(t *testing.T) {
	f := newBillingFixture()
	_, err := f.payments.RefundPayment(context.Background(), "PAY209912310001")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante: suma de pagos success == PaidAmount
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_SumaDePagosIgualaPaidAmount(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, standardBillInput())
	require.NoError(t, err)

	amounts := []string{"60", "40", "80"}
	for _, a := range amounts {
		_, err = f.payments.ApplyPayment(ctx, billing.ApplyPaymentInput{
			BillID: bill.ID, Amount: dec(a), Method: entity.PayMethodCash,
		})
		require.NoError(t, err)
	}

	payments, err := f.payments.ListPayments(ctx, bill.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, p := range payments {
		if p.Status == entity.PayStatusSuccess {
			sum = sum.Add(p.Amount)
		}
	}

	after, err := f.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(after.PaidAmount),
		"la suma de pagos success (%s) debe igualar PaidAmount (%s)", sum, after.PaidAmount)
}
