package stock_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/stock"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func skuForAlerts(qty, reorder, minimum int64, expiry *time.Time) *entity.StockKeepingUnit {
	return &entity.StockKeepingUnit{
		ID:             "sku-1",
		Code:           "DRG-AMOX-500",
		Name:           "Amoxicilina 500mg",
		QuantityOnHand: qty,
		ReorderLevel:   reorder,
		MinimumStock:   minimum,
		ExpiryDate:     expiry,
	}
}

func daysFromNow(d int) *time.Time {
	ts := testNow.Add(time.Duration(d) * 24 * time.Hour)
	return &ts
}

// ──────────────────────────────────────────────────────────────────────────────
// Evaluate
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluate_SinAlertas(t *testing.T) {
	sku := skuForAlerts(100, 20, 5, daysFromNow(90))
	alerts := stock.Evaluate(sku, testNow, stock.DefaultExpiryHorizon)
	assert.Empty(t, alerts, "stock alto y vencimiento lejano no generan alertas")
}

func TestEvaluate_OutOfStock(t *testing.T) {
	sku := skuForAlerts(0, 20, 5, nil)
	alerts := stock.Evaluate(sku, testNow, stock.DefaultExpiryHorizon)

	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertOutOfStock, alerts[0].Kind)
	assert.Equal(t, entity.SeverityCritical, alerts[0].Severity)
}

func TestEvaluate_LowStockWarning(t *testing.T) {
	sku := skuForAlerts(15, 20, 5, nil)
	alerts := stock.Evaluate(sku, testNow, stock.DefaultExpiryHorizon)

	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertLowStock, alerts[0].Kind)
	assert.Equal(t, entity.SeverityWarning, alerts[0].Severity,
		"por encima del mínimo es warning, no critical")
}

func TestEvaluate_LowStockCritical(t *testing.T) {
	sku := skuForAlerts(4, 20, 5, nil)
	alerts := stock.Evaluate(sku, testNow, stock.DefaultExpiryHorizon)

	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertLowStock, alerts[0].Kind)
	assert.Equal(t, entity.SeverityCritical, alerts[0].Severity,
		"en o por debajo del mínimo escala a critical")
}

func TestEvaluate_Expiring(t *testing.T) {
	sku := skuForAlerts(100, 20, 5, daysFromNow(10))
	alerts := stock.Evaluate(sku, testNow, stock.DefaultExpiryHorizon)

	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertExpiring, alerts[0].Kind)
	assert.Equal(t, entity.SeverityWarning, alerts[0].Severity)
}

func TestEvaluate_ExpiredExcluyeExpiring(t *testing.T) {
	sku := skuForAlerts(100, 20, 5, daysFromNow(-1))
	alerts := stock.Evaluate(sku, testNow, stock.DefaultExpiryHorizon)

	require.Len(t, alerts, 1, "un vencido nunca reporta además expiring")
	assert.Equal(t, entity.AlertExpired, alerts[0].Kind)
	assert.Equal(t, entity.SeverityCritical, alerts[0].Severity)
}

// Un mismo SKU puede llevar low_stock y expiring a la vez.
func TestEvaluate_AlertasCombinadas(t *testing.T) {
	sku := skuForAlerts(10, 20, 5, daysFromNow(7))
	alerts := stock.Evaluate(sku, testNow, stock.DefaultExpiryHorizon)

	require.Len(t, alerts, 2)
	kinds := []string{alerts[0].Kind, alerts[1].Kind}
	assert.Contains(t, kinds, entity.AlertLowStock)
	assert.Contains(t, kinds, entity.AlertExpiring)
}

func TestEvaluate_HorizontePersonalizado(t *testing.T) {
	sku := skuForAlerts(100, 20, 5, daysFromNow(45))

	assert.Empty(t, stock.Evaluate(sku, testNow, 30*24*time.Hour),
		"a 45 días no entra en un horizonte de 30")
	alerts := stock.Evaluate(sku, testNow, 60*24*time.Hour)
	require.Len(t, alerts, 1, "con horizonte de 60 días sí alerta")
	assert.Equal(t, entity.AlertExpiring, alerts[0].Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fold: conservación del ledger
// ──────────────────────────────────────────────────────────────────────────────

func tx(txType string, qty int64, outbound bool) entity.StockTransaction {
	return entity.StockTransaction{Type: txType, Quantity: qty, Outbound: outbound}
}

// El fold de todas las transacciones reproduce la cantidad en mano exacta.
func TestFold_ReproduceCantidad(t *testing.T) {
	history := []entity.StockTransaction{
		tx(entity.TxTypePurchase, 100, false),
		tx(entity.TxTypeDispense, 30, false),
		tx(entity.TxTypeReturn, 5, false),
		tx(entity.TxTypeDamage, 2, false),
		tx(entity.TxTypeAdjustment, 10, true), // ajuste de salida
		tx(entity.TxTypeAdjustment, 3, false), // ajuste de entrada
		tx(entity.TxTypeExpired, 6, false),
	}
	assert.Equal(t, int64(100-30+5-2-10+3-6), stock.Fold(history))
}

func TestFold_SinTransacciones(t *testing.T) {
	assert.Equal(t, int64(0), stock.Fold(nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// SignedQuantity por tipo
// ──────────────────────────────────────────────────────────────────────────────

func TestSignedQuantity(t *testing.T) {
	cases := []struct {
		txType   string
		outbound bool
		want     int64
	}{
		{entity.TxTypePurchase, false, 10},
		{entity.TxTypeReturn, false, 10},
		{entity.TxTypeDispense, false, -10},
		{entity.TxTypeDamage, false, -10},
		{entity.TxTypeExpired, false, -10},
		{entity.TxTypeAdjustment, false, 10},
		{entity.TxTypeAdjustment, true, -10},
	}
	for _, tc := range cases {
		trx := tx(tc.txType, 10, tc.outbound)
		assert.Equal(t, tc.want, trx.SignedQuantity(), "tipo %s outbound=%v", tc.txType, tc.outbound)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// WeightedAverageCost
// ──────────────────────────────────────────────────────────────────────────────

func TestWeightedAverageCost(t *testing.T) {
	// 100 unidades a 2.00 + 50 unidades a 3.50 → (200 + 175) / 150 = 2.50
	got := stock.WeightedAverageCost(100, decimal.NewFromFloat(2.00), 50, decimal.NewFromFloat(3.50))
	assert.True(t, decimal.NewFromFloat(2.50).Equal(got), "se obtuvo %s", got)
}

func TestWeightedAverageCost_StockCero(t *testing.T) {
	// Sin stock previo, el promedio es el costo de la entrada.
	got := stock.WeightedAverageCost(0, decimal.Zero, 20, decimal.NewFromFloat(4.25))
	assert.True(t, decimal.NewFromFloat(4.25).Equal(got))
}

func TestWeightedAverageCost_TodoCero(t *testing.T) {
	got := stock.WeightedAverageCost(0, decimal.Zero, 0, decimal.NewFromFloat(9.99))
	assert.True(t, got.IsZero(), "sin cantidades el promedio degrada a cero")
}
