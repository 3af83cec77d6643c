// Package billing contiene la aritmética monetaria pura del libro de
// facturación. Todo es decimal de punto fijo con 2 dígitos; nunca float.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// PaidTolerance: un saldo pendiente por debajo de este umbral redondea la
// factura a "paid" (centavos residuales de redondeo).
var PaidTolerance = decimal.New(1, -2) // 0.01

var hundred = decimal.NewFromInt(100)

// Subtotal suma unitPrice × quantity de todas las líneas, redondeado a 2 dígitos.
func Subtotal(lines []entity.BillLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(l.Quantity))
	}
	return sum.Round(2)
}

// DeriveStatus deriva el estado de pago como función pura de (paid, total):
// paid si el saldo ≤ tolerancia, unpaid si lo pagado ≤ tolerancia, si no partial.
func DeriveStatus(paid, total decimal.Decimal) string {
	outstanding := total.Sub(paid)
	switch {
	case outstanding.LessThanOrEqual(PaidTolerance):
		return entity.PaymentStatusPaid
	case paid.LessThanOrEqual(PaidTolerance):
		return entity.PaymentStatusUnpaid
	default:
		return entity.PaymentStatusPartial
	}
}

// Recompute re-deriva subtotal, descuento, impuesto, total, saldo y estado a
// partir de las líneas y el monto pagado. Es pura e idempotente: aplicada dos
// veces seguidas sin cambios intermedios es un punto fijo. Debe invocarse en
// cada mutación de líneas, descuento, impuesto o PaidAmount.
//
// Orden fijo: primero descuento, luego impuesto sobre la base descontada.
// Si DiscountPercentage > 0 tiene precedencia sobre un DiscountAmount absoluto.
// Montos negativos intermedios se recortan a cero.
func Recompute(b entity.Bill) entity.Bill {
	b.Subtotal = Subtotal(b.LineItems)

	if b.DiscountPercentage.GreaterThan(decimal.Zero) {
		b.DiscountAmount = b.Subtotal.Mul(b.DiscountPercentage).Div(hundred).Round(2)
	}
	if b.DiscountAmount.LessThan(decimal.Zero) {
		b.DiscountAmount = decimal.Zero
	}

	afterDiscount := b.Subtotal.Sub(b.DiscountAmount)
	if afterDiscount.LessThan(decimal.Zero) {
		afterDiscount = decimal.Zero
	}

	b.TaxAmount = afterDiscount.Mul(b.TaxPercentage).Div(hundred).Round(2)
	if b.TaxAmount.LessThan(decimal.Zero) {
		b.TaxAmount = decimal.Zero
	}

	b.TotalAmount = afterDiscount.Add(b.TaxAmount)

	b.OutstandingAmount = b.TotalAmount.Sub(b.PaidAmount)
	if b.OutstandingAmount.LessThan(decimal.Zero) {
		b.OutstandingAmount = decimal.Zero
	}

	// "refunded" no es derivable de (paid, total): lo fija el reverso de pagos
	// y se preserva mientras lo pagado siga en cero.
	if b.PaymentStatus == entity.PaymentStatusRefunded && b.PaidAmount.LessThanOrEqual(PaidTolerance) {
		return b
	}
	b.PaymentStatus = DeriveStatus(b.PaidAmount, b.TotalAmount)
	return b
}
