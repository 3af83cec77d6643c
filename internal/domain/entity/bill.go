package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una factura.
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPartial  = "partial"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Tipos de factura hospitalaria.
const (
	BillTypeConsultation = "consultation"
	BillTypeProcedure    = "procedure"
	BillTypeLabTest      = "lab_test"
	BillTypePharmacy     = "pharmacy"
	BillTypeRoomCharges  = "room_charges"
	BillTypeEmergency    = "emergency"
)

// BillLineItem es una línea de servicio o producto de la factura.
type BillLineItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Bill representa una factura del libro de facturación. Todos los campos
// monetarios derivados (Subtotal, DiscountAmount, TaxAmount, TotalAmount,
// OutstandingAmount, PaymentStatus) se recalculan con billing.Recompute en cada
// mutación de líneas, descuento, impuesto o pago; nunca se asignan a mano.
// PaidAmount solo lo incrementa el procesador de pagos. Una vez pagada, la
// factura es inmutable salvo reverso por reembolso.
type Bill struct {
	ID                 string
	BillID             string // BILL{YYYYMMDD}{0000}, único
	PatientRef         string // referencia opaca al paciente
	Type               string
	LineItems          []BillLineItem
	Subtotal           decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxPercentage      decimal.Decimal
	TaxAmount          decimal.Decimal
	TotalAmount        decimal.Decimal
	PaidAmount         decimal.Decimal
	OutstandingAmount  decimal.Decimal
	PaymentStatus      string
	DueDate            time.Time
	Notes              string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ValidBillType valida el tipo de factura.
func ValidBillType(t string) bool {
	switch t {
	case BillTypeConsultation, BillTypeProcedure, BillTypeLabTest,
		BillTypePharmacy, BillTypeRoomCharges, BillTypeEmergency:
		return true
	}
	return false
}
