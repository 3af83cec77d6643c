package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pago.
const (
	PayStatusPending  = "pending"
	PayStatusSuccess  = "success"
	PayStatusFailed   = "failed"
	PayStatusRefunded = "refunded"
)

// Métodos de pago aceptados.
const (
	PayMethodCash       = "cash"
	PayMethodCard       = "card"
	PayMethodUPI        = "upi"
	PayMethodNetBanking = "net_banking"
	PayMethodCheque     = "cheque"
	PayMethodInsurance  = "insurance"
)

// Payment representa un pago aplicado contra una factura.
// Invariante: la suma de pagos con estado success de una factura es igual a
// Bill.PaidAmount; nunca se acepta un pago mayor al saldo pendiente.
type Payment struct {
	ID         string
	PaymentID  string // PAY{YYYYMMDD}{0000}, único
	BillID     string // ID interno de la factura
	PatientRef string
	Amount     decimal.Decimal
	Method     string
	Status     string
	ReceivedBy string
	Notes      string
	PaidAt     time.Time
	CreatedAt  time.Time
}

// ValidPayMethod valida el método de pago.
func ValidPayMethod(m string) bool {
	switch m {
	case PayMethodCash, PayMethodCard, PayMethodUPI,
		PayMethodNetBanking, PayMethodCheque, PayMethodInsurance:
		return true
	}
	return false
}
