package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// BillLineItemDTO línea de una factura.
type BillLineItemDTO struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateBillRequest body para POST /api/billing/bills.
type CreateBillRequest struct {
	PatientRef         string            `json:"patient_ref"`
	Type               string            `json:"type"`
	LineItems          []BillLineItemDTO `json:"line_items"`
	DiscountPercentage decimal.Decimal   `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal   `json:"discount_amount"`
	TaxPercentage      decimal.Decimal   `json:"tax_percentage"`
	DueDate            *time.Time        `json:"due_date,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	CreatedBy          string            `json:"created_by,omitempty"`
}

// UpdateBillLinesRequest body para PUT /api/billing/bills/:id/lines.
type UpdateBillLinesRequest struct {
	LineItems          []BillLineItemDTO `json:"line_items"`
	DiscountPercentage decimal.Decimal   `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal   `json:"discount_amount"`
	TaxPercentage      decimal.Decimal   `json:"tax_percentage"`
}

// ApplyPaymentRequest body para POST /api/billing/payments.
type ApplyPaymentRequest struct {
	BillID     string          `json:"bill_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	ReceivedBy string          `json:"received_by,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// BillResponse respuesta con la factura completa y sus montos derivados.
type BillResponse struct {
	ID                 string            `json:"id"`
	BillID             string            `json:"bill_id"`
	PatientRef         string            `json:"patient_ref"`
	Type               string            `json:"type"`
	LineItems          []BillLineItemDTO `json:"line_items"`
	Subtotal           decimal.Decimal   `json:"subtotal"`
	DiscountPercentage decimal.Decimal   `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal   `json:"discount_amount"`
	TaxPercentage      decimal.Decimal   `json:"tax_percentage"`
	TaxAmount          decimal.Decimal   `json:"tax_amount"`
	TotalAmount        decimal.Decimal   `json:"total_amount"`
	PaidAmount         decimal.Decimal   `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal   `json:"outstanding_amount"`
	PaymentStatus      string            `json:"payment_status"`
	DueDate            time.Time         `json:"due_date"`
}

// PaymentResponse respuesta de un pago aplicado o reembolsado.
type PaymentResponse struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	BillID    string          `json:"bill_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    string          `json:"status"`
	PaidAt    time.Time       `json:"paid_at"`
}

// ToBillResponse mapea la entidad a la respuesta HTTP.
func ToBillResponse(b *entity.Bill) BillResponse {
	lines := make([]BillLineItemDTO, len(b.LineItems))
	for i, l := range b.LineItems {
		lines[i] = BillLineItemDTO{Name: l.Name, UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}
	return BillResponse{
		ID:                 b.ID,
		BillID:             b.BillID,
		PatientRef:         b.PatientRef,
		Type:               b.Type,
		LineItems:          lines,
		Subtotal:           b.Subtotal,
		DiscountPercentage: b.DiscountPercentage,
		DiscountAmount:     b.DiscountAmount,
		TaxPercentage:      b.TaxPercentage,
		TaxAmount:          b.TaxAmount,
		TotalAmount:        b.TotalAmount,
		PaidAmount:         b.PaidAmount,
		OutstandingAmount:  b.OutstandingAmount,
		PaymentStatus:      b.PaymentStatus,
		DueDate:            b.DueDate,
	}
}

// ToPaymentResponse mapea la entidad a la respuesta HTTP.
func ToPaymentResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		PaymentID: p.PaymentID,
		BillID:    p.BillID,
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    p.Status,
		PaidAt:    p.PaidAt,
	}
}

// ToLineItems convierte las líneas del request a entidades.
func ToLineItems(lines []BillLineItemDTO) []entity.BillLineItem {
	out := make([]entity.BillLineItem, len(lines))
	for i, l := range lines {
		out[i] = entity.BillLineItem{Name: l.Name, UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}
	return out
}
