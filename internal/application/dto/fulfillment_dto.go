package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// FulfillLineDTO línea solicitada de una dispensación.
type FulfillLineDTO struct {
	SKUID    string `json:"sku_id"`
	Quantity int64  `json:"quantity"`
}

// FulfillRequest body para POST /api/pharmacy/fulfillments.
type FulfillRequest struct {
	OrderRef         string           `json:"order_ref"`
	PatientRef       string           `json:"patient_ref,omitempty"`
	Lines            []FulfillLineDTO `json:"lines"`
	InsuranceCovered decimal.Decimal  `json:"insurance_covered"`
	DispensedBy      string           `json:"dispensed_by,omitempty"`
}

// FulfillmentResponse respuesta de una dispensación completada.
type FulfillmentResponse struct {
	ID               string                 `json:"id"`
	FulfillmentID    string                 `json:"fulfillment_id"`
	OrderRef         string                 `json:"order_ref"`
	Lines            []entity.DispensedLine `json:"lines"`
	TotalAmount      decimal.Decimal        `json:"total_amount"`
	InsuranceCovered decimal.Decimal        `json:"insurance_covered"`
	PatientPayable   decimal.Decimal        `json:"patient_payable"`
	Status           string                 `json:"status"`
	BillID           string                 `json:"bill_id"`
}

// ToFulfillmentResponse mapea la entidad a la respuesta HTTP.
func ToFulfillmentResponse(r *entity.FulfillmentRecord) FulfillmentResponse {
	return FulfillmentResponse{
		ID:               r.ID,
		FulfillmentID:    r.FulfillmentID,
		OrderRef:         r.OrderRef,
		Lines:            r.Lines,
		TotalAmount:      r.TotalAmount,
		InsuranceCovered: r.InsuranceCovered,
		PatientPayable:   r.PatientPayable,
		Status:           r.Status,
		BillID:           r.BillID,
	}
}
