package entity

import "time"

// Tipos de evento de dominio emitidos por el núcleo del ledger.
const (
	EventBillPaid             = "bill.paid"
	EventFulfillmentCompleted = "fulfillment.completed"
)

// DomainEvent se emite cuando una factura queda pagada o un fulfillment se
// completa. Lo consume de forma asíncrona el colaborador de notificaciones
// (PDF/email); su fallo nunca bloquea ni revierte la mutación del ledger.
type DomainEvent struct {
	ID         string
	EventType  string
	EntityID   string // ID de negocio: BILL... o FUL...
	OccurredAt time.Time
}
