// Package stock contiene la lógica pura del libro de stock: evaluación de
// alertas, fold de transacciones y costo promedio ponderado.
package stock

import (
	"time"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// DefaultExpiryHorizon es el horizonte por defecto para alertas de vencimiento.
const DefaultExpiryHorizon = 30 * 24 * time.Hour

// Evaluate deriva las alertas de un SKU a partir de su estado actual.
// Sin efectos secundarios: no toca el write-path ni persiste nada.
// Un SKU puede llevar varias alertas a la vez (ej. low_stock y expiring).
//
// Reglas:
//   - quantityOnHand == 0            → out_of_stock (critical)
//   - 0 < quantityOnHand ≤ reorder   → low_stock (critical si ≤ minimumStock)
//   - expiryDate < now               → expired (critical, excluye expiring)
//   - expiryDate ≤ now + horizon     → expiring (warning)
func Evaluate(sku *entity.StockKeepingUnit, now time.Time, horizon time.Duration) []entity.Alert {
	if horizon <= 0 {
		horizon = DefaultExpiryHorizon
	}
	var alerts []entity.Alert

	add := func(kind, severity string) {
		alerts = append(alerts, entity.Alert{
			SKUID:          sku.ID,
			SKUCode:        sku.Code,
			SKUName:        sku.Name,
			Kind:           kind,
			Severity:       severity,
			QuantityOnHand: sku.QuantityOnHand,
			ReorderLevel:   sku.ReorderLevel,
			ExpiryDate:     sku.ExpiryDate,
		})
	}

	switch {
	case sku.QuantityOnHand == 0:
		add(entity.AlertOutOfStock, entity.SeverityCritical)
	case sku.QuantityOnHand <= sku.ReorderLevel:
		severity := entity.SeverityWarning
		if sku.QuantityOnHand <= sku.MinimumStock {
			severity = entity.SeverityCritical
		}
		add(entity.AlertLowStock, severity)
	}

	if sku.ExpiryDate != nil {
		switch {
		case sku.ExpiryDate.Before(now):
			add(entity.AlertExpired, entity.SeverityCritical)
		case !sku.ExpiryDate.After(now.Add(horizon)):
			add(entity.AlertExpiring, entity.SeverityWarning)
		}
	}
	return alerts
}
