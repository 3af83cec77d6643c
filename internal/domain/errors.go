package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
//
// Taxonomía:
//   - validación (ErrInvalidInput, ErrInvalidAmount): entrada malformada, sin reintento
//   - conflicto (ErrInsufficientStock, ErrExceedsOutstanding, ErrBillImmutable,
//     ErrDuplicate): rechazo de negocio legítimo, se devuelve con el estado actual
//   - no encontrado (ErrNotFound, ErrBillNotFound, ErrSKUNotFound)
//   - concurrencia (ErrConcurrency): transitorio, reintentar con backoff
//   - almacenamiento (ErrStoreUnavailable): fatal, sin reintento automático
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrBillNotFound       = errors.New("factura no encontrada")
	ErrSKUNotFound        = errors.New("sku no encontrado")
	ErrPaymentNotFound    = errors.New("pago no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidAmount      = errors.New("monto inválido")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrExceedsOutstanding = errors.New("el monto excede el saldo pendiente")
	ErrBillImmutable      = errors.New("la factura ya tiene pagos aplicados")
	ErrConcurrency        = errors.New("no se pudo serializar la operación")
	ErrStoreUnavailable   = errors.New("almacenamiento no disponible")
)

// InsufficientStockError lleva el estado actual del SKU para que el caller
// pueda reconciliar sin una segunda lectura. Envuelve ErrInsufficientStock.
type InsufficientStockError struct {
	SKUID     string
	SKUCode   string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d",
		e.SKUCode, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ExceedsOutstandingError lleva el saldo actual de la factura. El rechazo es
// estricto: el pago nunca se recorta ni se acepta parcialmente.
// Envuelve ErrExceedsOutstanding.
type ExceedsOutstandingError struct {
	BillID      string
	Outstanding decimal.Decimal
	Requested   decimal.Decimal
}

func (e *ExceedsOutstandingError) Error() string {
	return fmt.Sprintf("el pago de %s excede el saldo pendiente %s de la factura %s",
		e.Requested.StringFixed(2), e.Outstanding.StringFixed(2), e.BillID)
}

func (e *ExceedsOutstandingError) Unwrap() error { return ErrExceedsOutstanding }
