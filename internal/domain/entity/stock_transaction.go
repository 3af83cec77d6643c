package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de stock.
const (
	TxTypePurchase   = "purchase"   // compra / recepción de proveedor
	TxTypeDispense   = "dispense"   // dispensación contra orden o receta
	TxTypeAdjustment = "adjustment" // ajuste de inventario físico
	TxTypeReturn     = "return"     // devolución (incluye compensaciones)
	TxTypeDamage     = "damage"     // baja por daño
	TxTypeExpired    = "expired"    // baja por vencimiento
)

// StockTransaction es una entrada inmutable del libro de stock: se crea una vez
// y nunca se modifica ni se borra. La cantidad siempre se guarda sin signo; la
// dirección la da el tipo (Outbound desambigua los ajustes).
// Invariante: el fold de todas las transacciones de un SKU reproduce su
// QuantityOnHand actual.
type StockTransaction struct {
	ID            string
	TransactionID string // TXN{YYYYMMDD}{0000}, único
	SKUID         string
	Type          string
	Quantity      int64 // siempre > 0
	Outbound      bool  // solo relevante para adjustment; los demás tipos lo derivan
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	ReferenceID   string // referencia opaca: factura, orden, fulfillment...
	PerformedBy   string
	CreatedAt     time.Time
}

// SignedQuantity devuelve la cantidad con el signo que aporta al stock:
// purchase/return suman; dispense/damage/expired restan; adjustment según Outbound.
func (t *StockTransaction) SignedQuantity() int64 {
	switch t.Type {
	case TxTypePurchase, TxTypeReturn:
		return t.Quantity
	case TxTypeDispense, TxTypeDamage, TxTypeExpired:
		return -t.Quantity
	case TxTypeAdjustment:
		if t.Outbound {
			return -t.Quantity
		}
		return t.Quantity
	}
	return 0
}

// IsDecrement indica si la transacción resta stock (requiere validar suficiencia).
func (t *StockTransaction) IsDecrement() bool {
	return t.SignedQuantity() < 0
}

// ValidTxType valida que el tipo pertenezca al conjunto permitido.
func ValidTxType(t string) bool {
	switch t {
	case TxTypePurchase, TxTypeDispense, TxTypeAdjustment, TxTypeReturn, TxTypeDamage, TxTypeExpired:
		return true
	}
	return false
}
