package stock

import "github.com/jhoicas/hospital-ledger/internal/domain/entity"

// Fold reproduce la cantidad en mano de un SKU como la suma con signo de todas
// sus transacciones desde la creación. El agregado SKU es exactamente este fold;
// si divergen hay corrupción del ledger.
func Fold(transactions []entity.StockTransaction) int64 {
	var qty int64
	for i := range transactions {
		qty += transactions[i].SignedQuantity()
	}
	return qty
}
