package stock

import "github.com/shopspring/decimal"

// WeightedAverageCost calcula el costo promedio ponderado tras una compra:
// ((stockActual × costoActual) + (cantidadEntrada × costoEntrada)) / (stockActual + cantidadEntrada)
func WeightedAverageCost(onHand int64, currentCost decimal.Decimal, inQty int64, inCost decimal.Decimal) decimal.Decimal {
	qtyOnHand := decimal.NewFromInt(onHand)
	qtyIn := decimal.NewFromInt(inQty)
	sum := qtyOnHand.Add(qtyIn)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := qtyOnHand.Mul(currentCost).Add(qtyIn.Mul(inCost))
	return num.Div(sum).Round(4)
}
