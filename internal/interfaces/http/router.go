package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-ledger/internal/application/billing"
	"github.com/jhoicas/hospital-ledger/internal/application/fulfillment"
	"github.com/jhoicas/hospital-ledger/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateBill  *billing.CreateBillUseCase
	Payments    *billing.PaymentUseCase
	StockLedger *stock.LedgerUseCase
	StockAlerts *stock.AlertUseCase
	Fulfillment *fulfillment.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Billing Ledger
	billingGroup := api.Group("/billing")
	billingHandler := NewBillingHandler(deps.CreateBill, deps.Payments)
	billingGroup.Post("/bills", billingHandler.CreateBill)
	billingGroup.Get("/bills/:id", billingHandler.GetBill)
	billingGroup.Put("/bills/:id/lines", billingHandler.UpdateBillLines)
	billingGroup.Get("/bills/:id/payments", billingHandler.ListPayments)
	billingGroup.Post("/payments", billingHandler.ApplyPayment)
	billingGroup.Get("/payments/:id", billingHandler.GetPayment)
	billingGroup.Post("/payments/:id/refund", billingHandler.RefundPayment)

	// Stock Ledger
	stockGroup := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockLedger, deps.StockAlerts)
	stockGroup.Post("/skus", stockHandler.CreateSKU)
	stockGroup.Get("/skus", stockHandler.ListSKUs)
	stockGroup.Get("/skus/:id", stockHandler.GetSKU)
	stockGroup.Get("/skus/:id/transactions", stockHandler.ListTransactions)
	stockGroup.Post("/transactions", stockHandler.Commit)
	stockGroup.Post("/reservations", stockHandler.Reserve)
	stockGroup.Get("/alerts", stockHandler.QueryAlerts)

	// Fulfillment (farmacia)
	pharmacyGroup := api.Group("/pharmacy")
	fulfillmentHandler := NewFulfillmentHandler(deps.Fulfillment)
	pharmacyGroup.Post("/fulfillments", fulfillmentHandler.Fulfill)
	pharmacyGroup.Get("/fulfillments/:id", fulfillmentHandler.GetFulfillment)
}
