package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate crea el esquema del ledger si no existe. Las restricciones de base
// son parte del diseño, no solo del modelo: quantity_on_hand nunca negativo y
// las columnas de ID de negocio con UNIQUE como árbitro de los consecutivos.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS skus (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			generic_name TEXT,
			category TEXT NOT NULL,
			unit TEXT,
			quantity_on_hand BIGINT NOT NULL DEFAULT 0 CHECK (quantity_on_hand >= 0),
			reorder_level BIGINT NOT NULL DEFAULT 0,
			minimum_stock BIGINT NOT NULL DEFAULT 0,
			unit_cost NUMERIC(14,4) NOT NULL DEFAULT 0,
			selling_price NUMERIC(14,2) NOT NULL DEFAULT 0,
			expiry_date TIMESTAMPTZ,
			batch_number TEXT,
			supplier_ref TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS stock_transactions (
			id UUID PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			sku_id UUID NOT NULL REFERENCES skus(id),
			type TEXT NOT NULL,
			quantity BIGINT NOT NULL CHECK (quantity > 0),
			outbound BOOLEAN NOT NULL DEFAULT FALSE,
			unit_cost NUMERIC(14,4) NOT NULL DEFAULT 0,
			total_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
			reference_id TEXT,
			performed_by TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_stock_transactions_sku ON stock_transactions (sku_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS bills (
			id UUID PRIMARY KEY,
			bill_id TEXT NOT NULL UNIQUE,
			patient_ref TEXT NOT NULL,
			type TEXT NOT NULL,
			line_items JSONB NOT NULL DEFAULT '[]'::jsonb,
			subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
			discount_percentage NUMERIC(7,4) NOT NULL DEFAULT 0,
			discount_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			tax_percentage NUMERIC(7,4) NOT NULL DEFAULT 0,
			tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			paid_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			outstanding_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			payment_status TEXT NOT NULL DEFAULT 'unpaid',
			due_date TIMESTAMPTZ NOT NULL,
			notes TEXT,
			created_by TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bills_patient ON bills (patient_ref);`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			payment_id TEXT NOT NULL UNIQUE,
			bill_id UUID NOT NULL REFERENCES bills(id),
			patient_ref TEXT,
			amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
			method TEXT NOT NULL,
			status TEXT NOT NULL,
			received_by TEXT,
			notes TEXT,
			paid_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_payments_bill ON payments (bill_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS fulfillments (
			id UUID PRIMARY KEY,
			fulfillment_id TEXT NOT NULL UNIQUE,
			order_ref TEXT,
			patient_ref TEXT NOT NULL,
			lines JSONB NOT NULL DEFAULT '[]'::jsonb,
			total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			insurance_covered NUMERIC(14,2) NOT NULL DEFAULT 0,
			patient_payable NUMERIC(14,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			bill_id TEXT,
			dispensed_by TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migración del esquema: %w", err)
		}
	}
	return nil
}
