package repository

import (
	"context"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
)

// FulfillmentRepository persistencia de registros de dispensación.
type FulfillmentRepository interface {
	Create(ctx context.Context, record *entity.FulfillmentRecord) error
	GetByID(ctx context.Context, id string) (*entity.FulfillmentRecord, error)
	GetByFulfillmentID(ctx context.Context, fulfillmentID string) (*entity.FulfillmentRecord, error)
}
