package stock

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
	domstock "github.com/jhoicas/hospital-ledger/internal/domain/stock"
	"github.com/jhoicas/hospital-ledger/pkg/logger"
)

const alertsCacheKey = "stock:alerts"

// AlertUseCase deriva las alertas de stock bajo demanda desde las filas
// actuales de SKU. No hay estado propio: el SKU no guarda ningún campo de
// disponibilidad, siempre se deriva en la lectura.
type AlertUseCase struct {
	skuRepo repository.SKURepository
	cache   AlertCache // opcional; nil desactiva la memoización
	horizon time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// NewAlertUseCase construye el caso de uso. cache puede ser nil.
func NewAlertUseCase(skuRepo repository.SKURepository, cache AlertCache, horizon time.Duration, log *logger.Logger) *AlertUseCase {
	if horizon <= 0 {
		horizon = domstock.DefaultExpiryHorizon
	}
	return &AlertUseCase{skuRepo: skuRepo, cache: cache, horizon: horizon, log: log, now: time.Now}
}

// WithClock fija el reloj (tests).
func (uc *AlertUseCase) WithClock(now func() time.Time) *AlertUseCase {
	uc.now = now
	return uc
}

// QueryAlerts recalcula las alertas de todos los SKUs activos. Si hay caché y
// el snapshot sigue vigente, lo devuelve; un fallo de caché solo se loguea,
// nunca rompe la consulta.
func (uc *AlertUseCase) QueryAlerts(ctx context.Context) ([]entity.Alert, error) {
	if uc.cache != nil {
		if payload, ok, err := uc.cache.Get(ctx, alertsCacheKey); err != nil {
			uc.log.Warn().Err(err).Msg("caché de alertas no disponible, evaluando directo")
		} else if ok {
			var alerts []entity.Alert
			if err := json.Unmarshal(payload, &alerts); err == nil {
				return alerts, nil
			}
		}
	}

	skus, err := uc.skuRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	alerts := make([]entity.Alert, 0)
	for _, sku := range skus {
		alerts = append(alerts, domstock.Evaluate(sku, now, uc.horizon)...)
	}

	if uc.cache != nil {
		if payload, err := json.Marshal(alerts); err == nil {
			if err := uc.cache.Set(ctx, alertsCacheKey, payload); err != nil {
				uc.log.Warn().Err(err).Msg("no se pudo guardar el snapshot de alertas en caché")
			}
		}
	}
	return alerts, nil
}
