package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-ledger/internal/application/dto"
	"github.com/jhoicas/hospital-ledger/internal/domain"
)

// buildErrorApp monta una ruta por error para ejercitar el traductor con
// peticiones reales de Fiber.
func buildErrorApp(errs map[string]error) *fiber.App {
	app := fiber.New()
	for path, err := range errs {
		err := err
		app.Get("/"+path, func(c *fiber.Ctx) error {
			return respondError(c, err)
		})
	}
	return app
}

func doGet(t *testing.T, app *fiber.App, path string) (int, dto.ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	return resp.StatusCode, parsed
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores de dominio a HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestRespondError_Mapeo(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"entrada inválida", domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
		{"monto inválido", domain.ErrInvalidAmount, fiber.StatusBadRequest, "VALIDATION"},
		{"factura no encontrada", domain.ErrBillNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"sku no encontrado", domain.ErrSKUNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"pago no encontrado", domain.ErrPaymentNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"recurso no encontrado", domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"factura inmutable", domain.ErrBillImmutable, fiber.StatusConflict, "BILL_IMMUTABLE"},
		{"duplicado", domain.ErrDuplicate, fiber.StatusConflict, "CONFLICT"},
		{"conflicto", domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
		{"concurrencia", domain.ErrConcurrency, fiber.StatusServiceUnavailable, "CONCURRENCY"},
		{"almacén caído", domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{"error desconocido", fmt.Errorf("algo inesperado"), fiber.StatusInternalServerError, "INTERNAL"},
	}

	errs := make(map[string]error, len(cases))
	for i, tc := range cases {
		errs[fmt.Sprintf("case-%d", i)] = tc.err
	}
	app := buildErrorApp(errs)

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doGet(t, app, fmt.Sprintf("/case-%d", i))
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, body.Code)
		})
	}
}

// Los 503 llevan Retry-After para que el caller sepa cuándo reintentar.
func TestRespondError_RetryAfterEn503(t *testing.T) {
	app := buildErrorApp(map[string]error{"concurrency": domain.ErrConcurrency})

	resp, err := app.Test(httptest.NewRequest("GET", "/concurrency", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
}

// Un error envuelto conserva su mapeo: el traductor usa errors.Is, no igualdad.
func TestRespondError_ErrorEnvuelto(t *testing.T) {
	wrapped := fmt.Errorf("contexto extra: %w", domain.ErrSKUNotFound)
	app := buildErrorApp(map[string]error{"wrapped": wrapped})

	status, body := doGet(t, app, "/wrapped")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos con snapshot: el Detail lleva el estado observado
// ──────────────────────────────────────────────────────────────────────────────

func TestRespondError_StockInsuficienteConDetalle(t *testing.T) {
	app := buildErrorApp(map[string]error{
		"insufficient": &domain.InsufficientStockError{
			SKUID:     "sku-1",
			SKUCode:   "DRG-AMOX-500",
			Available: 3,
			Requested: 10,
		},
	})

	status, body := doGet(t, app, "/insufficient")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)

	detail, ok := body.Detail.(map[string]interface{})
	require.True(t, ok, "el detail debe ser un objeto")
	assert.Equal(t, "DRG-AMOX-500", detail["sku_code"])
	assert.Equal(t, float64(3), detail["available"])
	assert.Equal(t, float64(10), detail["requested"])
}

func TestRespondError_ExcedeSaldoConDetalle(t *testing.T) {
	app := buildErrorApp(map[string]error{
		"exceeds": &domain.ExceedsOutstandingError{
			BillID:      "BILL202608280001",
			Outstanding: decimal.NewFromFloat(212.40),
			Requested:   decimal.NewFromFloat(300.00),
		},
	})

	status, body := doGet(t, app, "/exceeds")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "EXCEEDS_OUTSTANDING", body.Code)

	detail, ok := body.Detail.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "BILL202608280001", detail["bill_id"])
	assert.Equal(t, "212.4", detail["outstanding"], "decimal serializa como string JSON")
	assert.Equal(t, "300", detail["requested"])
}
