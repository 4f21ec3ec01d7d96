package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/stock"
	"github.com/jhoicas/Trazabilidad-api/internal/application/timeline"
	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/events"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
	apihttp "github.com/jhoicas/Trazabilidad-api/internal/interfaces/http"
)

// newTestApp levanta la API completa sobre el almacén en memoria, con el mismo
// cableado que cmd/api.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	ledger := units.NewLedgerUseCase(txRunner, store.Products(), store.Units(), events.NoopPublisher{}, 500)

	app := fiber.New()
	apihttp.Router(app, apihttp.RouterDeps{
		Ledger:        ledger,
		MovementQuery: units.NewMovementQueryUseCase(store.Movements(), store.Products()),
		Stock:         stock.NewReconcileUseCase(store.Units(), store.Movements(), store.Products()),
		Timeline:      timeline.NewBuildTimelineUseCase(store.Units(), store.Products(), time.FixedZone("-05", -5*60*60)),
		Products:      catalog.NewProductUseCase(store.Products()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func createProductHTTP(t *testing.T, app *fiber.App) dto.ProductDTO {
	t.Helper()
	resp, raw := doJSON(t, app, http.MethodPost, "/api/products/", map[string]any{
		"name":  "Concentrado premium 10kg",
		"price": "89000",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var p dto.ProductDTO
	require.NoError(t, json.Unmarshal(raw, &p))
	require.NotEmpty(t, p.ID)
	return p
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e.Code
}

func TestIssueUnits_Creado(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/units/", dto.IssueUnitsRequest{
		ProductID: p.ID, Quantity: 5, Reason: "compra inicial",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	var out dto.IssueUnitsResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 5, out.Count)
	require.Len(t, out.Units, 5)
	seen := map[string]struct{}{}
	for _, u := range out.Units {
		assert.Equal(t, "available", u.State)
		assert.Len(t, u.Serial, 12, "serial de ancho fijo")
		seen[u.Serial] = struct{}{}
	}
	assert.Len(t, seen, 5, "seriales distintos")
}

func TestIssueUnits_Errores(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)

	// cantidad inválida → 400 VALIDATION
	resp, raw := doJSON(t, app, http.MethodPost, "/api/units/", dto.IssueUnitsRequest{ProductID: p.ID, Quantity: 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	// producto inexistente → 404 NOT_FOUND
	resp, raw = doJSON(t, app, http.MethodPost, "/api/units/", dto.IssueUnitsRequest{
		ProductID: "11111111-1111-1111-1111-111111111111", Quantity: 1,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, raw))
}

func TestMarkSold_ConflictoEnDobleVenta(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)

	_, raw := doJSON(t, app, http.MethodPost, "/api/units/", dto.IssueUnitsRequest{ProductID: p.ID, Quantity: 1})
	var issued dto.IssueUnitsResponse
	require.NoError(t, json.Unmarshal(raw, &issued))
	unitID := issued.Units[0].ID

	path := fmt.Sprintf("/api/units/%s/sold", unitID)
	resp, _ := doJSON(t, app, http.MethodPut, path, dto.MarkSoldRequest{SaleRef: "FAC-001"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodPut, path, dto.MarkSoldRequest{SaleRef: "FAC-002"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_SOLD", errorCode(t, raw))
}

func TestRegisterMovement_SoloOUT(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/movements/", dto.RegisterMovementRequest{
		ProductID: p.ID, Type: "IN", Quantity: 3,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))
}

func TestRegisterMovement_StockInsuficiente(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)

	_, _ = doJSON(t, app, http.MethodPost, "/api/units/", dto.IssueUnitsRequest{ProductID: p.ID, Quantity: 3})

	resp, raw := doJSON(t, app, http.MethodPost, "/api/movements/", dto.RegisterMovementRequest{
		ProductID: p.ID, Type: "OUT", Quantity: 10, Reason: "ajuste",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, raw))

	// El stock quedó intacto
	resp, raw = doJSON(t, app, http.MethodGet, "/api/products/"+p.ID+"/stock", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var st dto.StockResponse
	require.NoError(t, json.Unmarshal(raw, &st))
	assert.Equal(t, int64(3), st.Stock)
}

func TestListMovements_FiltroInvalido(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/movements/?product_id="+p.ID+"&from=ayer", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))
}

func TestFlujo_StockYReconcile(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)

	_, raw := doJSON(t, app, http.MethodPost, "/api/units/", dto.IssueUnitsRequest{ProductID: p.ID, Quantity: 10})
	var issued dto.IssueUnitsResponse
	require.NoError(t, json.Unmarshal(raw, &issued))

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, app, http.MethodPut,
			fmt.Sprintf("/api/units/%s/sold", issued.Units[i].ID),
			dto.MarkSoldRequest{SaleRef: "FAC-400"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/movements/", dto.RegisterMovementRequest{
		ProductID: p.ID, Type: "OUT", Quantity: 2, Reason: "vencidas",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/products/"+p.ID+"/stock", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var st dto.StockResponse
	require.NoError(t, json.Unmarshal(raw, &st))
	assert.Equal(t, int64(5), st.Stock)

	resp, raw = doJSON(t, app, http.MethodPost, "/api/products/"+p.ID+"/reconcile", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rec dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.True(t, rec.OK)
	assert.Zero(t, rec.Drift)
}

func TestGetTimeline_ProductoSinUnidades(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/products/"+p.ID+"/timeline", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Timeline []dto.TimelineDayDTO `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Timeline, 1)
	assert.True(t, out.Timeline[0].Synthetic)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, out.Timeline[0].Date)
}

func TestGetProductUnits(t *testing.T) {
	app := newTestApp(t)
	p := createProductHTTP(t, app)
	_, _ = doJSON(t, app, http.MethodPost, "/api/units/", dto.IssueUnitsRequest{ProductID: p.ID, Quantity: 2})

	resp, raw := doJSON(t, app, http.MethodGet, "/api/products/"+p.ID+"/units", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out dto.ProductUnitsResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, p.ID, out.Product.ID)
	assert.Len(t, out.Units, 2)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/products/22222222-2222-2222-2222-222222222222/units", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, raw))
}
