package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/batchledger/internal/adapter/http/dto"
	"github.com/iho/batchledger/internal/adapter/http/handler"
	"github.com/iho/batchledger/internal/engine"
)

func newTestRouter(t *testing.T) (http.Handler, *engine.Engine) {
	t.Helper()

	eng := engine.New(engine.Config{Workers: 2})
	require.NoError(t, eng.Start())
	t.Cleanup(func() { _ = eng.Stop() })

	router := NewRouter(RouterConfig{
		BatchHandler:      handler.NewBatchHandler(eng, 5*time.Second),
		AuditHandler:      handler.NewAuditHandler(eng),
		TemplateHandler:   handler.NewTemplateHandler(eng),
		RecurrenceHandler: handler.NewRecurrenceHandler(eng),
		HealthHandler:     handler.NewHealthHandler(eng),
	})

	return router, eng
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out
}

func requireDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func submitBody(amount string) dto.SubmitBatchRequest {
	return dto.SubmitBatchRequest{
		Transactions: []dto.TransactionItem{
			{
				Description: "test transfer",
				Entries: []dto.EntryItem{
					{AccountCode: "cash", Debit: requireDecimal(amount)},
					{AccountCode: "revenue", Credit: requireDecimal(amount)},
				},
			},
		},
	}
}

func TestSubmitWaitAndStatus(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/batches", submitBody("100.00"))
	require.Equal(t, http.StatusAccepted, rec.Code)

	submitted := decode[dto.SubmitBatchResponse](t, rec)
	require.NotEmpty(t, submitted.BatchID)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/batches/"+submitted.BatchID+"/wait", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[dto.BatchStatusResponse](t, rec)
	require.True(t, status.Completed)
	require.False(t, status.HasErrors)
	require.Equal(t, 1, status.Processed)
	require.NotNil(t, status.FailedIndices)
	require.Empty(t, status.FailedIndices)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/batches/"+submitted.BatchID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitEmptyBatch(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/batches", dto.SubmitBatchRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUnknownBatch(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/batches/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/batches/unknown/wait", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/batches", submitBody("250.00"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	submitted := decode[dto.SubmitBatchResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/batches/"+submitted.BatchID+"/wait", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/audit/blocks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	blocks := decode[[]*dto.BlockResponse](t, rec)
	require.Len(t, blocks, 1)
	require.Equal(t, uint64(1), blocks[0].Number)
	require.Len(t, blocks[0].Transactions, 1)
	require.NotEmpty(t, blocks[0].Transactions[0].Digest)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/audit/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	verify := decode[dto.VerifyResponse](t, rec)
	require.True(t, verify.Valid)
	require.Empty(t, verify.Error)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/audit/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, rec.Body.String(), "audit trail: 1 blocks, 1 transactions")
}

func TestTemplateLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	create := dto.CreateTemplateRequest{
		ID:   "rent",
		Name: "Monthly rent",
		Entries: []dto.EntryItem{
			{AccountCode: "expense:rent", Debit: requireDecimal("1")},
			{AccountCode: "cash", Credit: requireDecimal("1")},
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/templates", create)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/templates", create)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]*dto.TemplateResponse](t, rec), 1)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/templates/rent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Monthly rent", decode[dto.TemplateResponse](t, rec).Name)

	instantiate := dto.InstantiateTemplateRequest{
		Values: map[string]decimal.Decimal{"amount": requireDecimal("2500.00")},
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/templates/rent/instantiate", instantiate)
	require.Equal(t, http.StatusOK, rec.Code)

	tx := decode[dto.TransactionResponse](t, rec)
	require.Equal(t, "rent", tx.TemplateID)
	require.True(t, tx.Entries[0].Debit.Equal(requireDecimal("2500.00")))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/templates/rent/instantiate", dto.InstantiateTemplateRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/templates/rent", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/templates/rent", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecurrenceLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	tpl := dto.CreateTemplateRequest{
		ID:   "payroll",
		Name: "Payroll",
		Entries: []dto.EntryItem{
			{AccountCode: "expense:payroll", Debit: requireDecimal("1")},
			{AccountCode: "cash", Credit: requireDecimal("1")},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/templates", tpl)
	require.Equal(t, http.StatusCreated, rec.Code)

	create := dto.CreateRecurrenceRequest{
		ID:             "payroll-biweekly",
		TemplateID:     "payroll",
		Frequency:      "biweekly",
		Amount:         requireDecimal("5000.00"),
		NextOccurrence: time.Now().UTC().Add(-time.Hour),
		Active:         true,
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/recurrences", create)
	require.Equal(t, http.StatusCreated, rec.Code)

	bad := create
	bad.ID = "bad"
	bad.Frequency = "hourly"
	rec = doJSON(t, router, http.MethodPost, "/api/v1/recurrences", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/recurrences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]*dto.RecurrenceResponse](t, rec), 1)

	update := create
	update.Frequency = "monthly"
	update.Amount = requireDecimal("5500.00")

	rec = doJSON(t, router, http.MethodPut, "/api/v1/recurrences/payroll-biweekly", update)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decode[dto.RecurrenceResponse](t, rec)
	require.Equal(t, "monthly", updated.Frequency)
	require.True(t, updated.Amount.Equal(requireDecimal("5500.00")))

	rec = doJSON(t, router, http.MethodPut, "/api/v1/recurrences/missing", update)
	require.Equal(t, http.StatusNotFound, rec.Code)

	badUpdate := update
	badUpdate.Frequency = "hourly"
	rec = doJSON(t, router, http.MethodPut, "/api/v1/recurrences/payroll-biweekly", badUpdate)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/recurrences/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	run := decode[dto.RunDueResponse](t, rec)
	require.Equal(t, 1, run.Instantiated)
	require.NotEmpty(t, run.BatchID)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/batches/"+run.BatchID+"/wait", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The schedule advanced, so an immediate second run finds nothing due.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/recurrences/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, decode[dto.RunDueResponse](t, rec).Instantiated)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/recurrences/payroll-biweekly", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStats(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/batches", submitBody("10.00"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	submitted := decode[dto.SubmitBatchResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/batches/"+submitted.BatchID+"/wait", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[dto.StatsResponse](t, rec)
	require.Equal(t, int64(1), stats.Processed)
	require.Equal(t, int64(1), stats.Batches)
	require.Equal(t, 1, stats.Blocks)
}

func TestHealthAndReadiness(t *testing.T) {
	router, eng := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, eng.Stop())

	rec = doJSON(t, router, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSubmitAfterEngineStop(t *testing.T) {
	router, eng := newTestRouter(t)

	require.NoError(t, eng.Stop())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/batches", submitBody("10.00"))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnbalancedBatchReportsFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	body := dto.SubmitBatchRequest{
		Transactions: []dto.TransactionItem{
			{
				Entries: []dto.EntryItem{
					{AccountCode: "cash", Debit: requireDecimal("100.00")},
					{AccountCode: "revenue", Credit: requireDecimal("40.00")},
				},
			},
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/batches", body)
	require.Equal(t, http.StatusAccepted, rec.Code)
	submitted := decode[dto.SubmitBatchResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/batches/"+submitted.BatchID+"/wait", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[dto.BatchStatusResponse](t, rec)
	require.True(t, status.HasErrors)
	require.Equal(t, []int{0}, status.FailedIndices)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/audit/blocks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[[]*dto.BlockResponse](t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "batchledger_http_requests_in_flight")
}
