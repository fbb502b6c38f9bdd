package toolApi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KotFed0t/instrument_catalog/config"
	"github.com/KotFed0t/instrument_catalog/internal/externalApi"
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/internal/service"
	"github.com/KotFed0t/instrument_catalog/internal/transport/toolApi/middleware"
	"github.com/KotFed0t/instrument_catalog/utils"
)

type fakeCatalog struct {
	res        model.QueryResult
	records    []model.InstrumentRecord
	err        error
	lastParams model.QueryParams
	lastRqID   string
	calls      int
}

func (f *fakeCatalog) GetInstruments(ctx context.Context, params model.QueryParams) (model.QueryResult, error) {
	f.calls++
	f.lastParams = params
	f.lastRqID = utils.GetRequestIDFromCtx(ctx)
	return f.res, f.err
}

func (f *fakeCatalog) Instruments(ctx context.Context, params model.QueryParams) ([]model.InstrumentRecord, error) {
	f.calls++
	f.lastParams = params
	return f.records, f.err
}

type fakeGenerator struct {
	got []model.InstrumentRecord
}

func (f *fakeGenerator) Generate(ctx context.Context, records []model.InstrumentRecord) ([]byte, string, error) {
	f.got = records
	return []byte("xlsx-bytes"), ".xlsx", nil
}

func newTestRouter(svc *fakeCatalog, gen *fakeGenerator, burst int) http.Handler {
	cfg := &config.Config{HTTP: config.HTTP{RateLimitRPS: 0.001, RateLimitBurst: burst}}
	return NewRouter(cfg, NewController(svc, gen, 10), prometheus.NewRegistry())
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_GetInstruments_Get(t *testing.T) {
	svc := &fakeCatalog{res: model.QueryResult{
		Page: 2, Amount: 1, TotalCount: 2, TotalPages: 2,
		Instruments: []model.InstrumentRecord{{InstrumentID: 1002, InstrumentName: "Pineapple Holdings", InstrumentTypeID: model.Stocks, Symbol: "PNPL.L"}},
	}}
	h := newTestRouter(svc, &fakeGenerator{}, 100)

	rec := do(t, h, http.MethodGet, "/tools/get_instruments?instrument=apple&amount=1&page=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, model.QueryParams{Instrument: "apple", Amount: 1, Page: 2}, svc.lastParams)
	assert.JSONEq(t, `{
		"page": 2, "amount": 1, "total_count": 2, "total_pages": 2,
		"instruments": [{"InstrumentID": 1002, "InstrumentName": "Pineapple Holdings", "InstrumentTypeID": 4, "Symbol": "PNPL.L"}]
	}`, rec.Body.String())
}

func Test_GetInstruments_PostJSON(t *testing.T) {
	svc := &fakeCatalog{res: model.QueryResult{Page: 1, Amount: 10}}
	h := newTestRouter(svc, &fakeGenerator{}, 100)

	rec := do(t, h, http.MethodPost, "/tools/get_instruments", `{"instrument_type": "crypto", "instrument_type_ID": 3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.QueryParams{InstrumentTypeID: model.Cryptocurrencies, Amount: 10, Page: 1}, svc.lastParams)
	assert.JSONEq(t, `{"page": 1, "amount": 10, "total_count": 0, "total_pages": 0, "instruments": []}`, rec.Body.String())
}

func Test_GetInstruments_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		svcErr     error
		wantStatus int
		wantMsg    string
		wantCalls  int
	}{
		{
			name:       "non_integer_amount",
			method:     http.MethodGet,
			target:     "/tools/get_instruments?amount=abc",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid query: amount must be an integer",
		},
		{
			name:       "zero_amount",
			method:     http.MethodPost,
			target:     "/tools/get_instruments",
			body:       `{"amount": 0}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid query: amount must be positive, got 0",
		},
		{
			name:       "malformed_body",
			method:     http.MethodPost,
			target:     "/tools/get_instruments",
			body:       `{"amount": `,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid query: malformed arguments",
		},
		{
			name:       "source_unavailable",
			method:     http.MethodGet,
			target:     "/tools/get_instruments",
			svcErr:     fmt.Errorf("%w: %w", service.ErrSourceUnavailable, &externalApi.StatusError{StatusCode: 500}),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "instruments source unavailable: status code 500",
			wantCalls:  1,
		},
		{
			name:       "storage_failure",
			method:     http.MethodGet,
			target:     "/tools/get_instruments",
			svcErr:     fmt.Errorf("%w: save snapshot", service.ErrStorageFailure),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "snapshot storage failure",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCatalog{err: tt.svcErr}
			h := newTestRouter(svc, &fakeGenerator{}, 100)

			rec := do(t, h, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalls, svc.calls)

			var envelope map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, map[string]string{"error": tt.wantMsg}, envelope)
		})
	}
}

func Test_ListTools(t *testing.T) {
	h := newTestRouter(&fakeCatalog{}, &fakeGenerator{}, 100)

	rec := do(t, h, http.MethodGet, "/tools", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var tools []ToolDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tools))
	require.Len(t, tools, 1)
	assert.Equal(t, GetInstrumentsTool, tools[0].Name)

	names := make([]string, 0, len(tools[0].Parameters))
	for _, p := range tools[0].Parameters {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"instrument", "instrument_type_ID", "instrument_type", "amount", "page"}, names)
}

func Test_ExportInstruments(t *testing.T) {
	records := []model.InstrumentRecord{{InstrumentID: 18, InstrumentName: "Gold", InstrumentTypeID: model.Commodities, Symbol: "GOLD"}}
	svc := &fakeCatalog{records: records}
	gen := &fakeGenerator{}
	h := newTestRouter(svc, gen, 100)

	rec := do(t, h, http.MethodGet, "/instruments/export.xlsx?instrument_type=commodities", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="instruments.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
	assert.Equal(t, model.Commodities, svc.lastParams.InstrumentTypeID)
	assert.Equal(t, records, gen.got)
}

func Test_RateLimit(t *testing.T) {
	h := newTestRouter(&fakeCatalog{}, &fakeGenerator{}, 1)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/tools", "").Code)

	rec := do(t, h, http.MethodGet, "/tools", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error": "rate limit exceeded"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code, "health is not rate limited")
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/metrics", "").Code)
}

func Test_Logger_KeepsCallerRequestID(t *testing.T) {
	svc := &fakeCatalog{}
	h := newTestRouter(svc, &fakeGenerator{}, 100)

	req := httptest.NewRequest(http.MethodGet, "/tools/get_instruments", nil)
	req.Header.Set(middleware.RequestIDHeader, "caller-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "caller-id", rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "caller-id", svc.lastRqID)
}
