package etoroApi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KotFed0t/instrument_catalog/config"
	"github.com/KotFed0t/instrument_catalog/internal/externalApi"
	"github.com/KotFed0t/instrument_catalog/internal/model/etoroModel"
)

const instrumentsPath = "/sapi/instrumentsmetadata/V1.1/instruments"

func newTestApi(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *EtoroApi {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = timeout
	cfg.API.EtoroApi.Url = srv.URL
	cfg.API.EtoroApi.InstrumentsPath = instrumentsPath

	return New(cfg)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != instrumentsPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func Test_GetInstruments_Success(t *testing.T) {
	api := newTestApi(t, time.Second, respond(http.StatusOK, `{
		"InstrumentDisplayDatas": [
			{"InstrumentID": 1001, "InstrumentDisplayName": "Apple Inc", "InstrumentTypeID": 5, "SymbolFull": "AAPL", "Extra": true},
			{"InstrumentID": 1, "InstrumentDisplayName": "EUR/USD", "InstrumentTypeID": 1, "SymbolFull": "EURUSD"}
		],
		"Other": 1
	}`))

	got, err := api.GetInstruments(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []etoroModel.RawInstrument{
		{InstrumentID: 1001, InstrumentDisplayName: "Apple Inc", InstrumentTypeID: 5, SymbolFull: "AAPL"},
		{InstrumentID: 1, InstrumentDisplayName: "EUR/USD", InstrumentTypeID: 1, SymbolFull: "EURUSD"},
	}, got)
}

func Test_GetInstruments_EmptyList(t *testing.T) {
	api := newTestApi(t, time.Second, respond(http.StatusOK, `{"InstrumentDisplayDatas": []}`))

	got, err := api.GetInstruments(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_GetInstruments_SkipsUndecodableEntries(t *testing.T) {
	api := newTestApi(t, time.Second, respond(http.StatusOK, `{"InstrumentDisplayDatas": [
		{"InstrumentID": "oops", "SymbolFull": "BAD"},
		{"InstrumentID": 2, "SymbolFull": "GOLD"},
		{"SymbolFull": "MISSING.FIELDS"}
	]}`))

	got, err := api.GetInstruments(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []etoroModel.RawInstrument{
		{InstrumentID: 2, SymbolFull: "GOLD"},
		{SymbolFull: "MISSING.FIELDS"},
	}, got)
}

func Test_GetInstruments_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "field_absent", body: `{"Something": []}`},
		{name: "field_null", body: `{"InstrumentDisplayDatas": null}`},
		{name: "field_not_array", body: `{"InstrumentDisplayDatas": {"a": 1}}`},
		{name: "body_not_object", body: `[1, 2, 3]`},
		{name: "body_not_json", body: `<html>maintenance</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestApi(t, time.Second, respond(http.StatusOK, tt.body))

			got, err := api.GetInstruments(context.Background())

			assert.ErrorIs(t, err, externalApi.ErrMalformedSource)
			assert.NotErrorIs(t, err, externalApi.ErrSourceUnavailable)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func Test_GetInstruments_NonSuccessStatus(t *testing.T) {
	api := newTestApi(t, time.Second, respond(http.StatusServiceUnavailable, `{"InstrumentDisplayDatas": []}`))

	got, err := api.GetInstruments(context.Background())

	assert.ErrorIs(t, err, externalApi.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "status code 503")
	var statusErr *externalApi.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Nil(t, got)
}

func Test_GetInstruments_Timeout(t *testing.T) {
	release := make(chan struct{})
	api := newTestApi(t, 50*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	_, err := api.GetInstruments(context.Background())

	assert.ErrorIs(t, err, externalApi.ErrSourceUnavailable)
	var statusErr *externalApi.StatusError
	assert.False(t, errors.As(err, &statusErr))
}
