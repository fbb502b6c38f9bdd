package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KotFed0t/instrument_catalog/internal/model"
)

func Test_CanonicalKey(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{symbol: "AAPL.US_1", want: "AAPL"},
		{symbol: "EURUSD", want: "EURUSD"},
		{symbol: "BTC_X.CRYPTO", want: "BTC"},
		{symbol: "AAPL", want: "AAPL"},
		{symbol: "VOD.L", want: "VOD"},
		{symbol: ".US", want: ""},
		{symbol: "_X", want: ""},
		{symbol: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanonicalKey(tt.symbol))
			assert.Equal(t, model.CanonicalKey(tt.symbol), model.CanonicalKey(tt.symbol))
		})
	}
}

func Test_InstrumentType_IdsAreFixed(t *testing.T) {
	assert.Equal(t, 1, int(model.Forex))
	assert.Equal(t, 2, int(model.Commodities))
	assert.Equal(t, 3, int(model.Cryptocurrencies))
	assert.Equal(t, 4, int(model.Stocks))
	assert.Equal(t, 5, int(model.Indices))
	assert.Equal(t, "indices", model.Indices.String())
	assert.Equal(t, "unknown(9)", model.InstrumentType(9).String())
	assert.False(t, model.InstrumentType(0).Valid())
}

func Test_ParseInstrumentType(t *testing.T) {
	for _, it := range model.InstrumentTypes() {
		got, err := model.ParseInstrumentType(it.String())
		require.NoError(t, err)
		assert.Equal(t, it, got)
	}

	got, err := model.ParseInstrumentType(" Stocks ")
	require.NoError(t, err)
	assert.Equal(t, model.Stocks, got)

	got, err = model.ParseInstrumentType("indexes")
	require.NoError(t, err)
	assert.Equal(t, model.Indices, got)

	_, err = model.ParseInstrumentType("bonds")
	assert.Error(t, err)
}

func Test_QueryResult_Pages(t *testing.T) {
	res := model.QueryResult{Page: 1, TotalPages: 3}
	assert.False(t, res.HasPrevPage())
	assert.True(t, res.HasNextPage())

	res = model.QueryResult{Page: 3, TotalPages: 3}
	assert.True(t, res.HasPrevPage())
	assert.False(t, res.HasNextPage())
}
