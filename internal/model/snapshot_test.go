package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KotFed0t/instrument_catalog/internal/model"
)

func fixtureSnapshot() *model.Snapshot {
	s := model.NewSnapshot()
	s.Add("ZZZ", model.InstrumentRecord{InstrumentID: 3, InstrumentName: "Zeta Corp", InstrumentTypeID: model.Stocks, Symbol: "ZZZ.US"})
	s.Add("AAPL", model.InstrumentRecord{InstrumentID: 1001, InstrumentName: "Apple Inc", InstrumentTypeID: model.Stocks, Symbol: "AAPL"})
	s.Add("NESN", model.InstrumentRecord{InstrumentID: 7, InstrumentName: "Nestlé & Co <CH>", InstrumentTypeID: model.Stocks, Symbol: "NESN.ZU"})
	return s
}

func Test_Snapshot_Add_FirstSeenWins(t *testing.T) {
	s := model.NewSnapshot()

	assert.True(t, s.Add("AAPL", model.InstrumentRecord{InstrumentID: 1, Symbol: "AAPL"}))
	assert.False(t, s.Add("AAPL", model.InstrumentRecord{InstrumentID: 2, Symbol: "AAPL.US"}))

	rec, ok := s.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 1, rec.InstrumentID)
	assert.Equal(t, 1, s.Len())
}

func Test_Snapshot_ZeroValueIsUsable(t *testing.T) {
	var s model.Snapshot
	assert.True(t, s.Add("EURUSD", model.InstrumentRecord{InstrumentID: 1}))
	assert.Equal(t, []string{"EURUSD"}, s.Keys())
}

func Test_Snapshot_RecordsKeepInsertionOrder(t *testing.T) {
	s := fixtureSnapshot()

	assert.Equal(t, []string{"ZZZ", "AAPL", "NESN"}, s.Keys())

	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, 3, records[0].InstrumentID)
	assert.Equal(t, 1001, records[1].InstrumentID)
	assert.Equal(t, 7, records[2].InstrumentID)
}

func Test_EncodeSnapshot_RoundTrip(t *testing.T) {
	s := fixtureSnapshot()

	data, err := model.EncodeSnapshot(s)
	require.NoError(t, err)

	got, err := model.DecodeSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, s.Keys(), got.Keys())
	assert.Equal(t, s.Records(), got.Records())
}

func Test_EncodeSnapshot_Format(t *testing.T) {
	data, err := model.EncodeSnapshot(fixtureSnapshot())
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n  \"ZZZ\": {\n    \"InstrumentID\": 3,"), text)
	assert.Contains(t, text, `"InstrumentName": "Nestlé & Co <CH>"`)
	assert.Contains(t, text, `"InstrumentTypeID": 4`)
	assert.Contains(t, text, `"Symbol": "NESN.ZU"`)
	assert.Less(t, strings.Index(text, `"ZZZ"`), strings.Index(text, `"AAPL"`))
	assert.Less(t, strings.Index(text, `"AAPL"`), strings.Index(text, `"NESN"`))
}

func Test_EncodeSnapshot_Empty(t *testing.T) {
	data, err := model.EncodeSnapshot(model.NewSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	got, err := model.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func Test_DecodeSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "array", data: `[]`},
		{name: "truncated", data: `{"AAPL": {"InstrumentID": 1}`},
		{name: "bad_record", data: `{"AAPL": {"InstrumentID": "one"}}`},
		{name: "not_json", data: `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.DecodeSnapshot([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func Test_DecodeSnapshot_NullFieldsDecodeToZero(t *testing.T) {
	got, err := model.DecodeSnapshot([]byte(`{"X": {"InstrumentID": null, "InstrumentName": null, "InstrumentTypeID": 2, "Symbol": "X"}}`))
	require.NoError(t, err)

	rec, ok := got.Get("X")
	require.True(t, ok)
	assert.Equal(t, model.InstrumentRecord{InstrumentTypeID: model.Commodities, Symbol: "X"}, rec)
}
