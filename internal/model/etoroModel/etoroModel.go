package etoroModel

import "encoding/json"

// RawInstrumentsResponse keeps the list undecoded so that a missing or
// malformed field can be told apart from an empty list.
type RawInstrumentsResponse struct {
	InstrumentDisplayDatas json.RawMessage `json:"InstrumentDisplayDatas"`
}

type RawInstrument struct {
	InstrumentID          int    `json:"InstrumentID"`
	InstrumentDisplayName string `json:"InstrumentDisplayName"`
	InstrumentTypeID      int    `json:"InstrumentTypeID"`
	SymbolFull            string `json:"SymbolFull"`
}
