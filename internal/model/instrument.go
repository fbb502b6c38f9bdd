package model

import (
	"fmt"
	"strings"
)

type InstrumentType int

// Ids are fixed by the remote source and must not be renumbered.
const (
	Forex            InstrumentType = 1
	Commodities      InstrumentType = 2
	Cryptocurrencies InstrumentType = 3
	Stocks           InstrumentType = 4
	Indices          InstrumentType = 5
)

var instrumentTypeLabels = map[InstrumentType]string{
	Forex:            "forex",
	Commodities:      "commodities",
	Cryptocurrencies: "cryptocurrencies",
	Stocks:           "stocks",
	Indices:          "indices",
}

// "indexes" is accepted as a legacy spelling of indices.
var instrumentTypeAliases = map[string]InstrumentType{
	"indexes": Indices,
}

// InstrumentTypes returns all known types in id order.
func InstrumentTypes() []InstrumentType {
	return []InstrumentType{Forex, Commodities, Cryptocurrencies, Stocks, Indices}
}

func (t InstrumentType) String() string {
	if label, ok := instrumentTypeLabels[t]; ok {
		return label
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

func (t InstrumentType) Valid() bool {
	_, ok := instrumentTypeLabels[t]
	return ok
}

// ParseInstrumentType maps a case-insensitive label onto its type id.
func ParseInstrumentType(label string) (InstrumentType, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	for t, l := range instrumentTypeLabels {
		if l == label {
			return t, nil
		}
	}
	if t, ok := instrumentTypeAliases[label]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown instrument type %q", label)
}

// InstrumentRecord is the persisted, reduced form of a remote instrument.
type InstrumentRecord struct {
	InstrumentID     int            `json:"InstrumentID"`
	InstrumentName   string         `json:"InstrumentName"`
	InstrumentTypeID InstrumentType `json:"InstrumentTypeID"`
	Symbol           string         `json:"Symbol"`
}

// CanonicalKey derives the dedup key from a full symbol: the part before the
// first '.', then the part of that before the first '_'.
func CanonicalKey(symbolFull string) string {
	key, _, _ := strings.Cut(symbolFull, ".")
	key, _, _ = strings.Cut(key, "_")
	return key
}
