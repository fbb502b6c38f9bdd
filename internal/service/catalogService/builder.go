package catalogService

import (
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/internal/model/etoroModel"
)

// dedupInstruments reduces raw entries to a snapshot keyed by canonical key.
// Source order decides which duplicate survives: the first one wins.
func dedupInstruments(raw []etoroModel.RawInstrument) *model.Snapshot {
	snapshot := model.NewSnapshot()

	for _, entry := range raw {
		key := model.CanonicalKey(entry.SymbolFull)
		if key == "" {
			continue
		}
		snapshot.Add(key, model.InstrumentRecord{
			InstrumentID:     entry.InstrumentID,
			InstrumentName:   entry.InstrumentDisplayName,
			InstrumentTypeID: model.InstrumentType(entry.InstrumentTypeID),
			Symbol:           entry.SymbolFull,
		})
	}

	return snapshot
}
