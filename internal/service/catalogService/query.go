package catalogService

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/internal/service"
)

// Query filters and paginates records.
//
// When both filters are set the type filter is applied to the unfiltered
// records and the name filter result is dropped. Callers depend on this
// behaviour, it is not a conjunction.
func Query(records []model.InstrumentRecord, params model.QueryParams) (model.QueryResult, error) {
	if params.Amount <= 0 {
		return model.QueryResult{}, fmt.Errorf("%w: amount must be positive, got %d", service.ErrInvalidQuery, params.Amount)
	}

	filtered := filterInstruments(records, params)
	totalCount := len(filtered)

	return model.QueryResult{
		Page:        params.Page,
		Amount:      params.Amount,
		TotalCount:  totalCount,
		TotalPages:  totalPages(totalCount, params.Amount),
		Instruments: paginate(filtered, params.Page, params.Amount),
	}, nil
}

func filterInstruments(records []model.InstrumentRecord, params model.QueryParams) []model.InstrumentRecord {
	res := records

	if params.Instrument != "" {
		name := strings.ToLower(params.Instrument)
		res = filter(records, func(rec model.InstrumentRecord) bool {
			return strings.Contains(strings.ToLower(rec.InstrumentName), name)
		})
	}

	if params.InstrumentTypeID != 0 {
		res = filter(records, func(rec model.InstrumentRecord) bool {
			return rec.InstrumentTypeID == params.InstrumentTypeID
		})
	}

	return res
}

func filter(records []model.InstrumentRecord, keep func(rec model.InstrumentRecord) bool) []model.InstrumentRecord {
	res := make([]model.InstrumentRecord, 0)
	for _, rec := range records {
		if keep(rec) {
			res = append(res, rec)
		}
	}
	return res
}

// totalPages is ceil(total/amount) without the overflow of total+amount-1.
func totalPages(total, amount int) int {
	pages := total / amount
	if total%amount != 0 {
		pages++
	}
	return pages
}

// paginate returns a copy of records[(page-1)*amount : page*amount] clamped to
// the slice bounds. Out of range pages give an empty slice.
func paginate(records []model.InstrumentRecord, page, amount int) []model.InstrumentRecord {
	// compared before multiplying so huge pages can't wrap into range
	if page < 1 || len(records) == 0 || page-1 > (len(records)-1)/amount {
		return []model.InstrumentRecord{}
	}

	start := (page - 1) * amount
	end := start + min(amount, len(records)-start)

	res := make([]model.InstrumentRecord, end-start)
	copy(res, records[start:end])
	return res
}
