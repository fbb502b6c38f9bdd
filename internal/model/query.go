package model

const (
	DefaultAmount = 10
	DefaultPage   = 1
)

// QueryParams holds the get_instruments arguments. An empty Instrument and a
// zero InstrumentTypeID mean the filter is not applied.
type QueryParams struct {
	Instrument       string
	InstrumentTypeID InstrumentType
	Amount           int
	Page             int
}

func NewQueryParams() QueryParams {
	return QueryParams{Amount: DefaultAmount, Page: DefaultPage}
}

type QueryResult struct {
	Page        int                `json:"page"`
	Amount      int                `json:"amount"`
	TotalCount  int                `json:"total_count"`
	TotalPages  int                `json:"total_pages"`
	Instruments []InstrumentRecord `json:"instruments"`
}

func (r QueryResult) HasPrevPage() bool {
	return r.Page > 1
}

func (r QueryResult) HasNextPage() bool {
	return r.Page < r.TotalPages
}
