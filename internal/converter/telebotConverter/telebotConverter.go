package telebotConverter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/internal/model/tgCallback"
	tele "gopkg.in/telebot.v4"
)

// InstrumentsPageResponse renders one result page with prev/next buttons that
// carry the filters needed to re-run the query.
func InstrumentsPageResponse(res model.QueryResult, params model.QueryParams) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString("📈 Instruments")
	if params.InstrumentTypeID != 0 {
		sb.WriteString(fmt.Sprintf(" · %s", params.InstrumentTypeID))
	} else if params.Instrument != "" {
		sb.WriteString(fmt.Sprintf(" · \"%s\"", params.Instrument))
	}
	sb.WriteString(fmt.Sprintf("\nPage %d of %d, found %d\n\n", res.Page, res.TotalPages, res.TotalCount))

	if len(res.Instruments) == 0 {
		sb.WriteString("Nothing found.\n")
	}

	offset := (res.Page - 1) * res.Amount
	for i, inst := range res.Instruments {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", offset+i+1, inst.InstrumentName, inst.Symbol))
		sb.WriteString(fmt.Sprintf("   ▸ id %d, %s\n", inst.InstrumentID, inst.InstrumentTypeID))
	}

	// longer names don't fit the callback data, and a shortened one would
	// page through a different query
	if len(params.Instrument) > tgCallback.MaxNameFilterBytes {
		if res.TotalPages > 1 {
			sb.WriteString(fmt.Sprintf("\nName is too long for paging (max %d bytes), narrow it down or use /type.\n", tgCallback.MaxNameFilterBytes))
		}
		return sb.String(), markup
	}

	paginationBtns := make([]tele.Btn, 0, 2)
	if res.HasPrevPage() && res.TotalPages > 0 {
		// out of range pages jump back to the last one
		prev := min(res.Page-1, res.TotalPages)
		paginationBtns = append(paginationBtns, markup.Data("« previous", tgCallback.InstrumentsPage, PageCallbackData(prev, params)...))
	}
	if res.HasNextPage() {
		paginationBtns = append(paginationBtns, markup.Data("next »", tgCallback.InstrumentsPage, PageCallbackData(res.Page+1, params)...))
	}

	if len(paginationBtns) > 0 {
		markup.Inline(markup.Row(paginationBtns...))
	}

	return sb.String(), markup
}

// PageCallbackData encodes the query of the given page as callback args.
// The name must fit tgCallback.MaxNameFilterBytes.
func PageCallbackData(page int, params model.QueryParams) []string {
	return []string{
		strconv.Itoa(page),
		strconv.Itoa(int(params.InstrumentTypeID)),
		params.Instrument,
	}
}

// ParsePageCallbackData is the inverse of PageCallbackData.
func ParsePageCallbackData(args []string, amount int) (model.QueryParams, error) {
	if len(args) < 2 {
		return model.QueryParams{}, fmt.Errorf("unexpected page callback args %v", args)
	}

	page, err := strconv.Atoi(args[0])
	if err != nil {
		return model.QueryParams{}, fmt.Errorf("bad page %q: %w", args[0], err)
	}
	typeID, err := strconv.Atoi(args[1])
	if err != nil {
		return model.QueryParams{}, fmt.Errorf("bad type id %q: %w", args[1], err)
	}

	params := model.NewQueryParams()
	params.Amount = amount
	params.Page = page
	params.InstrumentTypeID = model.InstrumentType(typeID)
	if len(args) > 2 {
		// the name may itself contain the separator
		params.Instrument = strings.Join(args[2:], "|")
	}

	return params, nil
}

func HelpText() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	sb.WriteString("/instruments [name] - list instruments, optionally filtered by name\n")
	sb.WriteString("/type <label> - list instruments of one type\n\n")
	sb.WriteString("Types:")
	for _, t := range model.InstrumentTypes() {
		sb.WriteString(fmt.Sprintf(" %s (%d)", t, int(t)))
	}
	sb.WriteString("\n")
	return sb.String()
}
