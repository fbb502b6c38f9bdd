package toolConverter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/KotFed0t/instrument_catalog/internal/externalApi"
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/internal/service"
)

// ToolArgs are the get_instruments arguments as sent by a tool caller.
// Nil means the argument was not supplied.
type ToolArgs struct {
	Instrument       *string `json:"instrument,omitempty"`
	InstrumentTypeID *int    `json:"instrument_type_ID,omitempty"`
	InstrumentType   *string `json:"instrument_type,omitempty"`
	Amount           *int    `json:"amount,omitempty"`
	Page             *int    `json:"page,omitempty"`
}

// ArgsFromQuery reads ToolArgs from url query values.
func ArgsFromQuery(values url.Values) (ToolArgs, error) {
	args := ToolArgs{}

	if values.Has("instrument") {
		v := values.Get("instrument")
		args.Instrument = &v
	}
	if values.Has("instrument_type") {
		v := values.Get("instrument_type")
		args.InstrumentType = &v
	}

	intArgs := []struct {
		name string
		dst  **int
	}{
		{"instrument_type_ID", &args.InstrumentTypeID},
		{"amount", &args.Amount},
		{"page", &args.Page},
	}
	for _, ia := range intArgs {
		if !values.Has(ia.name) {
			continue
		}
		n, err := strconv.Atoi(values.Get(ia.name))
		if err != nil {
			return ToolArgs{}, fmt.Errorf("%w: %s must be an integer", service.ErrInvalidQuery, ia.name)
		}
		*ia.dst = &n
	}

	return args, nil
}

// ArgsFromJSON reads ToolArgs from a json object. An empty body means no arguments.
func ArgsFromJSON(body []byte) (ToolArgs, error) {
	args := ToolArgs{}
	if len(bytes.TrimSpace(body)) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(body, &args); err != nil {
		return ToolArgs{}, fmt.Errorf("%w: malformed arguments", service.ErrInvalidQuery)
	}
	return args, nil
}

// QueryParams applies defaults. instrument_type is consulted only when
// instrument_type_ID is absent.
func (a ToolArgs) QueryParams(defaultAmount int) (model.QueryParams, error) {
	params := model.NewQueryParams()
	params.Amount = defaultAmount

	if a.Instrument != nil {
		params.Instrument = *a.Instrument
	}

	switch {
	case a.InstrumentTypeID != nil:
		params.InstrumentTypeID = model.InstrumentType(*a.InstrumentTypeID)
	case a.InstrumentType != nil && *a.InstrumentType != "":
		t, err := model.ParseInstrumentType(*a.InstrumentType)
		if err != nil {
			return model.QueryParams{}, fmt.Errorf("%w: %s", service.ErrInvalidQuery, err.Error())
		}
		params.InstrumentTypeID = t
	}

	if a.Amount != nil {
		params.Amount = *a.Amount
	}
	if a.Page != nil {
		params.Page = *a.Page
	}

	if params.Amount <= 0 {
		return model.QueryParams{}, fmt.Errorf("%w: amount must be positive, got %d", service.ErrInvalidQuery, params.Amount)
	}

	return params, nil
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// ResultEnvelope renders the get_instruments response.
func ResultEnvelope(res model.QueryResult) ([]byte, error) {
	if res.Instruments == nil {
		res.Instruments = []model.InstrumentRecord{}
	}
	return encodeIndented(res)
}

// ErrorEnvelope renders {"error": msg} with a message safe to show the caller.
func ErrorEnvelope(err error) []byte {
	b, encErr := encodeIndented(errorEnvelope{Error: ErrorMessage(err)})
	if encErr != nil {
		return []byte(`{"error": "internal error"}`)
	}
	return b
}

// ErrorMessage is the caller-facing text of err. Source failures carry only
// the upstream status code; transport details stay in the logs.
func ErrorMessage(err error) string {
	var statusErr *externalApi.StatusError
	switch {
	case errors.Is(err, service.ErrInvalidQuery):
		return err.Error()
	case errors.Is(err, service.ErrSourceUnavailable):
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("%s: %s", service.ErrSourceUnavailable.Error(), statusErr.Error())
		}
		return service.ErrSourceUnavailable.Error()
	case errors.Is(err, service.ErrStorageFailure):
		return service.ErrStorageFailure.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "request cancelled"
	default:
		return "internal error"
	}
}

func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func encodeIndented(v any) ([]byte, error) {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
