package toolApi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KotFed0t/instrument_catalog/internal/converter/toolConverter"
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/utils"
)

const (
	GetInstrumentsTool = "get_instruments"
	maxArgsBodyBytes   = 1 << 16
)

type CatalogService interface {
	GetInstruments(ctx context.Context, params model.QueryParams) (model.QueryResult, error)
	Instruments(ctx context.Context, params model.QueryParams) ([]model.InstrumentRecord, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, records []model.InstrumentRecord) (fileBytes []byte, fileExtension string, err error)
}

type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

type Controller struct {
	catalogService  CatalogService
	reportGenerator ReportGenerator
	defaultAmount   int
}

func NewController(catalogService CatalogService, reportGenerator ReportGenerator, defaultAmount int) *Controller {
	return &Controller{
		catalogService:  catalogService,
		reportGenerator: reportGenerator,
		defaultAmount:   defaultAmount,
	}
}

func (ctrl *Controller) Tools() []ToolDescriptor {
	return []ToolDescriptor{
		{
			Name:        GetInstrumentsTool,
			Description: "Get list of available financial instruments available for trading on the eToro platform.",
			Parameters: []ToolParameter{
				{Name: "instrument", Type: "string", Description: "Name or partial name of the financial instrument to filter by (case insensitive)."},
				{Name: "instrument_type_ID", Type: "integer", Description: "Type of financial instrument to filter by (1=forex, 2=commodities, 3=cryptocurrencies, 4=stocks, 5=indices). Takes precedence over the name filter."},
				{Name: "instrument_type", Type: "string", Description: "Type label, used when instrument_type_ID is not supplied."},
				{Name: "amount", Type: "integer", Description: "Number of instruments to return per page.", Default: ctrl.defaultAmount},
				{Name: "page", Type: "integer", Description: "Page number, starts at 1.", Default: model.DefaultPage},
			},
		},
	}
}

func (ctrl *Controller) ListTools(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(ctrl.Tools())
}

// GetInstruments serves the get_instruments tool. Every failure is answered
// with the error envelope.
func (ctrl *Controller) GetInstruments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "toolApi.GetInstruments"

	params, err := ctrl.queryParams(r)
	if err != nil {
		ctrl.writeError(w, rqID, op, err)
		return
	}

	res, err := ctrl.catalogService.GetInstruments(ctx, params)
	if err != nil {
		ctrl.writeError(w, rqID, op, err)
		return
	}

	body, err := toolConverter.ResultEnvelope(res)
	if err != nil {
		ctrl.writeError(w, rqID, op, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ExportInstruments returns every instrument matching the filters as a spreadsheet.
func (ctrl *Controller) ExportInstruments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "toolApi.ExportInstruments"

	params, err := ctrl.queryParams(r)
	if err != nil {
		ctrl.writeError(w, rqID, op, err)
		return
	}

	records, err := ctrl.catalogService.Instruments(ctx, params)
	if err != nil {
		ctrl.writeError(w, rqID, op, err)
		return
	}

	fileBytes, ext, err := ctrl.reportGenerator.Generate(ctx, records)
	if err != nil {
		ctrl.writeError(w, rqID, op, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="instruments`+ext+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(fileBytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fileBytes)
}

func (ctrl *Controller) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status": "ok"}` + "\n"))
}

func (ctrl *Controller) queryParams(r *http.Request) (model.QueryParams, error) {
	var (
		args toolConverter.ToolArgs
		err  error
	)

	if r.Method == http.MethodPost {
		var body []byte
		body, err = io.ReadAll(io.LimitReader(r.Body, maxArgsBodyBytes))
		if err == nil {
			args, err = toolConverter.ArgsFromJSON(body)
		}
	} else {
		args, err = toolConverter.ArgsFromQuery(r.URL.Query())
	}
	if err != nil {
		return model.QueryParams{}, err
	}

	return args.QueryParams(ctrl.defaultAmount)
}

func (ctrl *Controller) writeError(w http.ResponseWriter, rqID, op string, err error) {
	status := toolConverter.StatusCode(err)
	if status >= http.StatusInternalServerError {
		slog.Error("tool call failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	} else {
		slog.Warn("tool call rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(toolConverter.ErrorEnvelope(err))
}
