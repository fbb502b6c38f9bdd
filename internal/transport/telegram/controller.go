package telegram

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KotFed0t/instrument_catalog/internal/converter/telebotConverter"
	"github.com/KotFed0t/instrument_catalog/internal/converter/toolConverter"
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/utils"
	tele "gopkg.in/telebot.v4"
)

const internalErrMsg = "something went wrong..."

type CatalogService interface {
	GetInstruments(ctx context.Context, params model.QueryParams) (model.QueryResult, error)
}

type Controller struct {
	catalogService CatalogService
	perPage        int
}

func NewController(catalogService CatalogService, perPage int) *Controller {
	return &Controller{
		catalogService: catalogService,
		perPage:        perPage,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Send("Hello! I can search the instrument catalog.\n\n" + telebotConverter.HelpText())
}

// Instruments handles "/instruments [name]".
func (ctrl *Controller) Instruments(c tele.Context) error {
	params := model.NewQueryParams()
	params.Amount = ctrl.perPage
	params.Instrument = strings.TrimSpace(c.Message().Payload)

	return ctrl.sendPage(c, params, false)
}

// InstrumentsByType handles "/type <label>".
func (ctrl *Controller) InstrumentsByType(c tele.Context) error {
	label := strings.TrimSpace(c.Message().Payload)
	if label == "" {
		return c.Send(telebotConverter.HelpText())
	}

	t, err := model.ParseInstrumentType(label)
	if err != nil {
		return c.Send("Unknown type.\n\n" + telebotConverter.HelpText())
	}

	params := model.NewQueryParams()
	params.Amount = ctrl.perPage
	params.InstrumentTypeID = t

	return ctrl.sendPage(c, params, false)
}

// InstrumentsPage handles the prev/next buttons.
func (ctrl *Controller) InstrumentsPage(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	params, err := telebotConverter.ParsePageCallbackData(c.Args(), ctrl.perPage)
	if err != nil {
		slog.Error("can't parse page callback", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	if err = ctrl.sendPage(c, params, true); err != nil {
		return err
	}
	return c.Respond()
}

func (ctrl *Controller) sendPage(c tele.Context, params model.QueryParams, edit bool) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := ctrl.catalogService.GetInstruments(ctx, params)
	if err != nil {
		slog.Error("got error from catalogService.GetInstruments", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(toolConverter.ErrorMessage(err))
	}

	text, markup := telebotConverter.InstrumentsPageResponse(res, params)
	if edit {
		return c.Edit(text, markup)
	}
	return c.Send(text, markup)
}
