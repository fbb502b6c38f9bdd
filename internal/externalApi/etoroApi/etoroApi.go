package etoroApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/instrument_catalog/config"
	"github.com/KotFed0t/instrument_catalog/internal/externalApi"
	"github.com/KotFed0t/instrument_catalog/internal/model/etoroModel"
	"github.com/KotFed0t/instrument_catalog/utils"
	"github.com/go-resty/resty/v2"
)

type EtoroApi struct {
	client          *resty.Client
	instrumentsPath string
}

func New(cfg *config.Config) *EtoroApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.EtoroApi.Url)
	return &EtoroApi{client: client, instrumentsPath: cfg.API.EtoroApi.InstrumentsPath}
}

// GetInstruments returns raw entries in source order.
//
// A payload without a usable InstrumentDisplayDatas array yields an empty
// slice together with externalApi.ErrMalformedSource.
func (a *EtoroApi) GetInstruments(ctx context.Context) ([]etoroModel.RawInstrument, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "EtoroApi.GetInstruments"

	slog.Debug("start EtoroApi.GetInstruments request", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(a.instrumentsPath)

	if err != nil {
		slog.Error("error while dialing EtoroApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return nil, fmt.Errorf("%w: %s", externalApi.ErrSourceUnavailable, err.Error())
	}

	if !resp.IsSuccess() {
		slog.Error("unexpected EtoroApi status", slog.Int("statusCode", resp.StatusCode()), slog.String("rqID", rqID), slog.String("op", op))
		return nil, fmt.Errorf("%w: %w", externalApi.ErrSourceUnavailable, &externalApi.StatusError{StatusCode: resp.StatusCode()})
	}

	res, err := a.parseRawInstruments(ctx, resp.Body())
	if err != nil {
		slog.Warn("can't parse EtoroApi payload", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return []etoroModel.RawInstrument{}, err
	}

	slog.Debug("EtoroApi.GetInstruments request complete", slog.Int("entries", len(res)), slog.String("rqID", rqID), slog.String("op", op))

	return res, nil
}

func (a *EtoroApi) parseRawInstruments(ctx context.Context, body []byte) ([]etoroModel.RawInstrument, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	rawResp := etoroModel.RawInstrumentsResponse{}
	if err := json.Unmarshal(body, &rawResp); err != nil {
		return nil, fmt.Errorf("%w: %s", externalApi.ErrMalformedSource, err.Error())
	}

	if len(rawResp.InstrumentDisplayDatas) == 0 || string(rawResp.InstrumentDisplayDatas) == "null" {
		return nil, fmt.Errorf("%w: InstrumentDisplayDatas is absent", externalApi.ErrMalformedSource)
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal(rawResp.InstrumentDisplayDatas, &rawEntries); err != nil {
		return nil, fmt.Errorf("%w: InstrumentDisplayDatas is not an array: %s", externalApi.ErrMalformedSource, err.Error())
	}

	res := make([]etoroModel.RawInstrument, 0, len(rawEntries))
	for i, rawEntry := range rawEntries {
		entry := etoroModel.RawInstrument{}
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			slog.Warn("skip undecodable instrument entry", slog.Int("index", i), slog.String("err", err.Error()), slog.String("rqID", rqID))
			continue
		}
		res = append(res, entry)
	}

	return res, nil
}
