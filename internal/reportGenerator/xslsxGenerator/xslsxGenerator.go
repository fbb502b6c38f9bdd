package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/utils"
	"github.com/xuri/excelize/v2"
)

const (
	InstrumentsSheet = "Instruments"
	SummarySheet     = "By type"
)

var instrumentsHeader = []string{"InstrumentID", "InstrumentName", "InstrumentTypeID", "Type", "Symbol"}

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// Generate writes records to an instruments sheet plus a per-type summary.
func (g *XSLSXGenerator) Generate(ctx context.Context, records []model.InstrumentRecord) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("records", len(records)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return nil, "", err
	}

	if err = g.fillInstrumentsSheet(f, records, headerStyle); err != nil {
		slog.Error("can't fill instruments sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillSummarySheet(f, records, headerStyle); err != nil {
		slog.Error("can't fill summary sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillInstrumentsSheet(f *excelize.File, records []model.InstrumentRecord, headerStyle int) error {
	if _, err := f.NewSheet(InstrumentsSheet); err != nil {
		return err
	}

	for i, title := range instrumentsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellStr(InstrumentsSheet, cell, title)
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(instrumentsHeader), 1)
	if err := f.SetCellStyle(InstrumentsSheet, "A1", lastHeaderCell, headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, rec := range records {
		row := i + 2
		_ = f.SetCellInt(InstrumentsSheet, fmt.Sprintf("A%d", row), int(rec.InstrumentID))
		_ = f.SetCellStr(InstrumentsSheet, fmt.Sprintf("B%d", row), rec.InstrumentName)
		_ = f.SetCellInt(InstrumentsSheet, fmt.Sprintf("C%d", row), int(rec.InstrumentTypeID))
		_ = f.SetCellStr(InstrumentsSheet, fmt.Sprintf("D%d", row), rec.InstrumentTypeID.String())
		_ = f.SetCellStr(InstrumentsSheet, fmt.Sprintf("E%d", row), rec.Symbol)
	}

	return f.SetColWidth(InstrumentsSheet, "B", "B", 40)
}

func (g *XSLSXGenerator) fillSummarySheet(f *excelize.File, records []model.InstrumentRecord, headerStyle int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}

	_ = f.SetCellStr(SummarySheet, "A1", "Type")
	_ = f.SetCellStr(SummarySheet, "B1", "Count")
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	counts := make(map[model.InstrumentType]int, len(model.InstrumentTypes()))
	for _, rec := range records {
		counts[rec.InstrumentTypeID]++
	}

	row := 2
	for _, t := range model.InstrumentTypes() {
		_ = f.SetCellStr(SummarySheet, fmt.Sprintf("A%d", row), t.String())
		_ = f.SetCellInt(SummarySheet, fmt.Sprintf("B%d", row), int(counts[t]))
		row++
	}
	_ = f.SetCellStr(SummarySheet, fmt.Sprintf("A%d", row), "total")
	_ = f.SetCellInt(SummarySheet, fmt.Sprintf("B%d", row), int(len(records)))

	return nil
}
