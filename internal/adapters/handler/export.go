package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

const (
	readingsSheet = "Readings"
	summarySheet  = "Summary"
	exportTime    = "2006-01-02 15:04"
)

// ReadingsExportHeader is the header row of the readings sheet
var ReadingsExportHeader = []string{
	"Measured At",
	"Systolic (mmHg)",
	"Diastolic (mmHg)",
	"Pulse (bpm)",
	"Category",
}

// GenerateReadingsExport renders readings and their summary as an XLSX workbook.
// Timestamps are written in loc.
func GenerateReadingsExport(readings []domain.Reading, summary domain.Summary, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	// Closed explicitly; WriteTo needs the file open

	index, err := f.NewSheet(readingsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, readingsSheet, 1, toCells(ReadingsExportHeader)); err != nil {
		f.Close()
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(ReadingsExportHeader), 1)
	if err := f.SetCellStyle(readingsSheet, "A1", lastHeader, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(readingsSheet, "A", "A", 20); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(readingsSheet, "B", "D", 16); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(readingsSheet, "E", "E", 22); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, r := range readings {
		row := []any{
			r.MeasuredAt.In(loc).Format(exportTime),
			r.Systolic,
			r.Diastolic,
			r.Pulse,
			r.Category().Label(),
		}
		if err := writeRow(f, readingsSheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetPanes(readingsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	if err := writeSummarySheet(f, summary, loc); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, summary domain.Summary, loc *time.Location) error {
	category := summary.Category.Label()
	if summary.Empty() {
		category = "No data"
	}

	rows := [][]any{
		{"Window", summary.Window},
		{"From", summary.WindowStart.In(loc).Format(exportTime)},
		{"To", summary.WindowEnd.In(loc).Format(exportTime)},
		{"Readings", summary.Count},
		{"Mean Systolic", summary.MeanSystolic},
		{"Mean Diastolic", summary.MeanDiastolic},
		{"Mean Pulse", summary.MeanPulse},
		{"Systolic Range", fmt.Sprintf("%d-%d", summary.SystolicRange.Min, summary.SystolicRange.Max)},
		{"Diastolic Range", fmt.Sprintf("%d-%d", summary.DiastolicRange.Min, summary.DiastolicRange.Max)},
		{"Category", category},
	}
	for i, row := range rows {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
