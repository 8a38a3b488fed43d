package export

import (
	"context"
	"io"
	"iter"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSX writes a single-sheet Excel workbook. Rows go through excelize's
// stream writer, so memory stays flat while the workbook is assembled; the
// finished archive is written to w at the end.
type XLSX struct {
	SheetName string
}

// NewXLSX returns an XLSX format writing to the default sheet.
func NewXLSX() *XLSX {
	return &XLSX{SheetName: defaultSheet}
}

func (x *XLSX) Name() string      { return "xlsx" }
func (x *XLSX) Extension() string { return "xlsx" }
func (x *XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write implements Format.
func (x *XLSX) Write(ctx context.Context, w io.Writer, headers []string, rows iter.Seq2[Row, error]) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := x.SheetName
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return 0, err
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	if err := sw.SetRow("A1", cells(headers), excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return 0, err
	}

	count := 0
	for row, err := range rows {
		if err != nil {
			return count, err
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}

		cell, err := excelize.CoordinatesToCellName(1, count+2)
		if err != nil {
			return count, err
		}
		if err := sw.SetRow(cell, cells(row)); err != nil {
			return count, err
		}
		count++
	}

	if err := sw.Flush(); err != nil {
		return count, err
	}
	if _, err := f.WriteTo(w); err != nil {
		return count, err
	}
	return count, nil
}

func cells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
