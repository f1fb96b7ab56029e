package transfer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// SheetName is the worksheet XLSX exports are written to.
const SheetName = "Subscriptions"

// XLSX is a single-sheet workbook with the CSV columns.
type XLSX struct{}

func (XLSX) Name() string { return "xlsx" }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Decode reads the first sheet of the workbook.
func (XLSX) Decode(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}

	rows := make([]rawRow, 0, len(cells))
	for i, c := range cells {
		rows = append(rows, rawRow{line: i + 1, fields: c})
	}

	res, err := decodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("decode xlsx: %w", err)
	}
	return res, nil
}

func (XLSX) Encode(w io.Writer, subs []model.Subscription) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range subs {
		fields := toFields(s)
		row := make([]any, len(fields))
		for j, v := range fields {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
