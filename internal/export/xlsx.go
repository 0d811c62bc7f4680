// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// SheetName is the worksheet holding the cards.
const SheetName = "Cards"

// WriteXLSX writes records as a workbook with one row per record, in the
// same column order as the flashcard text format.
func WriteXLSX(w io.Writer, records []types.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet so the workbook has exactly one.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	write := func(col, row int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	for i, h := range AnkiColumns {
		if err := write(i+1, 1, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	for i, r := range records {
		row := i + 2
		for col, v := range []string{r.Category, r.Question, r.Answer, r.ID} {
			if err := write(col+1, row, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 20) // category
	_ = f.SetColWidth(SheetName, "B", "C", 60) // question, answer
	_ = f.SetColWidth(SheetName, "D", "D", 38) // card id

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// ReadXLSX reads the records back from a workbook written by WriteXLSX.
func ReadXLSX(r io.Reader) ([]types.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx open: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("xlsx rows: %w", err)
	}
	var records []types.Record
	for i, row := range rows {
		if i == 0 {
			continue
		}
		for len(row) < len(AnkiColumns) {
			row = append(row, "")
		}
		records = append(records, types.Record{Category: row[0], Question: row[1], Answer: row[2], ID: row[3]})
	}
	return records, nil
}
