package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"studyviz/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes records with a header row of fields.
func WriteCSV(w io.Writer, fields []string, records []*dataset.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rowOf(fields, rec)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes records to a single-sheet workbook. Numeric cells are
// written as numbers.
func WriteXLSX(w io.Writer, sheet string, fields []string, records []*dataset.Record) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if name := f.GetSheetName(0); name != sheet {
		if err := f.SetSheetName(name, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]interface{}, len(fields))
	for i, field := range fields {
		header[i] = field
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		cells := make([]interface{}, len(fields))
		for j, field := range fields {
			if v, ok := rec.Numeric(field); ok {
				cells[j] = v
			} else {
				raw, _ := rec.Value(field)
				cells[j] = raw
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func rowOf(fields []string, rec *dataset.Record) []string {
	row := make([]string, len(fields))
	for i, field := range fields {
		row[i], _ = rec.Value(field)
	}
	return row
}
