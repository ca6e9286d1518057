// Package xlsx renders a flatcsv.Dataset as an Excel workbook.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/reoring/flatcsv"
)

// SheetName is the worksheet holding the converted rows.
const SheetName = "dados"

// ContentType is the media type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrLimit is returned when a dataset does not fit a worksheet: too many rows
// or columns, or a cell longer than Excel accepts.
var ErrLimit = errors.New("xlsx: dataset exceeds worksheet limits")

// Build lays ds out on a single sheet: a bold, frozen header row followed by
// one row per dataset row in header order. Numbers become numeric cells when
// the dataset renders numbers canonically and the value fits a float64;
// booleans become boolean cells; everything else is text. Missing keys are
// left blank. Datasets beyond the worksheet limits fail with ErrLimit
// instead of being truncated.
func Build(ds *flatcsv.Dataset) (*excelize.File, error) {
	if ds == nil {
		return nil, fmt.Errorf("xlsx: nil dataset")
	}
	if err := checkLimits(ds); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := fill(f, ds); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func checkLimits(ds *flatcsv.Dataset) error {
	if n := len(ds.Rows) + 1; n > excelize.TotalRows {
		return fmt.Errorf("%w: %d rows (max %d)", ErrLimit, n, excelize.TotalRows)
	}
	if n := len(ds.Headers); n > excelize.MaxColumns {
		return fmt.Errorf("%w: %d columns (max %d)", ErrLimit, n, excelize.MaxColumns)
	}
	for _, h := range ds.Headers {
		if utf8.RuneCountInString(h) > excelize.TotalCellChars {
			return fmt.Errorf("%w: header longer than %d characters", ErrLimit, excelize.TotalCellChars)
		}
	}
	return nil
}

func fill(f *excelize.File, ds *flatcsv.Dataset) error {
	header := make([]any, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	mode := ds.NumberMode()
	values := make([]any, len(ds.Headers))
	for r, row := range ds.Rows {
		for i, h := range ds.Headers {
			values[i] = cellValue(row, h, mode)
			if text, ok := values[i].(string); ok && utf8.RuneCountInString(text) > excelize.TotalCellChars {
				return fmt.Errorf("%w: cell %q of row %d longer than %d characters", ErrLimit, h, r+1, excelize.TotalCellChars)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(row flatcsv.Row, key string, mode flatcsv.NumberMode) any {
	c, ok := row.Get(key)
	if !ok {
		return nil
	}
	switch c.Kind() {
	case flatcsv.CellBool:
		return c.BoolValue()
	case flatcsv.CellNumber:
		if mode == flatcsv.NumberCanonical {
			if f, err := strconv.ParseFloat(c.Raw(), 64); err == nil && !math.IsInf(f, 0) {
				return f
			}
		}
		return c.Format(mode)
	default:
		return c.Format(mode)
	}
}

// Write encodes ds as an XLSX workbook to w.
func Write(w io.Writer, ds *flatcsv.Dataset) error {
	f, err := Build(ds)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// WriteFile saves ds as an XLSX workbook at path.
func WriteFile(path string, ds *flatcsv.Dataset) error {
	f, err := Build(ds)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
