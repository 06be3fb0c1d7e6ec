package invoice

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MarshalXLSX renders the ordered item list as a single-sheet workbook with
// the same grouped layout as MarshalCSV, plus a grand-total row at the
// bottom. Quantity and rate are written as numbers so the spreadsheet can
// recompute on edit.
func MarshalXLSX(items []LineItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	sections := Group(items)
	line := 0

	writeRow := func(values []interface{}) error {
		line++
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	headerRow := make([]interface{}, len(columnHeader))
	for i, h := range columnHeader {
		headerRow[i] = h
	}

	for i, section := range sections {
		if section.Heading != nil {
			if line > 0 {
				if err := writeRow(nil); err != nil {
					return nil, fmt.Errorf("writing spacer row: %w", err)
				}
			}
			if err := writeRow([]interface{}{strings.ToUpper(section.Heading.Name)}); err != nil {
				return nil, fmt.Errorf("writing heading row: %w", err)
			}
			if err := writeRow(headerRow); err != nil {
				return nil, fmt.Errorf("writing header row: %w", err)
			}
		} else if i == 0 {
			if err := writeRow(headerRow); err != nil {
				return nil, fmt.Errorf("writing header row: %w", err)
			}
		}

		number := 0
		for _, row := range section.Rows {
			if row.IsPlaceholder() {
				continue
			}
			number++
			values := []interface{}{
				number,
				row.Name,
				finite(row.Quantity),
				row.Unit,
				finite(row.Rate),
				amountOrBlank(ItemTotal(row)),
			}
			if err := writeRow(values); err != nil {
				return nil, fmt.Errorf("writing item row: %w", err)
			}
		}
	}

	if err := writeRow(nil); err != nil {
		return nil, fmt.Errorf("writing spacer row: %w", err)
	}
	grand := []interface{}{"", "", "", "", "Grand Total", FormatAmount(GrandTotal(sections))}
	if err := writeRow(grand); err != nil {
		return nil, fmt.Errorf("writing grand total row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}
