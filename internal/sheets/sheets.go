// Package sheets appends invoice rows to a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/pkonduru/invoicegrid/internal/invoice"
)

// headerRow is written before every appended batch so rows stay readable
// when multiple invoices land in the same sheet.
var headerRow = []interface{}{"S.No", "Name", "Quantity", "Unit", "Rate", "Total"}

// Sink appends line items to a single spreadsheet.
type Sink struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
}

// NewSink creates a Sink writing to the given spreadsheet with
// service-account credentials JSON.
func NewSink(ctx context.Context, credentialsJSON []byte, spreadsheetID, writeRange string) (*Sink, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("sheets credentials are required")
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if writeRange == "" {
		writeRange = "Sheet1!A1"
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	return &Sink{
		service:       service,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
	}, nil
}

// Append writes a header row plus one record per non-heading, non-placeholder
// item as a single append call. The write is all-or-nothing: the API reports
// no row-level status.
func (s *Sink) Append(ctx context.Context, items []invoice.LineItem) error {
	values := Records(items)

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending %d rows: %w", len(values), err)
	}
	return nil
}

// Records maps items to the positional row format the spreadsheet expects:
// a header row, then [S.No, name, quantity, unit, rate, total] per item.
// Headings and placeholder rows are dropped; numbering runs 1..N over the
// remaining rows.
func Records(items []invoice.LineItem) [][]interface{} {
	values := [][]interface{}{headerRow}
	number := 0
	for _, item := range items {
		if item.IsHeading || item.IsPlaceholder() {
			continue
		}
		number++
		values = append(values, []interface{}{
			number,
			item.Name,
			item.Quantity,
			item.Unit,
			item.Rate,
			invoice.FormatAmount(invoice.ItemTotal(item)),
		})
	}
	return values
}
