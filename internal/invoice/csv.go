package invoice

import (
	"strconv"
	"strings"
)

// utf8BOM lets spreadsheet applications detect the encoding on import.
const utf8BOM = "\uFEFF"

// columnHeader is the per-section column header record.
var columnHeader = []string{"S No.", "Food Item", "Quantity", "Unit", "Rate", "Total"}

// MarshalCSV renders the ordered item list as comma-separated records,
// grouped into sections. Layout:
//
//	DOSA ITEMS
//	S No.,Food Item,Quantity,Unit,Rate,Total
//	1,Plain Dosa,2,pcs,80,160.00
//
// Each heading is uppercased on its own record followed by a fresh column
// header; a blank spacer record separates it from the previous section.
// Placeholder rows are skipped and do not consume a number. The function
// never mutates its input, so serializing the same list twice yields
// byte-identical output.
func MarshalCSV(items []LineItem) []byte {
	var records []string

	for i, section := range Group(items) {
		if section.Heading != nil {
			if len(records) > 0 {
				records = append(records, "")
			}
			records = append(records,
				escapeField(strings.ToUpper(section.Heading.Name)),
				strings.Join(columnHeader, ","))
		} else if i == 0 {
			records = append(records, strings.Join(columnHeader, ","))
		}

		number := 0
		for _, row := range section.Rows {
			if row.IsPlaceholder() {
				continue
			}
			number++
			records = append(records, strings.Join([]string{
				strconv.Itoa(number),
				escapeField(row.Name),
				formatNumber(row.Quantity),
				escapeField(row.Unit),
				formatNumber(row.Rate),
				amountOrBlank(ItemTotal(row)),
			}, ","))
		}
	}

	return []byte(utf8BOM + strings.Join(records, "\n"))
}

// escapeField doubles embedded quotes and wraps the field in quotes when it
// contains a comma, quote, or line break. Plain fields pass through unquoted.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatNumber renders a numeric field without trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(finite(v), 'f', -1, 64)
}

// amountOrBlank renders a two-decimal total, or an empty field when zero.
func amountOrBlank(v float64) string {
	if v == 0 {
		return ""
	}
	return FormatAmount(v)
}
