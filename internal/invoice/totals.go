package invoice

import (
	"fmt"
	"math"
)

// finite coerces a non-finite value to 0 so malformed numeric input never
// produces NaN or Inf in displayed amounts.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ItemTotal returns quantity × rate for a row. Headings always total 0.
func ItemTotal(item LineItem) float64 {
	if item.IsHeading {
		return 0
	}
	return finite(finite(item.Quantity) * finite(item.Rate))
}

// SectionSubtotal sums the totals of a section's rows.
func SectionSubtotal(s Section) float64 {
	var sum float64
	for _, row := range s.Rows {
		sum += ItemTotal(row)
	}
	return sum
}

// GrandTotal sums the subtotals of all sections.
func GrandTotal(sections []Section) float64 {
	var sum float64
	for _, s := range sections {
		sum += SectionSubtotal(s)
	}
	return sum
}

// FormatAmount renders a monetary value with exactly two fractional digits.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", finite(v))
}
