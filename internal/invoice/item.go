package invoice

import (
	"time"

	"github.com/google/uuid"
)

// LineItem represents a single row of an invoice. When IsHeading is true the
// item is a section marker only: its name is the section title and its
// numeric fields are ignored by totals and export.
type LineItem struct {
	ID        string  `json:"id"`
	IsHeading bool    `json:"isHeading"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Rate      float64 `json:"rate"`
}

// NewEmptyRow creates a blank editable row. New rows default to quantity 1 so
// entering a name and a rate immediately yields a total.
func NewEmptyRow() LineItem {
	return LineItem{
		ID:       uuid.NewString(),
		Quantity: 1,
	}
}

// NewHeading creates a section heading marker.
func NewHeading(name string) LineItem {
	return LineItem{
		ID:        uuid.NewString(),
		IsHeading: true,
		Name:      name,
	}
}

// IsPlaceholder reports whether the item is a blank row: not a heading, no
// name, and no quantity or rate. Placeholder rows are excluded from
// numbering, export, and sink submission.
func (i LineItem) IsPlaceholder() bool {
	return !i.IsHeading && i.Name == "" && i.Quantity == 0 && i.Rate == 0
}

// Draft is a working invoice: the ordered item list a user is editing,
// persisted so edits survive restarts.
type Draft struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Items     []LineItem `json:"items"`
	FileIDs   []string   `json:"file_ids,omitempty"` // archived upload filenames
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
