package extraction

import "context"

// Item is a candidate invoice line item returned by a document-understanding
// model. It carries no identifier; the caller assigns one on ingestion.
type Item struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Rate      float64 `json:"rate"`
	IsHeading bool    `json:"isHeading"`
}

// Extractor converts one raw document into candidate line items.
type Extractor interface {
	// ExtractItems analyzes an invoice image/PDF and returns its line items
	// in document order.
	ExtractItems(ctx context.Context, documentData []byte, mimeType string) ([]Item, error)
	// Close closes the extractor and releases resources.
	Close() error
}
