package invoice

import "fmt"

// ExtractionError reports a failed extraction batch: either a remote call
// failed, or the whole batch produced no items.
type ExtractionError struct {
	Filename string // file that failed, empty for batch-level failures
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return "extraction produced no items"
	}
	if e.Filename != "" {
		return fmt.Sprintf("extracting %s: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SinkError reports a failed or misconfigured spreadsheet write.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("spreadsheet sink: %v", e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// ValidationError reports a user action attempted against an invoice with
// nothing in it, such as exporting when every row is blank.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
