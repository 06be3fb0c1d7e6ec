package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkonduru/invoicegrid/internal/extraction"
)

// UploadedFile is one raw invoice document as received from the caller.
type UploadedFile struct {
	Filename    string
	Data        []byte
	ContentType string
}

// Sink persists line items to an external spreadsheet service.
type Sink interface {
	// Append submits the full record batch as a single append operation.
	Append(ctx context.Context, items []LineItem) error
}

// IDGenerator generates unique IDs for items, drafts, and archived files
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles invoice operations
type Service struct {
	db          DB
	extractor   extraction.Extractor
	storage     Storage
	sink        Sink
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source.
// sink may be nil when no spreadsheet is configured; SaveToSheet then fails
// with a SinkError.
func NewService(db DB, extractor extraction.Extractor, storage Storage, sink Sink) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		sink:        sink,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, extractor extraction.Extractor, storage Storage, sink Sink, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		sink:        sink,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "invoice"
	}

	return base + ext
}

// emptyRow creates a blank placeholder row through the service's ID generator.
func (s *Service) emptyRow() LineItem {
	return LineItem{ID: s.idGenerator.Generate(), Quantity: 1}
}

// ExtractInvoices archives the uploaded files and runs each through the
// extraction model concurrently. Items are returned in input-file order, not
// completion order, with a fresh ID assigned to every candidate. A failed
// model call for any file fails the batch, as does a batch that produces no
// items at all; a single empty file among several is fine. The returned
// fileIDs reference the archived uploads, in input order.
func (s *Service) ExtractInvoices(ctx context.Context, files []UploadedFile) ([]LineItem, []string, error) {
	if len(files) == 0 {
		return nil, nil, &ExtractionError{Err: fmt.Errorf("no invoice file provided")}
	}

	fileIDs := make([]string, len(files))
	for i, f := range files {
		id := s.idGenerator.Generate()
		savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(f.Filename)), f.Data)
		if err != nil {
			s.removeArchived(fileIDs[:i])
			return nil, nil, fmt.Errorf("archiving file: %w", err)
		}
		fileIDs[i] = savedPath
	}

	// Fan out one model call per file. Results are buffered per input index
	// so concatenation order matches upload order regardless of which call
	// finishes first.
	results := make([][]extraction.Item, len(files))
	eg, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		eg.Go(func() error {
			candidates, err := s.extractor.ExtractItems(gctx, f.Data, f.ContentType)
			if err != nil {
				return &ExtractionError{Filename: f.Filename, Err: err}
			}
			results[i] = candidates
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		slog.Error("Failed to extract invoices", "files", len(files), "error", err)
		s.removeArchived(fileIDs)
		return nil, nil, err
	}

	var items []LineItem
	for _, candidates := range results {
		for _, c := range candidates {
			items = append(items, LineItem{
				ID:        s.idGenerator.Generate(),
				IsHeading: c.IsHeading,
				Name:      c.Name,
				Quantity:  c.Quantity,
				Unit:      c.Unit,
				Rate:      c.Rate,
			})
		}
	}

	if len(items) == 0 {
		s.removeArchived(fileIDs)
		return nil, nil, &ExtractionError{Err: fmt.Errorf("no structured data found in the provided invoice(s)")}
	}

	return items, fileIDs, nil
}

// removeArchived deletes archived uploads after a failed batch.
func (s *Service) removeArchived(fileIDs []string) {
	for _, fileID := range fileIDs {
		if err := s.storage.Delete(fileID); err != nil {
			slog.Warn("Failed to delete archived file", "file", fileID, "error", err)
		}
	}
}

// CreateDraft stores a new working invoice. A draft with no items is stored
// with exactly one blank row so the editing surface never shows an empty
// table.
func (s *Service) CreateDraft(title string, items []LineItem, fileIDs []string) (*Draft, error) {
	now := s.timeSource.Now()
	draft := &Draft{
		ID:        s.idGenerator.Generate(),
		Title:     title,
		Items:     s.normalizeItems(items),
		FileIDs:   fileIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.SaveDraft(draft); err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}
	return draft, nil
}

// UpdateDraft replaces a draft's title and items. Edits are serialized by
// the caller; the last write wins.
func (s *Service) UpdateDraft(id, title string, items []LineItem) (*Draft, error) {
	draft, err := s.db.GetDraft(id)
	if err != nil {
		return nil, fmt.Errorf("getting draft: %w", err)
	}

	draft.Title = title
	draft.Items = s.normalizeItems(items)
	draft.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveDraft(draft); err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}
	return draft, nil
}

// normalizeItems applies the editing-surface rules: never an empty list, and
// every item carries an ID.
func (s *Service) normalizeItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return []LineItem{s.emptyRow()}
	}
	normalized := make([]LineItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = s.idGenerator.Generate()
		}
		normalized[i] = item
	}
	return normalized
}

// GetDraft retrieves a draft by ID
func (s *Service) GetDraft(id string) (*Draft, error) {
	draft, err := s.db.GetDraft(id)
	if err != nil {
		return nil, fmt.Errorf("getting draft: %w", err)
	}
	return draft, nil
}

// ListDrafts returns all drafts
func (s *Service) ListDrafts() ([]*Draft, error) {
	drafts, err := s.db.ListDrafts()
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	return drafts, nil
}

// DeleteDraft removes a draft and its archived source files
func (s *Service) DeleteDraft(id string) error {
	draft, err := s.db.GetDraft(id)
	if err != nil {
		return fmt.Errorf("getting draft for deletion: %w", err)
	}

	s.removeArchived(draft.FileIDs)

	if err := s.db.DeleteDraft(id); err != nil {
		return fmt.Errorf("deleting draft from database: %w", err)
	}
	return nil
}

// GetDraftFile retrieves an archived source document for a draft
func (s *Service) GetDraftFile(draftID, fileID string) ([]byte, error) {
	draft, err := s.db.GetDraft(draftID)
	if err != nil {
		return nil, fmt.Errorf("getting draft: %w", err)
	}

	for _, id := range draft.FileIDs {
		if id == fileID {
			data, err := s.storage.Get(fileID)
			if err != nil {
				return nil, fmt.Errorf("getting draft file: %w", err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("file %s does not belong to draft %s", fileID, draftID)
}

// ExportCSV validates and serializes items to the delimited export format.
func (s *Service) ExportCSV(items []LineItem) ([]byte, error) {
	if err := validateExportable(items); err != nil {
		return nil, err
	}
	return MarshalCSV(items), nil
}

// ExportXLSX validates and serializes items to a workbook.
func (s *Service) ExportXLSX(items []LineItem) ([]byte, error) {
	if err := validateExportable(items); err != nil {
		return nil, err
	}
	data, err := MarshalXLSX(items)
	if err != nil {
		return nil, fmt.Errorf("building workbook: %w", err)
	}
	return data, nil
}

// SaveToSheet validates and submits items to the spreadsheet sink. The
// in-memory items are untouched either way, so the caller can edit and retry.
func (s *Service) SaveToSheet(ctx context.Context, items []LineItem) error {
	if err := validateExportable(items); err != nil {
		return err
	}
	if s.sink == nil {
		return &SinkError{Err: fmt.Errorf("no spreadsheet configured")}
	}
	if err := s.sink.Append(ctx, items); err != nil {
		slog.Error("Failed to save to spreadsheet", "items", len(items), "error", err)
		return &SinkError{Err: err}
	}
	return nil
}

// validateExportable rejects invoices with nothing to write: every row blank
// or nothing but headings.
func validateExportable(items []LineItem) error {
	for _, item := range items {
		if !item.IsHeading && !item.IsPlaceholder() {
			return nil
		}
	}
	return &ValidationError{Reason: "cannot export an empty invoice"}
}
