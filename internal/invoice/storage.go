package invoice

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage archives the uploaded source documents (photos and PDFs) that a
// draft's line items were extracted from, so the original can be pulled up
// next to the editable grid.
type Storage interface {
	// Save archives a document and returns the ID it can be fetched by
	Save(filename string, data []byte) (string, error)

	// Get retrieves an archived document by ID
	Get(fileID string) ([]byte, error)

	// Delete removes an archived document
	Delete(fileID string) error
}

// LocalStorage keeps the archive in a directory on the local filesystem,
// one file per uploaded document.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the archive directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save writes an uploaded document to the archive. The filename doubles as
// the file ID; callers prefix it with a unique ID before saving.
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(l.basePath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("archiving document: %w", err)
	}
	return filename, nil
}

// Get reads an archived document back
func (l *LocalStorage) Get(fileID string) ([]byte, error) {
	fullPath := filepath.Join(l.basePath, fileID)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading archived document: %w", err)
	}
	return data, nil
}

// Delete removes an archived document, typically when its draft is deleted
// or an extraction batch is rolled back
func (l *LocalStorage) Delete(fileID string) error {
	fullPath := filepath.Join(l.basePath, fileID)
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("removing archived document: %w", err)
	}
	return nil
}
