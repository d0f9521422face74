// Package storage provides the inbox/outbox file layout used by batch runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a named file does not exist.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Fingerprint identifies one version of a file: a rewritten file with the
// same name gets a new fingerprint.
func (f *FileInfo) Fingerprint() string {
	return fmt.Sprintf("%s:%d:%d", f.Name, f.Size, f.CreatedAt.UnixNano())
}

// Storage defines the interface for file storage operations
type Storage interface {
	// List returns the PDF documents waiting in the inbox, sorted by name
	List(ctx context.Context) ([]*FileInfo, error)

	// Read returns the content of an inbox document
	Read(ctx context.Context, name string) ([]byte, error)

	// Archive moves an inbox document out of the way once processed
	Archive(ctx context.Context, name string) error

	// Write stores a report in the outbox and returns its metadata
	Write(ctx context.Context, name string, contentType string, r io.Reader) (*FileInfo, error)

	// Reports lists the reports written to the outbox, oldest first
	Reports(ctx context.Context) ([]*FileInfo, error)
}
