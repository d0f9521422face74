package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArchiveDir is the inbox subdirectory processed documents are moved to.
const ArchiveDir = "processed"

const metaDir = ".meta"

var _ Storage = (*LocalStorage)(nil)

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	inbox  string
	outbox string
}

// NewLocalStorage creates the inbox and outbox directories when missing.
func NewLocalStorage(inbox, outbox string) (*LocalStorage, error) {
	for _, dir := range []string{inbox, outbox} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &LocalStorage{inbox: inbox, outbox: outbox}, nil
}

// InboxPath returns the inbox directory.
func (s *LocalStorage) InboxPath() string { return s.inbox }

// OutboxPath returns the outbox directory.
func (s *LocalStorage) OutboxPath() string { return s.outbox }

// List returns the *.pdf files directly under the inbox. Matching is
// case-insensitive; subdirectories are ignored.
func (s *LocalStorage) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(s.inbox)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, &FileInfo{
			ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.Join(s.inbox, entry.Name()))),
			Name:        entry.Name(),
			Size:        info.Size(),
			ContentType: "application/pdf",
			Path:        entry.Name(),
			CreatedAt:   info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Read returns the content of an inbox document.
func (s *LocalStorage) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.inbox, sanitizeFilename(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Archive moves an inbox document into the processed subdirectory. An
// archived file with the same name is replaced.
func (s *LocalStorage) Archive(ctx context.Context, name string) error {
	safe := sanitizeFilename(name)
	dir := filepath.Join(s.inbox, ArchiveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filepath.Join(s.inbox, safe), filepath.Join(dir, safe)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to archive %s: %w", name, err)
	}
	return nil
}

// Write stores a report in the outbox under name and records its metadata.
// The report appears under its final name only once fully written.
func (s *LocalStorage) Write(ctx context.Context, name string, contentType string, r io.Reader) (*FileInfo, error) {
	safe := sanitizeFilename(name)
	tmp, err := os.CreateTemp(s.outbox, "."+safe+".*")
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return nil, fmt.Errorf("failed to write report %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.outbox, safe)); err != nil {
		return nil, fmt.Errorf("failed to publish report %s: %w", name, err)
	}

	info := &FileInfo{
		ID:          uuid.New(),
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Path:        safe,
		CreatedAt:   time.Now(),
	}
	if err := s.recordReport(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Reports lists the reports recorded in the outbox metadata, oldest first.
func (s *LocalStorage) Reports(ctx context.Context) ([]*FileInfo, error) {
	dir := filepath.Join(s.outbox, metaDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*FileInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var info FileInfo
		if err := json.Unmarshal(data, &info); err != nil {
			continue
		}
		files = append(files, &info)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.Before(files[j].CreatedAt)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// recordReport writes the sidecar metadata for a report, keyed by its
// stored name so rewriting a report replaces its entry.
func (s *LocalStorage) recordReport(info *FileInfo) error {
	dir := filepath.Join(s.outbox, metaDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode metadata for %s: %w", info.Name, err)
	}
	return os.WriteFile(filepath.Join(dir, info.Path+".json"), data, 0o644)
}

// sanitizeFilename keeps name inside its directory: parent references and
// path or shell-reserved characters become underscores.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "..", "_")
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}
