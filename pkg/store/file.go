package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/observability"
)

// FileStore keeps one JSON document per page in a directory. It is the CLI
// default: human-inspectable, trivially backed up, no daemon required.
//
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated page on disk.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Get retrieves a page by ID.
func (s *FileStore) Get(ctx context.Context, id string) (*block.Page, error) {
	start := time.Now()
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		observability.Store().OnGet(ctx, id, time.Since(start), ErrNotFound)
		return nil, ErrNotFound
	}
	if err != nil {
		observability.Store().OnGet(ctx, id, time.Since(start), err)
		return nil, err
	}

	var p block.Page
	if err := json.Unmarshal(data, &p); err != nil {
		err = fmt.Errorf("decode page %s: %w", id, err)
		observability.Store().OnGet(ctx, id, time.Since(start), err)
		return nil, err
	}
	observability.Store().OnGet(ctx, id, time.Since(start), nil)
	return &p, nil
}

// Put writes the page as a full replacement.
func (s *FileStore) Put(ctx context.Context, p *block.Page) error {
	start := time.Now()
	err := s.write(p)
	observability.Store().OnPut(ctx, p.ID, len(p.Blocks), time.Since(start), err)
	return err
}

func (s *FileStore) write(p *block.Page) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode page %s: %w", p.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+p.ID+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(p.ID))
}

// Delete removes a page.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		err = ErrNotFound
	}
	observability.Store().OnDelete(ctx, id, time.Since(start), err)
	return err
}

// List returns summaries of all pages sorted by title.
func (s *FileStore) List(ctx context.Context) ([]PageInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var out []PageInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		p, err := s.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue // unreadable entry, skip rather than fail the listing
		}
		out = append(out, PageInfo{
			ID:         p.ID,
			Title:      p.Title,
			BlockCount: len(p.Blocks),
			Tags:       p.Tags,
		})
	}
	slices.SortFunc(out, func(a, b PageInfo) int {
		if a.Title < b.Title {
			return -1
		}
		if a.Title > b.Title {
			return 1
		}
		return 0
	})
	return out, nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close(ctx context.Context) error { return nil }

// path maps a page ID to its file. IDs are UUIDs, safe as file names.
func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
